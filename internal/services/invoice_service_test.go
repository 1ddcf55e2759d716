package services

import (
	"context"
	"errors"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ruralpay/invoices/internal/audit"
	"github.com/ruralpay/invoices/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const listingPath = "/dashboard/invoices"

func newTestInvoiceService(t *testing.T) (*InvoiceService, sqlmock.Sqlmock, *MockInvalidator) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	invalidator := &MockInvalidator{}
	service := NewInvoiceService(database.NewInvoiceStore(db, 6), invalidator, listingPath)
	service.audit = audit.NewLoggerTo(io.Discard)
	service.now = func() time.Time { return time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC) }
	service.newID = func() string { return "3958dc9e-712f-4377-85e9-fec4b6a6442a" }
	return service, sqlMock, invalidator
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("valid form inserts, invalidates and redirects", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("INSERT INTO invoices").
			WithArgs("3958dc9e-712f-4377-85e9-fec4b6a6442a", "c1", 25050, "pending", "2026-10-19").
			WillReturnResult(sqlmock.NewResult(1, 1))
		invalidator.On("Invalidate", mock.Anything, listingPath).Return(nil).Once()

		result := service.CreateInvoice(ctx, ActionState{}, invoiceForm("c1", "250.50", "pending"))

		assert.Equal(t, ResultRedirect, result.Kind)
		assert.Equal(t, listingPath, result.Location)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertExpectations(t)
	})

	t.Run("zero amount writes nothing", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		result := service.CreateInvoice(ctx, ActionState{}, invoiceForm("c1", "0", "paid"))

		assert.Equal(t, ResultOk, result.Kind)
		assert.Equal(t, MsgCreateMissingFields, result.State.Message)
		assert.Equal(t, []string{MsgAmountPositive}, result.State.Errors["amount"])
		assert.NotContains(t, result.State.Errors, "customerId")
		assert.NotContains(t, result.State.Errors, "status")
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("storage failure returns a message", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("INSERT INTO invoices").
			WillReturnError(errors.New("insert or update on table \"invoices\" violates foreign key constraint"))

		result := service.CreateInvoice(ctx, ActionState{}, invoiceForm("unknown", "10", "paid"))

		assert.Equal(t, ResultOk, result.Kind)
		assert.Equal(t, ActionState{Message: MsgCreateFailed}, result.State)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("failed invalidation still redirects", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(1, 1))
		invalidator.On("Invalidate", mock.Anything, listingPath).Return(errors.New("redis down")).Once()

		result := service.CreateInvoice(ctx, ActionState{}, invoiceForm("c1", "1", "paid"))

		assert.Equal(t, ResultRedirect, result.Kind)
		invalidator.AssertExpectations(t)
	})
}

func TestInvoiceService_UpdateInvoice(t *testing.T) {
	ctx := context.Background()
	id := "cc27c14a-0acf-4f4a-a6c9-d45682c144b9"

	t.Run("valid form overwrites fields and refreshes the date", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("UPDATE invoices SET customer_id = \\$1, amount = \\$2, status = \\$3, date = \\$4 WHERE id = \\$5").
			WithArgs("c2", 100, "paid", "2026-10-19", id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		invalidator.On("Invalidate", mock.Anything, listingPath).Return(nil).Once()

		result := service.UpdateInvoice(ctx, id, ActionState{}, invoiceForm("c2", "1.00", "paid"))

		assert.Equal(t, ResultRedirect, result.Kind)
		assert.Equal(t, listingPath, result.Location)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertExpectations(t)
	})

	t.Run("invalid form reports field errors", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		result := service.UpdateInvoice(ctx, id, ActionState{Message: "previous"}, invoiceForm("c2", "12", "void"))

		assert.Equal(t, ResultOk, result.Kind)
		assert.Equal(t, MsgUpdateMissingFields, result.State.Message)
		assert.Equal(t, map[string][]string{"status": {MsgSelectStatus}}, result.State.Errors)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})

	t.Run("storage failure returns a message", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("UPDATE invoices").WillReturnError(errors.New("deadlock detected"))

		result := service.UpdateInvoice(ctx, id, ActionState{}, invoiceForm("c2", "12", "paid"))

		assert.Equal(t, ActionState{Message: MsgUpdateFailed}, result.State)
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_DeleteInvoice(t *testing.T) {
	ctx := context.Background()
	id := "cc27c14a-0acf-4f4a-a6c9-d45682c144b9"

	t.Run("existing invoice", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("DELETE FROM invoices WHERE id = \\$1").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		invalidator.On("Invalidate", mock.Anything, listingPath).Return(nil).Once()

		state := service.DeleteInvoice(ctx, id)

		assert.Equal(t, ActionState{Message: MsgInvoiceDeleted}, state)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertExpectations(t)
	})

	t.Run("deleting twice reports success both times", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("DELETE FROM invoices").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
		sqlMock.ExpectExec("DELETE FROM invoices").WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
		invalidator.On("Invalidate", mock.Anything, listingPath).Return(nil).Twice()

		assert.Equal(t, MsgInvoiceDeleted, service.DeleteInvoice(ctx, id).Message)
		assert.Equal(t, MsgInvoiceDeleted, service.DeleteInvoice(ctx, id).Message)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertExpectations(t)
	})

	t.Run("storage fault skips invalidation", func(t *testing.T) {
		service, sqlMock, invalidator := newTestInvoiceService(t)

		sqlMock.ExpectExec("DELETE FROM invoices").WithArgs(id).WillReturnError(errors.New("connection refused"))

		state := service.DeleteInvoice(ctx, id)

		assert.Equal(t, ActionState{Message: MsgDeleteFailed}, state)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	})
}

func TestParseInvoiceForm_IgnoresUnknownFields(t *testing.T) {
	input := ParseInvoiceForm(url.Values{"customerId": {"c1"}, "amount": {"3.5"}, "status": {"paid"}, "extra": {"x"}})
	assert.Equal(t, "c1", input.CustomerID)
	assert.Equal(t, int64(350), input.AmountCents())
}
