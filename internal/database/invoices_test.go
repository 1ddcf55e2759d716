package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ruralpay/invoices/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceStore_InsertInvoice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 0)
	inv := &models.Invoice{ID: "inv-1", CustomerID: "c1", AmountCents: 25050, Status: "pending", Date: "2026-10-19"}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO invoices \\(id, customer_id, amount, status, date\\)").
			WithArgs("inv-1", "c1", 25050, "pending", "2026-10-19").
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, store.InsertInvoice(context.Background(), inv))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO invoices").
			WillReturnError(errors.New("connection reset"))

		err := store.InsertInvoice(context.Background(), inv)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "insert invoice")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInvoiceStore_UpdateInvoice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 0)
	inv := &models.Invoice{ID: "inv-1", CustomerID: "c2", AmountCents: 100, Status: "paid", Date: "2026-10-19"}

	mock.ExpectExec("UPDATE invoices SET customer_id = \\$1, amount = \\$2, status = \\$3, date = \\$4 WHERE id = \\$5").
		WithArgs("c2", 100, "paid", "2026-10-19", "inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := store.UpdateInvoice(context.Background(), inv)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceStore_DeleteInvoice(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 0)

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM invoices WHERE id = \\$1").
			WithArgs("inv-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := store.DeleteInvoice(context.Background(), "inv-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM invoices WHERE id = \\$1").
			WithArgs("inv-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := store.DeleteInvoice(context.Background(), "inv-1")
		assert.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceStore_FetchFilteredInvoices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 6)
	date := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT invoices.id, invoices.amount, invoices.date").
		WithArgs("%lee%", 6, 6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "date", "status", "name", "email", "image_url"}).
			AddRow("inv-1", 15795, date, "pending", "Lee Robinson", "lee@robinson.com", "/customers/lee-robinson.png"))

	rows, err := store.FetchFilteredInvoices(context.Background(), "lee", 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-10-01", rows[0].Date)
	assert.Equal(t, int64(15795), rows[0].AmountCents)
	assert.Equal(t, "Lee Robinson", rows[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceStore_FetchAllFilteredInvoices(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 6)
	date := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY invoices.date DESC$").
		WithArgs("%paid%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "date", "status", "name", "email", "image_url"}).
			AddRow("inv-1", 500, date, "paid", "Amy Burns", "amy@burns.com", "/customers/amy-burns.png").
			AddRow("inv-2", 8945, date, "paid", "Lee Robinson", "lee@robinson.com", "/customers/lee-robinson.png"))

	rows, err := store.FetchAllFilteredInvoices(context.Background(), "paid")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceStore_FetchInvoicesPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 6)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("%%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	pages, err := store.FetchInvoicesPages(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, 3, pages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceStore_FetchInvoiceByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewInvoiceStore(db, 6)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_id, amount, status FROM invoices WHERE id = \\$1").
			WithArgs("inv-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "amount", "status"}).
				AddRow("inv-1", "c1", 25050, "paid"))

		form, err := store.FetchInvoiceByID(context.Background(), "inv-1")
		require.NoError(t, err)
		assert.Equal(t, "250.5", form.Amount.String())
		assert.Equal(t, "paid", form.Status)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, customer_id, amount, status FROM invoices").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := store.FetchInvoiceByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS invoices").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
