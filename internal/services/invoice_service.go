package services

import (
	"context"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/ruralpay/invoices/internal/audit"
	"github.com/ruralpay/invoices/internal/models"
)

// Action outcome messages.
const (
	MsgCreateMissingFields = "Missing Fields. Failed to Create Invoice."
	MsgUpdateMissingFields = "Missing Fields. Failed to Update Invoice."
	MsgCreateFailed        = "Error creating Invoice."
	MsgUpdateFailed        = "Error updating Invoice."
	MsgDeleteFailed        = "Error deleting Invoice."
	MsgInvoiceDeleted      = "Invoice Deleted."
)

// InvoiceWriter runs the single-statement invoice mutations.
type InvoiceWriter interface {
	InsertInvoice(ctx context.Context, inv *models.Invoice) error
	UpdateInvoice(ctx context.Context, inv *models.Invoice) (int64, error)
	DeleteInvoice(ctx context.Context, id string) (int64, error)
}

// CacheInvalidator marks every cached render of a path stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, path string) error
}

type InvoiceService struct {
	store       InvoiceWriter
	cache       CacheInvalidator
	validator   *ValidationHelper
	audit       *audit.Logger
	listingPath string
	now         func() time.Time
	newID       func() string
}

func NewInvoiceService(store InvoiceWriter, cache CacheInvalidator, listingPath string) *InvoiceService {
	return &InvoiceService{
		store:       store,
		cache:       cache,
		validator:   NewValidationHelper(),
		audit:       audit.NewLogger(),
		listingPath: listingPath,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
}

// ListingPath is the route that create and update redirect to.
func (s *InvoiceService) ListingPath() string {
	return s.listingPath
}

func (s *InvoiceService) today() string {
	return s.now().UTC().Format(models.DateLayout)
}

// CreateInvoice validates the form and inserts a new invoice dated today.
// On success the listing is invalidated and the result redirects to it.
func (s *InvoiceService) CreateInvoice(ctx context.Context, _ ActionState, form url.Values) Result {
	validated := s.validator.ValidateInvoiceForm(form)
	if !validated.Success {
		log.Printf("[INVOICE] Create rejected: %v", validated.FieldErrors)
		return Ok(ActionState{Errors: validated.FieldErrors, Message: MsgCreateMissingFields})
	}

	inv := &models.Invoice{
		ID:          s.newID(),
		CustomerID:  validated.Data.CustomerID,
		AmountCents: validated.Data.AmountCents(),
		Status:      validated.Data.Status,
		Date:        s.today(),
	}

	if err := s.store.InsertInvoice(ctx, inv); err != nil {
		log.Printf("[INVOICE] Create failed for customer %s: %v", inv.CustomerID, err)
		s.audit.LogError("create", inv.ID, err)
		return Ok(ActionState{Message: MsgCreateFailed})
	}

	log.Printf("[INVOICE] Invoice Created - ID: %s, amount: %d", inv.ID, inv.AmountCents)
	s.audit.LogInvoice(audit.EventInvoiceCreated, inv.ID, inv.CustomerID, inv.AmountCents, inv.Status)
	s.invalidateListing(ctx)
	return Redirect(s.listingPath)
}

// UpdateInvoice validates the form and overwrites customer, amount and
// status of invoice id. The date is reset to today.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, id string, _ ActionState, form url.Values) Result {
	validated := s.validator.ValidateInvoiceForm(form)
	if !validated.Success {
		log.Printf("[INVOICE] Update of %s rejected: %v", id, validated.FieldErrors)
		return Ok(ActionState{Errors: validated.FieldErrors, Message: MsgUpdateMissingFields})
	}

	inv := &models.Invoice{
		ID:          id,
		CustomerID:  validated.Data.CustomerID,
		AmountCents: validated.Data.AmountCents(),
		Status:      validated.Data.Status,
		Date:        s.today(),
	}

	n, err := s.store.UpdateInvoice(ctx, inv)
	if err != nil {
		log.Printf("[INVOICE] Update failed for %s: %v", id, err)
		s.audit.LogError("update", id, err)
		return Ok(ActionState{Message: MsgUpdateFailed})
	}
	if n == 0 {
		log.Printf("[INVOICE] Update of %s matched no rows", id)
	}

	log.Printf("[INVOICE] Invoice Updated - ID: %s", id)
	s.audit.LogInvoice(audit.EventInvoiceUpdated, inv.ID, inv.CustomerID, inv.AmountCents, inv.Status)
	s.invalidateListing(ctx)
	return Redirect(s.listingPath)
}

// DeleteInvoice removes invoice id. Deleting an id that does not exist
// succeeds, so repeating a delete always reports "Invoice Deleted.".
// The listing is invalidated only after a successful statement.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id string) ActionState {
	n, err := s.store.DeleteInvoice(ctx, id)
	if err != nil {
		log.Printf("[INVOICE] Delete failed for %s: %v", id, err)
		s.audit.LogError("delete", id, err)
		return ActionState{Message: MsgDeleteFailed}
	}

	log.Printf("[INVOICE] Invoice Deleted - ID: %s, rows: %d", id, n)
	s.audit.LogDelete(id, n)
	s.invalidateListing(ctx)
	return ActionState{Message: MsgInvoiceDeleted}
}

// invalidateListing never fails the action: the write already happened and
// the cached view expires on its own TTL.
func (s *InvoiceService) invalidateListing(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, s.listingPath); err != nil {
		log.Printf("[INVOICE] Failed to invalidate %s: %v", s.listingPath, err)
	}
}
