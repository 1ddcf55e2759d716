package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ruralpay/invoices/internal/models"
)

// ErrInvoiceNotFound is returned by FetchInvoiceByID when no row matches.
var ErrInvoiceNotFound = errors.New("invoice not found")

// DefaultItemsPerPage is the listing page size used when none is configured.
const DefaultItemsPerPage = 6

// InvoiceStore issues the invoice statements. Every mutation is a single
// statement; there is no multi-statement transaction.
type InvoiceStore struct {
	db           *sql.DB
	itemsPerPage int
}

func NewInvoiceStore(db *sql.DB, itemsPerPage int) *InvoiceStore {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &InvoiceStore{db: db, itemsPerPage: itemsPerPage}
}

func (s *InvoiceStore) ItemsPerPage() int {
	return s.itemsPerPage
}

// InsertInvoice writes a new row.
func (s *InvoiceStore) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, customer_id, amount, status, date)
		VALUES ($1, $2, $3, $4, $5)`,
		inv.ID, inv.CustomerID, inv.AmountCents, inv.Status, inv.Date)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// UpdateInvoice overwrites customer, amount, status and date of the row
// identified by inv.ID and reports how many rows were affected.
func (s *InvoiceStore) UpdateInvoice(ctx context.Context, inv *models.Invoice) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE invoices
		SET customer_id = $1, amount = $2, status = $3, date = $4
		WHERE id = $5`,
		inv.CustomerID, inv.AmountCents, inv.Status, inv.Date, inv.ID)
	if err != nil {
		return 0, fmt.Errorf("update invoice %s: %w", inv.ID, err)
	}
	return rowsAffected(result), nil
}

// DeleteInvoice removes the row with the given id and reports how many rows
// were affected. Zero rows is not an error.
func (s *InvoiceStore) DeleteInvoice(ctx context.Context, id string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete invoice %s: %w", id, err)
	}
	return rowsAffected(result), nil
}

func rowsAffected(result sql.Result) int64 {
	n, err := result.RowsAffected()
	if err != nil {
		return -1
	}
	return n
}

const invoiceFilter = `
		customers.name ILIKE $1 OR
		customers.email ILIKE $1 OR
		invoices.amount::text ILIKE $1 OR
		invoices.date::text ILIKE $1 OR
		invoices.status ILIKE $1`

// FetchFilteredInvoices returns one page (1-based) of invoices whose customer,
// amount, date or status matches query.
func (s *InvoiceStore) FetchFilteredInvoices(ctx context.Context, query string, page int) ([]models.InvoiceRow, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.itemsPerPage

	rows, err := s.db.QueryContext(ctx, `
		SELECT invoices.id, invoices.amount, invoices.date, invoices.status,
			customers.name, customers.email, customers.image_url
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE`+invoiceFilter+`
		ORDER BY invoices.date DESC
		LIMIT $2 OFFSET $3`,
		"%"+query+"%", s.itemsPerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("fetch invoices: %w", err)
	}
	return scanInvoiceRows(rows)
}

// FetchAllFilteredInvoices returns every invoice matching query, newest
// first. Used by the spreadsheet export.
func (s *InvoiceStore) FetchAllFilteredInvoices(ctx context.Context, query string) ([]models.InvoiceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoices.id, invoices.amount, invoices.date, invoices.status,
			customers.name, customers.email, customers.image_url
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE`+invoiceFilter+`
		ORDER BY invoices.date DESC`,
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("fetch invoices: %w", err)
	}
	return scanInvoiceRows(rows)
}

func scanInvoiceRows(rows *sql.Rows) ([]models.InvoiceRow, error) {
	defer rows.Close()

	invoices := []models.InvoiceRow{}
	for rows.Next() {
		var inv models.InvoiceRow
		var date time.Time
		if err := rows.Scan(&inv.ID, &inv.AmountCents, &date, &inv.Status, &inv.Name, &inv.Email, &inv.ImageURL); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.Date = date.Format(models.DateLayout)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// FetchInvoicesPages returns the number of listing pages for query.
func (s *InvoiceStore) FetchInvoicesPages(ctx context.Context, query string) (int, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE`+invoiceFilter,
		"%"+query+"%").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return int(math.Ceil(float64(count) / float64(s.itemsPerPage))), nil
}

// FetchInvoiceByID returns the edit form view of an invoice.
func (s *InvoiceStore) FetchInvoiceByID(ctx context.Context, id string) (*models.InvoiceForm, error) {
	var form models.InvoiceForm
	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, amount, status
		FROM invoices
		WHERE id = $1`, id).Scan(&form.ID, &form.CustomerID, &cents, &form.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}

	form.Amount = models.CentsToAmount(cents)
	return &form, nil
}
