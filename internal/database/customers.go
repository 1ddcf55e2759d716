package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ruralpay/invoices/internal/models"
)

// ErrUserNotFound is returned by FindUserByEmail when no user matches.
var ErrUserNotFound = errors.New("user not found")

type CustomerStore struct {
	db *sql.DB
}

func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// FetchCustomers lists every customer for the invoice form select.
func (s *CustomerStore) FetchCustomers(ctx context.Context) ([]models.CustomerField, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM customers
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}
	defer rows.Close()

	customers := []models.CustomerField{}
	for rows.Next() {
		var c models.CustomerField
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// FetchFilteredCustomers returns customers matching query by name or email,
// with their invoice count and pending/paid totals.
func (s *CustomerStore) FetchFilteredCustomers(ctx context.Context, query string) ([]models.CustomerRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			customers.id,
			customers.name,
			customers.email,
			customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0) AS total_paid
		FROM customers
		LEFT JOIN invoices ON customers.id = invoices.customer_id
		WHERE customers.name ILIKE $1 OR customers.email ILIKE $1
		GROUP BY customers.id, customers.name, customers.email, customers.image_url
		ORDER BY customers.name ASC`,
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("fetch filtered customers: %w", err)
	}
	defer rows.Close()

	customers := []models.CustomerRow{}
	for rows.Next() {
		var c models.CustomerRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL, &c.TotalInvoices, &c.TotalPending, &c.TotalPaid); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password
		FROM users
		WHERE email = $1`, email).Scan(&u.ID, &u.Name, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
