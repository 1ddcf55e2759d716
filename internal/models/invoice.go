package models

import (
	"github.com/shopspring/decimal"
)

// Invoice statuses accepted by the form and stored in invoices.status.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
)

// DateLayout is the YYYY-MM-DD format of invoices.date.
const DateLayout = "2006-01-02"

// Invoice is a row of the invoices table.
type Invoice struct {
	ID          string `json:"id" db:"id"`
	CustomerID  string `json:"customer_id" db:"customer_id"`
	AmountCents int64  `json:"amount" db:"amount"` // in cents
	Status      string `json:"status" db:"status"`
	Date        string `json:"date" db:"date"`
}

// InvoiceRow is an invoice joined with its customer, as shown in the listing.
type InvoiceRow struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	ImageURL    string `json:"image_url"`
}

// InvoiceForm is the edit form view of an invoice: amount is in dollars.
type InvoiceForm struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
}

// CentsToAmount converts a stored cent value back to a currency amount.
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
