package models

// CustomerField is the id/name pair used by the invoice form select.
type CustomerField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerRow is a customer with aggregated invoice totals (in cents).
type CustomerRow struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image_url"`
	TotalInvoices int64  `json:"total_invoices"`
	TotalPending  int64  `json:"total_pending"`
	TotalPaid     int64  `json:"total_paid"`
}
