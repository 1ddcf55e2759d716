package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ruralpay/invoices/internal/models"
	"github.com/skip2/go-qrcode"
)

type InvoiceReader interface {
	FetchInvoiceByID(ctx context.Context, id string) (*models.InvoiceForm, error)
}

// QRService renders a scannable payment reference for an invoice.
type QRService struct {
	invoices InvoiceReader
	size     int
}

func NewQRService(invoices InvoiceReader) *QRService {
	return &QRService{invoices: invoices, size: 256}
}

type invoiceQRPayload struct {
	InvoiceID  string `json:"invoiceId"`
	CustomerID string `json:"customerId"`
	Amount     int64  `json:"amount"` // in cents
	Status     string `json:"status"`
}

// InvoicePayload is the JSON text encoded into the QR image.
func InvoicePayload(inv *models.InvoiceForm) (string, error) {
	data, err := json.Marshal(invoiceQRPayload{
		InvoiceID:  inv.ID,
		CustomerID: inv.CustomerID,
		Amount:     toCents(inv.Amount),
		Status:     inv.Status,
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GenerateInvoiceQR returns a PNG of the invoice payload.
func (s *QRService) GenerateInvoiceQR(ctx context.Context, id string) ([]byte, error) {
	inv, err := s.invoices.FetchInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := InvoicePayload(inv)
	if err != nil {
		return nil, fmt.Errorf("encode qr payload: %w", err)
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, s.size)
	if err != nil {
		return nil, fmt.Errorf("render qr for invoice %s: %w", id, err)
	}
	return png, nil
}
