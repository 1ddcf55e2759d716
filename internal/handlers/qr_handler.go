package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ruralpay/invoices/internal/database"
	"github.com/ruralpay/invoices/internal/services"
)

type QRHandler struct {
	service *services.QRService
}

func NewQRHandler(service *services.QRService) *QRHandler {
	return &QRHandler{service: service}
}

// InvoiceQR renders a payment QR code for an invoice
// @Summary Invoice QR code
// @Description PNG encoding the invoice id, customer, amount in cents and status
// @Tags Invoices
// @Produce png
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} services.ErrorResponse
// @Router /dashboard/invoices/{id}/qr [get]
func (h *QRHandler) InvoiceQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	png, err := h.service.GenerateInvoiceQR(r.Context(), id)
	if errors.Is(err, database.ErrInvoiceNotFound) {
		services.SendErrorResponse(w, "Invoice not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[QR] Generation for %s failed: %v", id, err)
		services.SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
