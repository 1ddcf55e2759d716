package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ruralpay/invoices/internal/models"
	"github.com/ruralpay/invoices/internal/services"
	"github.com/xuri/excelize/v2"
)

const invoiceSheet = "Invoices"

type InvoiceExporter interface {
	FetchAllFilteredInvoices(ctx context.Context, query string) ([]models.InvoiceRow, error)
}

type ExportHandler struct {
	invoices InvoiceExporter
	now      func() time.Time
}

func NewExportHandler(invoices InvoiceExporter) *ExportHandler {
	return &ExportHandler{invoices: invoices, now: time.Now}
}

// BuildInvoiceWorkbook lays the invoices out one per row under a header.
// Amounts are written in dollars.
func BuildInvoiceWorkbook(invoices []models.InvoiceRow) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(invoiceSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Customer", "Email", "Amount", "Date", "Status"}
	for i, h := range headers {
		f.SetCellValue(invoiceSheet, fmt.Sprintf("%c1", 'A'+i), h)
	}

	for idx, inv := range invoices {
		row := idx + 2
		f.SetCellValue(invoiceSheet, fmt.Sprintf("A%d", row), inv.Name)
		f.SetCellValue(invoiceSheet, fmt.Sprintf("B%d", row), inv.Email)
		f.SetCellValue(invoiceSheet, fmt.Sprintf("C%d", row), models.CentsToAmount(inv.AmountCents).InexactFloat64())
		f.SetCellValue(invoiceSheet, fmt.Sprintf("D%d", row), inv.Date)
		f.SetCellValue(invoiceSheet, fmt.Sprintf("E%d", row), inv.Status)
	}

	f.SetColWidth(invoiceSheet, "A", "A", 24)
	f.SetColWidth(invoiceSheet, "B", "B", 28)
	f.SetColWidth(invoiceSheet, "C", "C", 12)
	f.SetColWidth(invoiceSheet, "D", "D", 12)
	f.SetColWidth(invoiceSheet, "E", "E", 10)

	return f, nil
}

// ExportXLSX downloads every invoice matching the search parameter
// @Summary Export invoices
// @Tags Invoices
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "Same filter as the listing"
// @Success 200 {file} binary
// @Router /dashboard/invoices/export [get]
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	query := normalizeQuery(r.URL.Query().Get("search"))

	invoices, err := h.invoices.FetchAllFilteredInvoices(r.Context(), query)
	if err != nil {
		log.Printf("[EXPORT] Fetch failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch invoices.", http.StatusInternalServerError, nil)
		return
	}

	f, err := BuildInvoiceWorkbook(invoices)
	if err != nil {
		log.Printf("[EXPORT] Workbook failed: %v", err)
		services.SendErrorResponse(w, "Failed to export invoices.", http.StatusInternalServerError, nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"invoices_%s.xlsx\"", h.now().Format("20060102")))

	if err := f.Write(w); err != nil {
		log.Printf("[EXPORT] Write failed: %v", err)
	}
}
