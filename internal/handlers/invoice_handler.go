package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ruralpay/invoices/internal/database"
	"github.com/ruralpay/invoices/internal/models"
	"github.com/ruralpay/invoices/internal/services"
	"golang.org/x/text/unicode/norm"
)

// ViewCache stores rendered listing pages per path and variant.
type ViewCache interface {
	Get(ctx context.Context, path, variant string) (body []byte, gen int64, hit bool, err error)
	Set(ctx context.Context, path string, gen int64, variant string, body []byte) error
}

type InvoiceLister interface {
	FetchFilteredInvoices(ctx context.Context, query string, page int) ([]models.InvoiceRow, error)
	FetchInvoicesPages(ctx context.Context, query string) (int, error)
	FetchInvoiceByID(ctx context.Context, id string) (*models.InvoiceForm, error)
}

type CustomerLister interface {
	FetchCustomers(ctx context.Context) ([]models.CustomerField, error)
	FetchFilteredCustomers(ctx context.Context, query string) ([]models.CustomerRow, error)
}

type InvoiceHandler struct {
	service   *services.InvoiceService
	invoices  InvoiceLister
	customers CustomerLister
	cache     ViewCache
}

func NewInvoiceHandler(service *services.InvoiceService, invoices InvoiceLister, customers CustomerLister, cache ViewCache) *InvoiceHandler {
	return &InvoiceHandler{
		service:   service,
		invoices:  invoices,
		customers: customers,
		cache:     cache,
	}
}

// InvoiceListing is one page of the invoice listing.
type InvoiceListing struct {
	Query      string              `json:"query"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
	Invoices   []models.InvoiceRow `json:"invoices"`
}

type invoiceEditView struct {
	Invoice   *models.InvoiceForm    `json:"invoice"`
	Customers []models.CustomerField `json:"customers"`
}

type invoiceCreateView struct {
	Customers []models.CustomerField `json:"customers"`
}

// normalizeQuery trims the search text and composes accents so that
// "Délba" typed either way matches the stored name.
func normalizeQuery(q string) string {
	return norm.NFC.String(strings.TrimSpace(q))
}

func pageParam(values url.Values) int {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListInvoices returns one page of invoices matching the search parameter
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Param search query string false "Filter over customer, amount, date and status"
// @Param page query int false "Page number, 1-based"
// @Success 200 {object} InvoiceListing
// @Router /dashboard/invoices [get]
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	query := normalizeQuery(values.Get("search"))
	page := pageParam(values)
	variant := url.Values{"search": {query}, "page": {strconv.Itoa(page)}}.Encode()
	path := h.service.ListingPath()

	body, gen, hit, cacheErr := h.cache.Get(r.Context(), path, variant)
	if cacheErr != nil {
		log.Printf("[CACHE] Read of %s?%s failed: %v", path, variant, cacheErr)
	} else if hit {
		writeCachedJSON(w, body, "HIT")
		return
	}

	invoices, err := h.invoices.FetchFilteredInvoices(r.Context(), query, page)
	if err != nil {
		log.Printf("[INVOICE] Listing failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch invoices.", http.StatusInternalServerError, nil)
		return
	}
	totalPages, err := h.invoices.FetchInvoicesPages(r.Context(), query)
	if err != nil {
		log.Printf("[INVOICE] Page count failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch total number of invoices.", http.StatusInternalServerError, nil)
		return
	}
	if invoices == nil {
		invoices = []models.InvoiceRow{}
	}

	body, err = json.Marshal(InvoiceListing{Query: query, Page: page, TotalPages: totalPages, Invoices: invoices})
	if err != nil {
		services.SendErrorResponse(w, "Internal Server Error", http.StatusInternalServerError, nil)
		return
	}
	// without a generation from Get there is nothing safe to write under
	if cacheErr == nil {
		if err := h.cache.Set(r.Context(), path, gen, variant, body); err != nil {
			log.Printf("[CACHE] Write of %s?%s failed: %v", path, variant, err)
		}
	}
	writeCachedJSON(w, body, "MISS")
}

func writeCachedJSON(w http.ResponseWriter, body []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// NewInvoiceForm returns the customer options for the create form
// @Summary Invoice create form
// @Tags Invoices
// @Produce json
// @Success 200 {object} invoiceCreateView
// @Router /dashboard/invoices/create [get]
func (h *InvoiceHandler) NewInvoiceForm(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.FetchCustomers(r.Context())
	if err != nil {
		log.Printf("[CUSTOMER] Fetch failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch all customers.", http.StatusInternalServerError, nil)
		return
	}
	services.SendJSON(w, http.StatusOK, invoiceCreateView{Customers: customers})
}

// EditInvoice returns an invoice with the customer options for its form
// @Summary Invoice edit form
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} invoiceEditView
// @Failure 404 {object} services.ErrorResponse
// @Router /dashboard/invoices/{id}/edit [get]
func (h *InvoiceHandler) EditInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		services.SendErrorResponse(w, "Invoice not found", http.StatusNotFound, nil)
		return
	}

	invoice, err := h.invoices.FetchInvoiceByID(r.Context(), id)
	if errors.Is(err, database.ErrInvoiceNotFound) {
		services.SendErrorResponse(w, "Invoice not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[INVOICE] Fetch of %s failed: %v", id, err)
		services.SendErrorResponse(w, "Failed to fetch invoice.", http.StatusInternalServerError, nil)
		return
	}

	customers, err := h.customers.FetchCustomers(r.Context())
	if err != nil {
		log.Printf("[CUSTOMER] Fetch failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch all customers.", http.StatusInternalServerError, nil)
		return
	}

	services.SendJSON(w, http.StatusOK, invoiceEditView{Invoice: invoice, Customers: customers})
}

// CreateInvoice creates an invoice from the submitted form
// @Summary Create invoice
// @Tags Invoices
// @Accept x-www-form-urlencoded
// @Produce json
// @Param customerId formData string true "Customer ID"
// @Param amount formData string true "Amount in dollars"
// @Param status formData string true "pending or paid"
// @Success 303
// @Failure 422 {object} services.ActionState
// @Failure 500 {object} services.ActionState
// @Router /dashboard/invoices [post]
func (h *InvoiceHandler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		services.SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, nil)
		return
	}
	writeResult(w, r, h.service.CreateInvoice(r.Context(), services.ActionState{}, r.PostForm))
}

// UpdateInvoice replaces customer, amount and status of an invoice
// @Summary Update invoice
// @Tags Invoices
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 303
// @Failure 422 {object} services.ActionState
// @Failure 500 {object} services.ActionState
// @Router /dashboard/invoices/{id} [post]
func (h *InvoiceHandler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		services.SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, nil)
		return
	}
	id := chi.URLParam(r, "id")
	writeResult(w, r, h.service.UpdateInvoice(r.Context(), id, services.ActionState{}, r.PostForm))
}

// DeleteInvoice removes an invoice. The listing stays on screen, so the
// outcome is returned as a message rather than a redirect.
// @Summary Delete invoice
// @Tags Invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} services.ActionState
// @Failure 500 {object} services.ActionState
// @Router /dashboard/invoices/{id}/delete [post]
func (h *InvoiceHandler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	state := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	services.SendJSON(w, stateStatus(state), state)
}
