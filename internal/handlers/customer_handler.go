package handlers

import (
	"log"
	"net/http"

	"github.com/ruralpay/invoices/internal/models"
	"github.com/ruralpay/invoices/internal/services"
)

type CustomerHandler struct {
	customers CustomerLister
}

func NewCustomerHandler(customers CustomerLister) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// ListCustomers returns customers with their invoice totals
// @Summary List customers
// @Tags Customers
// @Produce json
// @Param search query string false "Filter over name and email"
// @Success 200 {array} models.CustomerRow
// @Router /dashboard/customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := normalizeQuery(r.URL.Query().Get("search"))

	customers, err := h.customers.FetchFilteredCustomers(r.Context(), query)
	if err != nil {
		log.Printf("[CUSTOMER] Listing failed: %v", err)
		services.SendErrorResponse(w, "Failed to fetch customer table.", http.StatusInternalServerError, nil)
		return
	}
	if customers == nil {
		customers = []models.CustomerRow{}
	}

	services.SendJSON(w, http.StatusOK, customers)
}
