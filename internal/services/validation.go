package services

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Field error messages shown next to the invoice form inputs.
const (
	MsgSelectCustomer = "Please select a customer."
	MsgAmountPositive = "Please enter an amount greater than $0."
	MsgSelectStatus   = "Please select an invoice status."
	MsgAmountTooLarge = "Please enter an amount no greater than $21,474,836.47."
)

// MaxAmountCents is the largest value the invoices.amount INT column holds.
const MaxAmountCents = math.MaxInt32

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxAmountCents)
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string              `json:"error"`             // Error message
	Details map[string][]string `json:"details,omitempty"` // Per-field messages
}

// InvoiceFormInput is the validated subset of the invoice form. id and date
// are assigned by the server and never read from the form.
type InvoiceFormInput struct {
	CustomerID string          `form:"customerId" validate:"required"`
	Amount     decimal.Decimal `form:"amount" validate:"gt=0,lte=2147483647"`
	Status     string          `form:"status" validate:"required,oneof=pending paid"`
}

// AmountCents converts the dollar amount to integer cents, rounding half away
// from zero.
func (in InvoiceFormInput) AmountCents() int64 {
	return toCents(in.Amount)
}

func roundedCents(d decimal.Decimal) decimal.Decimal {
	return d.Mul(hundred).Round(0)
}

func toCents(d decimal.Decimal) int64 {
	return roundedCents(d).IntPart()
}

// boundedCents maps an amount onto the int64 the validator checks. Values
// outside (0, MaxAmountCents] are pinned just past the bound they break, so
// IntPart never sees a number that would wrap.
func boundedCents(d decimal.Decimal) int64 {
	cents := roundedCents(d)
	switch {
	case cents.Sign() <= 0:
		return 0
	case cents.GreaterThan(maxCents):
		return MaxAmountCents + 1
	}
	return cents.IntPart()
}

// ValidatedFormResult is either Success with Data, or a FieldErrors map that
// holds an entry only for the fields that failed.
type ValidatedFormResult struct {
	Success     bool
	Data        InvoiceFormInput
	FieldErrors map[string][]string
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
	messages  map[string]string
}

// NewValidationHelper creates a new validation helper
func NewValidationHelper() *ValidationHelper {
	v := validator.New()

	// Report fields by their form name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]; name != "" && name != "-" {
			return name
		}
		return fld.Name
	})

	// Money is validated in whole cents so that an amount which rounds to
	// zero cents is rejected along with zero and negative amounts.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return boundedCents(d)
		}
		return nil
	}, decimal.Decimal{})

	return &ValidationHelper{
		validator: v,
		messages: map[string]string{
			"customerId": MsgSelectCustomer,
			"amount":     MsgAmountPositive,
			"amount.lte": MsgAmountTooLarge,
			"status":     MsgSelectStatus,
			"email":      "Please enter a valid email address.",
			"password":   "Password must be at least 6 characters.",
		},
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// FieldErrors turns a validator error into the per-field message map. Each
// failing field gets its own message list; passing fields are absent.
func (vh *ValidationHelper) FieldErrors(err error) map[string][]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	fieldErrors := make(map[string][]string, len(validationErrs))
	for _, fe := range validationErrs {
		msg, ok := vh.messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = vh.messages[fe.Field()]
		}
		if !ok {
			msg = "Invalid value."
		}
		fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], msg)
	}
	return fieldErrors
}

// ParseInvoiceForm coerces raw form fields. A missing, empty or non-numeric
// amount coerces to zero, which then fails validation.
func ParseInvoiceForm(form url.Values) InvoiceFormInput {
	amount, err := decimal.NewFromString(strings.TrimSpace(form.Get("amount")))
	if err != nil {
		amount = decimal.Zero
	}
	return InvoiceFormInput{
		CustomerID: form.Get("customerId"),
		Amount:     amount,
		Status:     form.Get("status"),
	}
}

// ValidateInvoiceForm coerces and validates an invoice form. It never panics
// or returns an error; failures come back in FieldErrors.
func (vh *ValidationHelper) ValidateInvoiceForm(form url.Values) ValidatedFormResult {
	input := ParseInvoiceForm(form)
	if err := vh.ValidateStruct(&input); err != nil {
		fieldErrors := vh.FieldErrors(err)
		if fieldErrors == nil {
			fieldErrors = map[string][]string{"form": {err.Error()}}
		}
		return ValidatedFormResult{FieldErrors: fieldErrors}
	}
	return ValidatedFormResult{Success: true, Data: input}
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, details map[string][]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message, Details: details})
}

// SendJSON writes v as a JSON body with the given status.
func SendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
