package audit

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// Event types written by the invoice actions.
const (
	EventInvoiceCreated = "INVOICE_CREATED"
	EventInvoiceUpdated = "INVOICE_UPDATED"
	EventInvoiceDeleted = "INVOICE_DELETED"
	EventError          = "ERROR"
)

type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	InvoiceID  string    `json:"invoice_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	Status     string    `json:"status"`
	Details    any       `json:"details,omitempty"`
}

// Logger writes one "AUDIT: {json}" line per event.
type Logger struct {
	out *log.Logger
}

func NewLogger() *Logger {
	return NewLoggerTo(os.Stderr)
}

func NewLoggerTo(w io.Writer) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags)}
}

func (a *Logger) LogInvoice(eventType, invoiceID, customerID string, amountCents int64, status string) {
	a.log(Event{
		Timestamp:  time.Now(),
		EventType:  eventType,
		InvoiceID:  invoiceID,
		CustomerID: customerID,
		Amount:     amountCents,
		Status:     status,
	})
}

func (a *Logger) LogDelete(invoiceID string, rowsAffected int64) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: EventInvoiceDeleted,
		InvoiceID: invoiceID,
		Status:    "SUCCESS",
		Details:   map[string]int64{"rows_affected": rowsAffected},
	})
}

func (a *Logger) LogError(operation, invoiceID string, err error) {
	a.log(Event{
		Timestamp: time.Now(),
		EventType: EventError,
		InvoiceID: invoiceID,
		Status:    "FAILED",
		Details:   map[string]string{"operation": operation, "error": err.Error()},
	})
}

func (a *Logger) log(event Event) {
	data, _ := json.Marshal(event)
	a.out.Printf("AUDIT: %s", string(data))
}
