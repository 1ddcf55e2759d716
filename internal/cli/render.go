package cli

import (
	"fmt"
	"io"

	"github.com/ruralpay/invoices/internal/handlers"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders a cent amount as US dollars, e.g. "$1,200.00".
func FormatCurrency(cents int64) string {
	return usd.Sprintf("$%.2f", float64(cents)/100)
}

// RenderListing writes one invoice page as an aligned table.
func RenderListing(w io.Writer, listing *handlers.InvoiceListing) {
	if listing.Query != "" {
		fmt.Fprintf(w, "Search %q, page %d of %d\n", listing.Query, listing.Page, listing.TotalPages)
	} else {
		fmt.Fprintf(w, "All invoices, page %d of %d\n", listing.Page, listing.TotalPages)
	}

	if len(listing.Invoices) == 0 {
		fmt.Fprintln(w, "No invoices found.")
		return
	}

	fmt.Fprintf(w, "%-10s  %-7s  %12s  %s\n", "DATE", "STATUS", "AMOUNT", "CUSTOMER")
	for _, inv := range listing.Invoices {
		fmt.Fprintf(w, "%-10s  %-7s  %12s  %s <%s>\n", inv.Date, inv.Status, FormatCurrency(inv.AmountCents), inv.Name, inv.Email)
	}
}
