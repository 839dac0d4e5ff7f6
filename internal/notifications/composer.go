package notifications

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/zinxon/towber-api/pkg/db/models"
)

const manualContactMarker = "⚠️ OUT OF SERVICE — CONTACT CUSTOMER"

// torontoTime falls back to UTC when the tz database is unavailable.
var torontoTime = func() *time.Location {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Composer renders operator-facing order summaries.
type Composer struct {
	uploadBaseURL string
}

// NewComposer builds a composer; uploadBaseURL prefixes stored image keys.
func NewComposer(uploadBaseURL string) *Composer {
	return &Composer{uploadBaseURL: strings.TrimRight(uploadBaseURL, "/")}
}

// OrderCreated renders the dispatch channel message for a new order.
func (c *Composer) OrderCreated(order *models.TowberOrder) string {
	var b strings.Builder

	b.WriteString("🚗 NEW TOWING ORDER 🚗\n")
	if order.RequiresManualContact() {
		b.WriteString(manualContactMarker + "\n")
	}

	b.WriteString("📋 ORDER DETAILS\n")
	fmt.Fprintf(&b, "• Customer: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "• Phone: %s\n", order.PhoneNumber)
	fmt.Fprintf(&b, "• License Plate: %s\n", order.LicensePlate)
	fmt.Fprintf(&b, "• Service Type: %s\n", order.ServiceType)
	fmt.Fprintf(&b, "• Vehicle Type: %s\n", order.VehicleType)
	fmt.Fprintf(&b, "• Price: $%s\n", order.Price.StringFixed(2))
	fmt.Fprintf(&b, "• Price with Tax: $%s\n", order.PriceWithTax.StringFixed(2))
	fmt.Fprintf(&b, "• Distance: %s km\n", order.Distance.String())

	b.WriteString("⏰ TIME\n")
	fmt.Fprintf(&b, "• Created: %s\n", order.CreatedAt.In(torontoTime).Format("Mon, Jan 2, 2006, 3:04 PM"))
	if order.BookingAt != nil {
		fmt.Fprintf(&b, "• Booking: %s\n", order.BookingAt.In(torontoTime).Format("Mon, Jan 2, 2006, 3:04 PM"))
	}

	if len(order.ImageKeys) > 0 {
		b.WriteString("📸 IMAGES\n")
		for i, key := range order.ImageKeys {
			fmt.Fprintf(&b, "%d. %s/%s\n", i+1, c.uploadBaseURL, key)
		}
	} else {
		b.WriteString("📸 No images attached\n")
	}

	b.WriteString("📍 LOCATION DETAILS\n")
	fmt.Fprintf(&b, "• Pickup: %s\n", order.Location)
	fmt.Fprintf(&b, "• Destination: %s\n", order.Destination)
	fmt.Fprintf(&b, "• Maps Link: https://www.google.com/maps/search/?api=1&query=%s\n", url.QueryEscape(order.Location))

	return b.String()
}
