// Package handoff builds messaging deep links for orders and product
// enquiries, and publishes order events to downstream consumers.
package handoff

import (
	"fmt"
	"net/url"
	"strings"

	"aurabags-storefront/internal/domain"
)

// Linker renders wa.me deep links for one business number.
type Linker struct {
	number string
}

func NewLinker(number string) *Linker {
	return &Linker{number: digitsOnly(number)}
}

// URL returns the deep link that opens a chat prefilled with message.
func (l *Linker) URL(message string) string {
	base := "https://wa.me/" + l.number
	if message == "" {
		return base
	}
	return base + "?text=" + escape(message)
}

// escape percent-encodes message for a query value, spaces as %20.
func escape(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCents renders an amount as dollars, e.g. 8999 -> "$89.99".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// OrderSummary is the message sent to the store after checkout. customer may
// be nil.
func OrderSummary(o domain.Order, customer *domain.Customer) string {
	var b strings.Builder
	b.WriteString("🛍️ *New Order from Aura Bags*\n\n")
	fmt.Fprintf(&b, "*Order ID:* %s\n", o.ID)
	if customer != nil {
		if name := customer.FullName(); name != "" {
			fmt.Fprintf(&b, "*Customer:* %s\n", name)
		}
		if customer.Email != "" {
			fmt.Fprintf(&b, "*Email:* %s\n", customer.Email)
		}
	}
	phone := o.Phone
	if phone == "" && customer != nil {
		phone = customer.Phone
	}
	if phone != "" {
		fmt.Fprintf(&b, "*Phone:* %s\n", phone)
	}

	b.WriteString("\n*Order Details:*\n")
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%dx %s", l.Quantity, l.Name)
		if label := l.Variant.Label(); label != "" {
			fmt.Fprintf(&b, " (%s)", label)
		}
		fmt.Fprintf(&b, " - %s\n", FormatCents(l.UnitPriceCents))
	}
	fmt.Fprintf(&b, "\n*Total Amount:* %s\n\n", FormatCents(o.TotalCents))

	a := o.ShippingAddress
	b.WriteString("*Shipping Address:*\n")
	b.WriteString(strings.TrimSpace(a.Street) + "\n")
	cityLine := strings.TrimSpace(a.City)
	if a.State != "" || a.PostalCode != "" {
		cityLine += ", " + strings.TrimSpace(strings.TrimSpace(a.State)+" "+strings.TrimSpace(a.PostalCode))
	}
	b.WriteString(cityLine + "\n")
	if a.Country != "" {
		b.WriteString(strings.TrimSpace(a.Country) + "\n")
	}
	b.WriteString("\n")

	if notes := strings.TrimSpace(o.Notes); notes != "" {
		fmt.Fprintf(&b, "*Notes:* %s\n\n", notes)
	}
	b.WriteString("Please confirm this order and provide payment instructions. Thank you!")
	return b.String()
}

// QuickBuy is the enquiry sent from a product card.
func QuickBuy(productName, price string) string {
	return fmt.Sprintf("Hi! I'm interested in the %s (%s). Can you provide more details?", productName, price)
}

// Support is the message sent from the order history page.
func Support(orderID string) string {
	return fmt.Sprintf("Hi! I have a question about my order %s. Could you please help me? Thank you!", orderID)
}
