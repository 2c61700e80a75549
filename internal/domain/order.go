package domain

import (
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Cancellable reports whether the customer may still cancel.
func (s OrderStatus) Cancellable() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Address is a shipping address. Street and City are required for checkout.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Complete reports whether the minimum fields for shipping are present.
func (a Address) Complete() bool {
	return strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

// Order is a placed order. Lines and TotalCents are a snapshot of the cart at
// submission time.
type Order struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId,omitempty"`
	Lines           []CartLine    `json:"lines"`
	TotalCents      int64         `json:"totalCents"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	PaymentMethod   string        `json:"paymentMethod,omitempty"`
	ShippingAddress Address       `json:"shippingAddress"`
	Phone           string        `json:"phone,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	TrackingNumber  string        `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// SnapshotCart copies the cart's lines and total into an order draft.
func SnapshotCart(c Cart) Order {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Order{
		Lines:      lines,
		TotalCents: c.TotalCents(),
	}
}

// OrderTracking is the status view of an order.
type OrderTracking struct {
	Status         OrderStatus `json:"status"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
}
