package remote

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"aurabags-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// flexID accepts numeric or string identifiers and sends numeric ids back as
// JSON numbers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

func (id flexID) MarshalJSON() ([]byte, error) {
	s := string(id)
	if s != "" && isDigits(s) {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// cents converts a decimal currency amount to integer minor units.
func cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

type apiProduct struct {
	ID    flexID          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
	Slug  string          `json:"slug"`
}

type apiCartItem struct {
	ID         flexID          `json:"id"`
	Product    apiProduct      `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Color      string          `json:"color"`
	Size       string          `json:"size"`
}

func (i apiCartItem) toLine() domain.CartLine {
	return domain.CartLine{
		ID:             string(i.ID),
		ProductID:      string(i.Product.ID),
		Name:           i.Product.Name,
		UnitPriceCents: cents(i.Product.Price),
		Image:          i.Product.Image,
		Quantity:       i.Quantity,
		Variant:        domain.Variant{Color: i.Color, Size: i.Size}.Normalize(),
	}
}

type apiCart struct {
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Items      []apiCartItem   `json:"items"`
}

func (c apiCart) toCart() domain.Cart {
	out := domain.Cart{}
	for _, item := range c.Items {
		if item.Quantity <= 0 {
			continue
		}
		out.Lines = append(out.Lines, item.toLine())
	}
	return out
}

type apiItemRequest struct {
	Product  flexID `json:"product"`
	Quantity int    `json:"quantity"`
	Color    string `json:"color,omitempty"`
	Size     string `json:"size,omitempty"`
}

func itemRequest(line domain.CartLine) apiItemRequest {
	v := line.Variant.Normalize()
	return apiItemRequest{
		Product:  flexID(line.ProductID),
		Quantity: line.Quantity,
		Color:    v.Color,
		Size:     v.Size,
	}
}

type apiProfile struct {
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type apiUser struct {
	ID        flexID     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Profile   apiProfile `json:"profile"`
}

func (u apiUser) toCustomer() domain.Customer {
	c := domain.Customer{
		ID:        string(u.ID),
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Profile.Phone,
	}
	addr := domain.Address{
		Street:     u.Profile.Address,
		City:       u.Profile.City,
		State:      u.Profile.State,
		PostalCode: u.Profile.PostalCode,
		Country:    u.Profile.Country,
	}
	if addr != (domain.Address{}) {
		c.Address = &addr
	}
	return c
}

type apiShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"phone,omitempty"`
}

type apiOrderItem struct {
	ID         flexID          `json:"id"`
	Product    apiProduct      `json:"product"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Color      string          `json:"color"`
	Size       string          `json:"size"`
}

type apiOrder struct {
	ID              flexID             `json:"id"`
	OrderNumber     string             `json:"order_number"`
	Status          string             `json:"status"`
	PaymentStatus   string             `json:"payment_status"`
	PaymentMethod   string             `json:"payment_method"`
	Total           decimal.Decimal    `json:"total"`
	CreatedAt       time.Time          `json:"created_at"`
	ShippingAddress apiShippingAddress `json:"shipping_address"`
	Items           []apiOrderItem     `json:"items"`
	Notes           string             `json:"notes"`
	TrackingNumber  string             `json:"tracking_number"`
}

func (o apiOrder) toOrder() domain.Order {
	id := strings.TrimSpace(o.OrderNumber)
	if id == "" {
		id = string(o.ID)
	}
	out := domain.Order{
		ID:            id,
		Status:        domain.OrderStatus(o.Status),
		PaymentStatus: domain.PaymentStatus(o.PaymentStatus),
		PaymentMethod: o.PaymentMethod,
		TotalCents:    cents(o.Total),
		ShippingAddress: domain.Address{
			Street:     o.ShippingAddress.Address,
			City:       o.ShippingAddress.City,
			State:      o.ShippingAddress.State,
			PostalCode: o.ShippingAddress.PostalCode,
			Country:    o.ShippingAddress.Country,
		},
		Phone:          o.ShippingAddress.Phone,
		Notes:          o.Notes,
		TrackingNumber: o.TrackingNumber,
		CreatedAt:      o.CreatedAt,
	}
	if out.Status == "" {
		out.Status = domain.OrderPending
	}
	if out.PaymentStatus == "" {
		out.PaymentStatus = domain.PaymentPending
	}
	for _, item := range o.Items {
		price := item.Price
		if price.IsZero() {
			price = item.Product.Price
		}
		out.Lines = append(out.Lines, domain.CartLine{
			ID:             string(item.ID),
			ProductID:      string(item.Product.ID),
			Name:           item.Product.Name,
			UnitPriceCents: cents(price),
			Image:          item.Product.Image,
			Quantity:       item.Quantity,
			Variant:        domain.Variant{Color: item.Color, Size: item.Size}.Normalize(),
		})
	}
	return out
}
