package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"aurabags-storefront/internal/domain"
)

type createOrderRequest struct {
	Address       string                `json:"address"`
	City          string                `json:"city"`
	State         string                `json:"state"`
	Country       string                `json:"country"`
	PostalCode    string                `json:"postal_code"`
	Phone         string                `json:"phone,omitempty"`
	Items         []createOrderItemLine `json:"items"`
	PaymentMethod string                `json:"payment_method,omitempty"`
	Notes         string                `json:"notes,omitempty"`
}

type createOrderItemLine struct {
	ProductID flexID `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// OrderPage is one page of the order history.
type OrderPage struct {
	Count   int
	HasNext bool
	Orders  []domain.Order
}

// CreateOrder submits the order draft and returns the order as stored by the
// server, including its order number.
func (c *Client) CreateOrder(ctx context.Context, draft domain.Order) (*domain.Order, error) {
	in := createOrderRequest{
		Address:       draft.ShippingAddress.Street,
		City:          draft.ShippingAddress.City,
		State:         draft.ShippingAddress.State,
		Country:       draft.ShippingAddress.Country,
		PostalCode:    draft.ShippingAddress.PostalCode,
		Phone:         draft.Phone,
		PaymentMethod: draft.PaymentMethod,
		Notes:         draft.Notes,
	}
	for _, l := range draft.Lines {
		v := l.Variant.Normalize()
		in.Items = append(in.Items, createOrderItemLine{
			ProductID: flexID(l.ProductID),
			Quantity:  l.Quantity,
			Color:     v.Color,
			Size:      v.Size,
		})
	}
	var out apiOrder
	if err := c.authed(ctx, http.MethodPost, "orders/create/", nil, in, &out); err != nil {
		return nil, err
	}
	order := out.toOrder()
	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context, page int) (OrderPage, error) {
	var query url.Values
	if page > 0 {
		query = url.Values{"page": []string{strconv.Itoa(page)}}
	}
	var out struct {
		Count   int        `json:"count"`
		Next    *string    `json:"next"`
		Results []apiOrder `json:"results"`
	}
	if err := c.authed(ctx, http.MethodGet, "orders/", query, nil, &out); err != nil {
		return OrderPage{}, err
	}
	res := OrderPage{Count: out.Count, HasNext: out.Next != nil && *out.Next != ""}
	for _, o := range out.Results {
		res.Orders = append(res.Orders, o.toOrder())
	}
	return res, nil
}

func (c *Client) GetOrder(ctx context.Context, number string) (*domain.Order, error) {
	var out apiOrder
	if err := c.authed(ctx, http.MethodGet, orderPath(number, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	order := out.toOrder()
	return &order, nil
}

func (c *Client) CancelOrder(ctx context.Context, number string) error {
	return c.authed(ctx, http.MethodPost, orderPath(number, "cancel/"), nil, nil, nil)
}

func (c *Client) OrderStatus(ctx context.Context, number string) (domain.OrderTracking, error) {
	var out struct {
		Status         string `json:"status"`
		TrackingNumber string `json:"tracking_number"`
	}
	if err := c.authed(ctx, http.MethodGet, orderPath(number, "status/"), nil, nil, &out); err != nil {
		return domain.OrderTracking{}, err
	}
	return domain.OrderTracking{Status: domain.OrderStatus(out.Status), TrackingNumber: out.TrackingNumber}, nil
}

func orderPath(number, suffix string) string {
	return fmt.Sprintf("orders/%s/%s", url.PathEscape(number), suffix)
}
