package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"aurabags-storefront/internal/domain"
)

func (c *Client) GetCart(ctx context.Context) (domain.Cart, error) {
	var out apiCart
	if err := c.authed(ctx, http.MethodGet, "users/cart/", nil, nil, &out); err != nil {
		return domain.Cart{}, err
	}
	return out.toCart(), nil
}

func (c *Client) CartCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.authed(ctx, http.MethodGet, "users/cart/count/", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// AddCartItem adds line.Quantity units of the line's product and variant.
func (c *Client) AddCartItem(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	var out apiCartItem
	if err := c.authed(ctx, http.MethodPost, "users/cart/items/", nil, itemRequest(line), &out); err != nil {
		return domain.CartLine{}, err
	}
	return out.toLine(), nil
}

func (c *Client) UpdateCartItem(ctx context.Context, lineID string, quantity int) (domain.CartLine, error) {
	var out apiCartItem
	path := fmt.Sprintf("users/cart/items/%s/", url.PathEscape(lineID))
	if err := c.authed(ctx, http.MethodPut, path, nil, map[string]int{"quantity": quantity}, &out); err != nil {
		return domain.CartLine{}, err
	}
	return out.toLine(), nil
}

func (c *Client) RemoveCartItem(ctx context.Context, lineID string) error {
	path := fmt.Sprintf("users/cart/items/%s/", url.PathEscape(lineID))
	return c.authed(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.authed(ctx, http.MethodDelete, "users/cart/clear/", nil, nil, nil)
}

// SyncCart merges guest lines into the account cart and returns the result.
func (c *Client) SyncCart(ctx context.Context, lines []domain.CartLine) (domain.Cart, error) {
	items := make([]apiItemRequest, 0, len(lines))
	for _, l := range lines {
		items = append(items, itemRequest(l))
	}
	var out apiCart
	if err := c.authed(ctx, http.MethodPost, "users/cart/sync/", nil, map[string]interface{}{"items": items}, &out); err != nil {
		return domain.Cart{}, err
	}
	return out.toCart(), nil
}
