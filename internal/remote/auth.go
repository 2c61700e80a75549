package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"aurabags-storefront/internal/domain"
	tokenrepo "aurabags-storefront/internal/repository/token"
)

// RegisterInput is the account creation payload.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair and persists it.
func (c *Client) Login(ctx context.Context, username, password string) (tokenrepo.Pair, error) {
	var out struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	in := map[string]string{"username": strings.TrimSpace(username), "password": password}
	if err := c.anonymous(ctx, http.MethodPost, "auth/jwt/create/", in, &out); err != nil {
		return tokenrepo.Pair{}, err
	}
	if out.Access == "" {
		return tokenrepo.Pair{}, fmt.Errorf("login: empty access token: %w", domain.ErrUnauthorized)
	}
	pair := tokenrepo.Pair{Access: out.Access, Refresh: out.Refresh}
	if err := c.tokens.Save(ctx, pair); err != nil {
		return tokenrepo.Pair{}, fmt.Errorf("persist tokens: %w", err)
	}
	return pair, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	var out apiUser
	if err := c.anonymous(ctx, http.MethodPost, "auth/users/", in, &out); err != nil {
		return nil, err
	}
	customer := out.toCustomer()
	return &customer, nil
}

// Profile fetches the signed-in customer.
func (c *Client) Profile(ctx context.Context) (*domain.Customer, error) {
	var out apiUser
	if err := c.authed(ctx, http.MethodGet, "users/profile/", nil, nil, &out); err != nil {
		return nil, err
	}
	customer := out.toCustomer()
	return &customer, nil
}

// Logout forgets the stored token pair.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.Clear(ctx)
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *domain.Address
}

func (c *Client) UpdateProfile(ctx context.Context, in ProfileUpdate) (*domain.Customer, error) {
	body := map[string]interface{}{}
	if in.FirstName != nil {
		body["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		body["last_name"] = *in.LastName
	}
	profile := map[string]string{}
	if in.Phone != nil {
		profile["phone"] = *in.Phone
	}
	if in.Address != nil {
		profile["address"] = in.Address.Street
		profile["city"] = in.Address.City
		profile["state"] = in.Address.State
		profile["country"] = in.Address.Country
		profile["postal_code"] = in.Address.PostalCode
	}
	if len(profile) > 0 {
		body["profile"] = profile
	}
	var out apiUser
	if err := c.authed(ctx, http.MethodPatch, "users/profile/", nil, body, &out); err != nil {
		return nil, err
	}
	customer := out.toCustomer()
	return &customer, nil
}
