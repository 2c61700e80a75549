// Package remote is a typed client for the storefront REST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aurabags-storefront/internal/domain"
	tokenrepo "aurabags-storefront/internal/repository/token"
)

// Client calls the storefront API on behalf of the current session. Tokens are
// read from and written to the token repository on every call.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  tokenrepo.Repository
	logger  *log.Logger
}

// New builds a Client rooted at baseURL.
func New(baseURL string, timeout time.Duration, tokens tokenrepo.Repository, logger *log.Logger) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  logger,
	}, nil
}

// HasSession reports whether any token is stored.
func (c *Client) HasSession(ctx context.Context) bool {
	p := c.tokens.Get(ctx)
	return p.Access != "" || p.Refresh != ""
}

// Tokens returns the stored token pair.
func (c *Client) Tokens(ctx context.Context) tokenrepo.Pair {
	return c.tokens.Get(ctx)
}

// authed sends an authenticated request. A 401 triggers one refresh and one
// retry of the original request.
func (c *Client) authed(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	pair := c.tokens.Get(ctx)
	if pair.Access == "" && pair.Refresh == "" {
		return domain.ErrUnauthorized
	}
	payload, err := encodeBody(in)
	if err != nil {
		return err
	}

	status, body, err := c.roundTrip(ctx, method, path, query, payload, pair.Access)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		access, err := c.refresh(ctx, pair.Refresh)
		if err != nil {
			return err
		}
		status, body, err = c.roundTrip(ctx, method, path, query, payload, access)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			c.dropSession(ctx)
			return newAPIError(status, body)
		}
	}
	return decodeResponse(method, path, status, body, out)
}

// anonymous sends a request without credentials.
func (c *Client) anonymous(ctx context.Context, method, path string, in, out interface{}) error {
	payload, err := encodeBody(in)
	if err != nil {
		return err
	}
	status, body, err := c.roundTrip(ctx, method, path, nil, payload, "")
	if err != nil {
		return err
	}
	return decodeResponse(method, path, status, body, out)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		c.dropSession(ctx)
		return "", domain.ErrUnauthorized
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := c.anonymous(ctx, http.MethodPost, "auth/jwt/refresh/", map[string]string{"refresh": refreshToken}, &out); err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			return "", err
		}
		c.logger.Printf("remote: token refresh rejected: %v", err)
		c.dropSession(ctx)
		return "", fmt.Errorf("refresh session: %w", domain.ErrUnauthorized)
	}
	if out.Access == "" {
		c.dropSession(ctx)
		return "", fmt.Errorf("refresh session: empty access token: %w", domain.ErrUnauthorized)
	}
	if err := c.tokens.SaveAccess(ctx, out.Access); err != nil {
		c.logger.Printf("remote: persist refreshed token: %v", err)
	}
	return out.Access, nil
}

func (c *Client) dropSession(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Printf("remote: clear tokens: %v", err)
	}
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte, access string) (int, []byte, error) {
	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s %s: %v", domain.ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read %s %s: %v", domain.ErrUnavailable, method, path, err)
	}
	return resp.StatusCode, data, nil
}

func encodeBody(in interface{}) ([]byte, error) {
	if in == nil {
		return nil, nil
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return payload, nil
}

func decodeResponse(method, path string, status int, body []byte, out interface{}) error {
	if status >= 400 {
		return newAPIError(status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s %s: %v", domain.ErrUnavailable, method, path, err)
	}
	return nil
}
