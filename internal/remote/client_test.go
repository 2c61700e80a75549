package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/repository/kv"
	tokenrepo "aurabags-storefront/internal/repository/token"
)

func newTestClient(t *testing.T, h http.Handler, pair tokenrepo.Pair) (*Client, tokenrepo.Repository) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	tokens := tokenrepo.NewKV(kv.NewJSON(kv.NewMemory(), nil))
	if pair != (tokenrepo.Pair{}) {
		if err := tokens.Save(context.Background(), pair); err != nil {
			t.Fatalf("seed tokens: %v", err)
		}
	}
	c, err := New(srv.URL+"/api", 5*time.Second, tokens, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, tokens
}

func TestGetCartConvertsDecimalPrices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/cart/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer a1" {
			t.Errorf("authorization header = %q", got)
		}
		_, _ = w.Write([]byte(`{"total_items":3,"total_price":"269.97","items":[
			{"id":7,"product":{"id":12,"name":"Tote","price":"89.99","image":"t.jpg"},"quantity":3,"color":"Black","size":""},
			{"id":8,"product":{"id":13,"name":"Ghost","price":"10.00"},"quantity":0}
		]}`))
	})
	c, _ := newTestClient(t, mux, tokenrepo.Pair{Access: "a1", Refresh: "r1"})

	cart, err := c.GetCart(context.Background())
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected zero-quantity line dropped, got %d lines", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.ID != "7" || line.ProductID != "12" || line.UnitPriceCents != 8999 {
		t.Fatalf("unexpected line: %+v", line)
	}
	if line.Variant.Color != "Black" {
		t.Fatalf("expected color carried, got %+v", line.Variant)
	}
	if cart.TotalCents() != 26997 {
		t.Fatalf("total = %d", cart.TotalCents())
	}
}

func TestAuthedRefreshesOnceAndRetries(t *testing.T) {
	var cartCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/cart/count/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cartCalls, 1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token expired"}`))
			return
		}
		_, _ = w.Write([]byte(`{"count":4}`))
	})
	mux.HandleFunc("/api/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["refresh"] != "r1" {
			t.Errorf("refresh token = %q", in["refresh"])
		}
		_, _ = w.Write([]byte(`{"access":"fresh"}`))
	})
	c, tokens := newTestClient(t, mux, tokenrepo.Pair{Access: "stale", Refresh: "r1"})

	n, err := c.CartCount(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 4 {
		t.Fatalf("count = %d", n)
	}
	if cartCalls != 2 || refreshCalls != 1 {
		t.Fatalf("expected 2 cart calls and 1 refresh, got %d and %d", cartCalls, refreshCalls)
	}
	if got := tokens.Get(context.Background()); got.Access != "fresh" || got.Refresh != "r1" {
		t.Fatalf("expected refreshed access persisted, got %+v", got)
	}
}

func TestAuthedDoesNotLoopOnRepeated401(t *testing.T) {
	var cartCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/cart/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cartCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		_, _ = w.Write([]byte(`{"access":"fresh"}`))
	})
	c, tokens := newTestClient(t, mux, tokenrepo.Pair{Access: "stale", Refresh: "r1"})

	_, err := c.GetCart(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if cartCalls != 2 || refreshCalls != 1 {
		t.Fatalf("expected one retry and one refresh, got %d and %d", cartCalls, refreshCalls)
	}
	if c.HasSession(context.Background()) {
		t.Fatalf("expected session dropped, tokens %+v", tokens.Get(context.Background()))
	}
}

func TestRejectedRefreshClearsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token is invalid or expired"}`))
	})
	c, tokens := newTestClient(t, mux, tokenrepo.Pair{Access: "stale", Refresh: "bad"})

	_, err := c.ListOrders(context.Background(), 0)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := tokens.Get(context.Background()); got != (tokenrepo.Pair{}) {
		t.Fatalf("expected tokens cleared, got %+v", got)
	}
}

func TestAuthedWithoutSession(t *testing.T) {
	var calls int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	c, _ := newTestClient(t, h, tokenrepo.Pair{})

	if err := c.ClearCart(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no request without a session, got %d", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrAlreadyExists},
		{http.StatusServiceUnavailable, domain.ErrUnavailable},
		{http.StatusTooManyRequests, domain.ErrUnavailable},
	}
	for _, tc := range cases {
		status := tc.status
		h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"quantity":["Ensure this value is greater than or equal to 1."]}`))
		})
		c, _ := newTestClient(t, h, tokenrepo.Pair{Access: "a", Refresh: "r"})
		_, err := c.UpdateCartItem(context.Background(), "5", 0)
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "quantity: Ensure this value is greater than or equal to 1." {
			t.Fatalf("status %d: unexpected api error %#v", tc.status, err)
		}
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	srv := httptest.NewServer(h)
	base := srv.URL
	srv.Close()

	tokens := tokenrepo.NewKV(kv.NewJSON(kv.NewMemory(), nil))
	_ = tokens.Save(context.Background(), tokenrepo.Pair{Access: "a", Refresh: "r"})
	c, err := New(base, time.Second, tokens, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.GetCart(context.Background()); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !c.HasSession(context.Background()) {
		t.Fatalf("transport failure must not drop the session")
	}
}

func TestLoginPersistsTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/jwt/create/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login must be anonymous")
		}
		_, _ = w.Write([]byte(`{"access":"a2","refresh":"r2"}`))
	})
	c, tokens := newTestClient(t, mux, tokenrepo.Pair{})

	if _, err := c.Login(context.Background(), " ana ", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := tokens.Get(context.Background()); got.Access != "a2" || got.Refresh != "r2" {
		t.Fatalf("unexpected tokens %+v", got)
	}
}

func TestCreateOrderSendsNumericProductIDs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/create/", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			City  string `json:"city"`
			Items []struct {
				ProductID json.RawMessage `json:"product_id"`
				Quantity  int             `json:"quantity"`
				Color     string          `json:"color"`
			} `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode: %v", err)
		}
		if in.City != "Lagos" || len(in.Items) != 1 || string(in.Items[0].ProductID) != "12" || in.Items[0].Color != "Tan" {
			t.Errorf("unexpected payload %+v", in)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":3,"order_number":"AB-1001","total":"179.98","created_at":"2026-01-02T03:04:05Z"}`))
	})
	c, _ := newTestClient(t, mux, tokenrepo.Pair{Access: "a", Refresh: "r"})

	draft := domain.Order{
		Lines: []domain.CartLine{{ProductID: "12", Quantity: 2, UnitPriceCents: 8999, Variant: domain.Variant{Color: "Tan"}}},
		ShippingAddress: domain.Address{Street: "1 Marina", City: "Lagos"},
	}
	got, err := c.CreateOrder(context.Background(), draft)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if got.ID != "AB-1001" || got.TotalCents != 17998 || got.Status != domain.OrderPending {
		t.Fatalf("unexpected order %+v", got)
	}
}
