package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"aurabags-storefront/internal/cache"
	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/remote"
	custrepo "aurabags-storefront/internal/repository/customer"
	"aurabags-storefront/internal/repository/kv"
	tokenrepo "aurabags-storefront/internal/repository/token"
	"github.com/golang-jwt/jwt/v5"
)

func newLocalSession() *Local {
	return NewLocal(custrepo.NewKV(kv.NewJSON(kv.NewMemory(), nil)))
}

func TestRegisterAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	svc := newLocalSession()
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{
		Email:     "User@Example.com",
		Password:  " Abcdefg1 ",
		FirstName: "Ada",
	})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if customer.Email != "user@example.com" || customer.PasswordHash != "" {
		t.Fatalf("unexpected customer %+v", customer)
	}
	if !svc.IsAuthenticated(ctx) {
		t.Fatalf("expected register to start a session")
	}
	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if svc.IsAuthenticated(ctx) {
		t.Fatalf("expected guest after logout")
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != customer.ID || current.PasswordHash != "" {
		t.Fatalf("unexpected current customer %+v", current)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newLocalSession()
	ctx := context.Background()
	in := RegisterInput{Email: "a@example.com", Password: "Abcdefg1"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("register: %v", err)
	}
	in.Email = "A@example.com"
	if _, err := svc.Register(ctx, in); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestRegisterWeakPasswordIsInvalidInput(t *testing.T) {
	_, err := newLocalSession().Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "short"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := newLocalSession()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = svc.Logout(ctx)

	if _, err := svc.Login(ctx, LoginInput{Email: "user@example.com", Password: "wrongpass"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "missing@example.com", Password: "Abcdefg1"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
	if svc.IsAuthenticated(ctx) {
		t.Fatalf("failed login must not start a session")
	}
}

func TestCurrentAsGuest(t *testing.T) {
	if _, err := newLocalSession().Current(context.Background()); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateProfileStoresAddress(t *testing.T) {
	svc := newLocalSession()
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	phone := " +234 800 "
	updated, err := svc.UpdateProfile(ctx, ProfileInput{
		Phone:   &phone,
		Address: &domain.Address{Street: "1 Marina", City: "Lagos"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "+234 800" || updated.Address == nil || updated.Address.City != "Lagos" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	current, _ := svc.Current(ctx)
	if current.Address == nil || !current.Address.Complete() {
		t.Fatalf("expected address on current customer, got %+v", current)
	}
}

type stubRemote struct {
	pair     tokenrepo.Pair
	profile  domain.Customer
	loginErr error
	profiles int
}

func (s *stubRemote) Login(_ context.Context, username, password string) (tokenrepo.Pair, error) {
	if s.loginErr != nil {
		return tokenrepo.Pair{}, s.loginErr
	}
	s.pair = tokenrepo.Pair{Access: "opaque-access", Refresh: "opaque-refresh"}
	return s.pair, nil
}

func (s *stubRemote) Register(_ context.Context, in remote.RegisterInput) (*domain.Customer, error) {
	return &domain.Customer{Username: in.Username, Email: in.Email}, nil
}

func (s *stubRemote) Profile(context.Context) (*domain.Customer, error) {
	s.profiles++
	c := s.profile
	return &c, nil
}

func (s *stubRemote) UpdateProfile(_ context.Context, in remote.ProfileUpdate) (*domain.Customer, error) {
	if in.FirstName != nil {
		s.profile.FirstName = *in.FirstName
	}
	c := s.profile
	return &c, nil
}

func (s *stubRemote) Logout(context.Context) error {
	s.pair = tokenrepo.Pair{}
	return nil
}

func (s *stubRemote) Tokens(context.Context) tokenrepo.Pair {
	return s.pair
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestRemoteIsAuthenticated(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		pair func(t *testing.T) tokenrepo.Pair
		want bool
	}{
		{"no tokens", func(*testing.T) tokenrepo.Pair { return tokenrepo.Pair{} }, false},
		{"live access", func(t *testing.T) tokenrepo.Pair {
			return tokenrepo.Pair{Access: signed(t, now.Add(time.Hour))}
		}, true},
		{"expired access, live refresh", func(t *testing.T) tokenrepo.Pair {
			return tokenrepo.Pair{Access: signed(t, now.Add(-time.Hour)), Refresh: signed(t, now.Add(24*time.Hour))}
		}, true},
		{"both expired", func(t *testing.T) tokenrepo.Pair {
			return tokenrepo.Pair{Access: signed(t, now.Add(-time.Hour)), Refresh: signed(t, now.Add(-time.Minute))}
		}, false},
		{"opaque token", func(*testing.T) tokenrepo.Pair { return tokenrepo.Pair{Access: "not-a-jwt"} }, true},
	}
	for _, tc := range cases {
		client := &stubRemote{pair: tc.pair(t)}
		s := NewRemote(client, cache.New(time.Minute))
		s.now = func() time.Time { return now }
		if got := s.IsAuthenticated(context.Background()); got != tc.want {
			t.Fatalf("%s: IsAuthenticated = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRemoteLoginResetsCachedProfile(t *testing.T) {
	ctx := context.Background()
	client := &stubRemote{profile: domain.Customer{ID: "7", Email: "a@example.com"}}
	c := cache.New(time.Minute)
	c.Set(cache.KeyProfile, &domain.Customer{ID: "stale"})
	s := NewRemote(client, c)

	got, err := s.Login(ctx, LoginInput{Username: "ana", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != "7" {
		t.Fatalf("expected fresh profile, got %+v", got)
	}
	if _, err := s.Current(ctx); err != nil {
		t.Fatalf("current: %v", err)
	}
	if client.profiles != 1 {
		t.Fatalf("expected profile cached after login, got %d fetches", client.profiles)
	}
}

func TestRemoteLoginRejected(t *testing.T) {
	client := &stubRemote{loginErr: &remote.APIError{StatusCode: 401, Message: "No active account"}}
	s := NewRemote(client, cache.New(time.Minute))
	if _, err := s.Login(context.Background(), LoginInput{Username: "ana", Password: "x"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRemoteLogoutEndsSession(t *testing.T) {
	ctx := context.Background()
	client := &stubRemote{pair: tokenrepo.Pair{Access: "a", Refresh: "r"}}
	s := NewRemote(client, cache.New(time.Minute))
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if s.IsAuthenticated(ctx) {
		t.Fatalf("expected guest after logout")
	}
	if _, err := s.Current(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
