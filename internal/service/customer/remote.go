package customer

import (
	"context"
	"errors"
	"strings"
	"time"

	"aurabags-storefront/internal/cache"
	"aurabags-storefront/internal/domain"
	"aurabags-storefront/internal/remote"
	tokenrepo "aurabags-storefront/internal/repository/token"
	"github.com/golang-jwt/jwt/v5"
)

type remoteClient interface {
	Login(ctx context.Context, username, password string) (tokenrepo.Pair, error)
	Register(ctx context.Context, in remote.RegisterInput) (*domain.Customer, error)
	Profile(ctx context.Context) (*domain.Customer, error)
	UpdateProfile(ctx context.Context, in remote.ProfileUpdate) (*domain.Customer, error)
	Logout(ctx context.Context) error
	Tokens(ctx context.Context) tokenrepo.Pair
}

// Remote is a session backed by the API's token pair.
type Remote struct {
	client remoteClient
	cache  *cache.Cache
	now    func() time.Time
}

func NewRemote(client remoteClient, c *cache.Cache) *Remote {
	return &Remote{client: client, cache: c, now: time.Now}
}

// IsAuthenticated checks the stored tokens without a network call. A session
// is live while either token is present and not past its expiry.
func (s *Remote) IsAuthenticated(ctx context.Context) bool {
	pair := s.client.Tokens(ctx)
	return s.tokenLive(pair.Access) || s.tokenLive(pair.Refresh)
}

// tokenLive treats tokens without a readable exp claim as live; the server
// has the final say on the next request.
func (s *Remote) tokenLive(token string) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return s.now().Before(exp.Time)
}

func (s *Remote) Current(ctx context.Context) (*domain.Customer, error) {
	if !s.IsAuthenticated(ctx) {
		return nil, domain.ErrUnauthorized
	}
	c, err := cache.Fetch(ctx, s.cache, cache.KeyProfile, s.client.Profile)
	if err != nil {
		return nil, err
	}
	clone := *c
	return &clone, nil
}

// Register creates the account and signs in with the same credentials.
func (s *Remote) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = strings.TrimSpace(in.Email)
	}
	if _, err := s.client.Register(ctx, remote.RegisterInput{
		Username: username,
		Email:    strings.TrimSpace(strings.ToLower(in.Email)),
		Password: in.Password,
	}); err != nil {
		return nil, err
	}
	return s.Login(ctx, LoginInput{Username: username, Password: in.Password})
}

func (s *Remote) Login(ctx context.Context, in LoginInput) (*domain.Customer, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = strings.TrimSpace(in.Email)
	}
	if _, err := s.client.Login(ctx, username, in.Password); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	s.cache.Invalidate(cache.SessionChange...)
	return s.Current(ctx)
}

func (s *Remote) Logout(ctx context.Context) error {
	s.cache.Invalidate(cache.SessionChange...)
	return s.client.Logout(ctx)
}

func (s *Remote) UpdateProfile(ctx context.Context, in ProfileInput) (*domain.Customer, error) {
	if !s.IsAuthenticated(ctx) {
		return nil, domain.ErrUnauthorized
	}
	return cache.Mutate(ctx, s.cache, cache.Invalidates{cache.KeyProfile}, func(ctx context.Context) (*domain.Customer, error) {
		return s.client.UpdateProfile(ctx, remote.ProfileUpdate{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Phone:     in.Phone,
			Address:   in.Address,
		})
	})
}
