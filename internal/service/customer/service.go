// Package customer implements shopper sessions. Gate is the synchronous
// "is someone signed in" check used by checkout; Session adds the account
// operations.
package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aurabags-storefront/internal/domain"
	custrepo "aurabags-storefront/internal/repository/customer"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Gate reports the current identity.
type Gate interface {
	IsAuthenticated(ctx context.Context) bool
	// Current returns the signed-in customer or domain.ErrUnauthorized.
	Current(ctx context.Context) (*domain.Customer, error)
}

// Session is a Gate with account operations.
type Session interface {
	Gate
	Register(ctx context.Context, in RegisterInput) (*domain.Customer, error)
	Login(ctx context.Context, in LoginInput) (*domain.Customer, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, in ProfileInput) (*domain.Customer, error)
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileInput holds editable profile fields. Nil fields are unchanged.
type ProfileInput struct {
	FirstName *string         `json:"firstName"`
	LastName  *string         `json:"lastName"`
	Phone     *string         `json:"phone"`
	Address   *domain.Address `json:"address"`
}

// Local keeps the customer registry and the current session in the
// key-value store.
type Local struct {
	repo        custrepo.Repository
	now         func() time.Time
	passwordMin int
}

func NewLocal(repo custrepo.Repository) *Local {
	return &Local{
		repo:        repo,
		now:         time.Now,
		passwordMin: 8,
	}
}

func (s *Local) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.repo.CurrentSession(ctx)
	return ok
}

func (s *Local) Current(ctx context.Context) (*domain.Customer, error) {
	session, ok := s.repo.CurrentSession(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.repo.GetByID(ctx, session.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return session, nil
		}
		return nil, err
	}
	public := c.Public()
	return &public, nil
}

// Register creates an account and signs it in.
func (s *Local) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" {
		return nil, fmt.Errorf("email required: %w", domain.ErrInvalidInput)
	}
	password := strings.TrimSpace(in.Password)
	if err := validatePassword(password, s.passwordMin); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username = email
	}

	created, err := s.repo.Create(ctx, domain.Customer{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCurrentSession(ctx, *created); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	public := created.Public()
	return &public, nil
}

// Login validates credentials and starts a session.
func (s *Local) Login(ctx context.Context, in LoginInput) (*domain.Customer, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = strings.TrimSpace(in.Username)
	}
	password := strings.TrimSpace(in.Password)
	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.repo.SetCurrentSession(ctx, *c); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	public := c.Public()
	return &public, nil
}

func (s *Local) Logout(ctx context.Context) error {
	return s.repo.ClearCurrentSession(ctx)
}

func (s *Local) UpdateProfile(ctx context.Context, in ProfileInput) (*domain.Customer, error) {
	session, ok := s.repo.CurrentSession(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.repo.GetByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		c.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		c.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		addr := *in.Address
		c.Address = &addr
	}
	updated, err := s.repo.Update(ctx, *c)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetCurrentSession(ctx, *updated); err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	public := updated.Public()
	return &public, nil
}

func validatePassword(p string, min int) error {
	trimmed := strings.TrimSpace(p)
	if len(trimmed) < min {
		return fmt.Errorf("password must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range trimmed {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("password must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
