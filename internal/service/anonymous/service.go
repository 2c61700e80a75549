// Package anonymous gives every browser its own shopper session: an opaque
// token maps to a session id that namespaces the cart, the signed-in
// customer and the API tokens.
package anonymous

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aurabags-storefront/internal/repository/kv"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// Service issues and resolves session tokens. Tokens are kept in memory and,
// when a store is configured, persisted by hash so sessions survive restarts.
type Service struct {
	tokens *tokenManager
	store  *kv.JSON
	ttl    time.Duration
	now    func() time.Time
}

// New builds a Service. store may be nil.
func New(store *kv.JSON, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Service{
		tokens: newTokenManager(),
		store:  store,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue starts a new session.
func (s *Service) Issue(ctx context.Context) (token, sessionID string, err error) {
	token, err = randomToken()
	if err != nil {
		return "", "", err
	}
	meta := tokenMeta{SessionID: uuid.NewString(), ExpiresAt: s.now().Add(s.ttl).UTC()}
	if s.store != nil {
		if err := s.store.Save(ctx, recordKey(token), meta); err != nil {
			return "", "", fmt.Errorf("persist session: %w", err)
		}
	}
	s.tokens.Put(token, meta)
	return token, meta.SessionID, nil
}

// LookupByToken returns the session id for token, or ErrInvalidToken when it
// is unknown or expired.
func (s *Service) LookupByToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	now := s.now()
	if meta, ok := s.tokens.Validate(token, now); ok {
		return meta.SessionID, nil
	}
	if s.store == nil {
		return "", ErrInvalidToken
	}
	var meta tokenMeta
	found, err := s.store.LoadStrict(ctx, recordKey(token), &meta)
	if err != nil {
		return "", err
	}
	if !found || meta.SessionID == "" || now.After(meta.ExpiresAt) {
		return "", ErrInvalidToken
	}
	s.tokens.Put(token, meta)
	return meta.SessionID, nil
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Namespace is the key prefix under which a session's values live.
func Namespace(sessionID string) string {
	return kv.KeySessionPrefix + sessionID + "/"
}

func recordKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return kv.KeySessionPrefix + "tokens/" + hex.EncodeToString(sum[:])
}
