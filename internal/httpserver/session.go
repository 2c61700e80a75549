package httpserver

import (
	"errors"
	"net/http"

	"aurabags-storefront/internal/service/anonymous"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookie = "aurabags_session"
	sessionHeader = "X-Session-Token"
	scopeKey      = "scope"
)

// session resolves the caller's shopper session from the header or cookie,
// starting a new one when the token is missing, unknown or expired.
func (h *handlers) session(c *gin.Context) {
	ctx := c.Request.Context()
	token := c.GetHeader(sessionHeader)
	if token == "" {
		token, _ = c.Cookie(sessionCookie)
	}

	sessionID, err := h.deps.Sessions.LookupByToken(ctx, token)
	if errors.Is(err, anonymous.ErrInvalidToken) {
		token, sessionID, err = h.deps.Sessions.Issue(ctx)
		if err == nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, token, int(h.deps.Sessions.TTL().Seconds()), "/", "", h.deps.SecureCookies, true)
		}
	}
	if err != nil {
		writeError(c, h.logger, err)
		c.Abort()
		return
	}
	c.Header(sessionHeader, token)

	scope, err := h.deps.Scopes.Get(ctx, sessionID)
	if err != nil {
		writeError(c, h.logger, err)
		c.Abort()
		return
	}
	c.Set(scopeKey, scope)
	c.Next()
}

func scopeOf(c *gin.Context) Scope {
	return c.MustGet(scopeKey).(Scope)
}
