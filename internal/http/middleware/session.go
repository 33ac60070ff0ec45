package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
)

const CtxKeySession = "session"

// SessionCfg holds configuration for the session cookie. The cookie value
// is the session id signed with Codec.
type SessionCfg struct {
	Store      session.Store
	Codec      *flash.Codec
	CookieName string
	Secure     bool
	Logger     *slog.Logger
	// OnExpired is called with the id of a validly signed cookie whose
	// session no longer exists, so per-session state can be released.
	OnExpired func(id string)
}

// SessionMiddleware loads the session named by the cookie. Unknown, expired
// or tampered cookies are cleared and the request continues anonymous.
func SessionMiddleware(cfg SessionCfg) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cfg.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		id, ok := cfg.Codec.Verify(raw)
		if !ok {
			ClearSessionCookie(c, cfg)
			c.Next()
			return
		}

		sess, err := cfg.Store.Get(c.Request.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, session.ErrNotFound):
				if cfg.OnExpired != nil {
					cfg.OnExpired(id)
				}
			case cfg.Logger != nil:
				cfg.Logger.Error("session_load_failed", slog.String("request_id", GetRequestID(c)), slog.Any("err", err))
			}
			ClearSessionCookie(c, cfg)
			c.Next()
			return
		}

		c.Set(CtxKeySession, sess)
		c.Next()
	}
}

// SetSessionCookie writes the signed id with a lifetime matching the session.
func SetSessionCookie(c *gin.Context, cfg SessionCfg, s *session.Session) {
	maxAge := int(time.Until(s.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.CookieName, cfg.Codec.Sign(s.ID), maxAge, "/", "", cfg.Secure, true)
}

func ClearSessionCookie(c *gin.Context, cfg SessionCfg) {
	clearCookie(c, cfg.CookieName, cfg.Secure)
}

// CurrentSession returns the logged-in seller's session, if any.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(CtxKeySession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}
