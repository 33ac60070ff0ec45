package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
)

func TestSessionMiddleware_ReportsExpiredSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec := flash.NewCodec([]byte("secret"), "flash", false)

	var expired []string
	cfg := SessionCfg{
		Store:      session.NewMemoryStore(),
		Codec:      codec,
		CookieName: "sid",
		OnExpired:  func(id string) { expired = append(expired, id) },
	}

	r := gin.New()
	r.Use(SessionMiddleware(cfg))
	r.GET("/", func(c *gin.Context) {
		_, ok := CurrentSession(c)
		assert.False(t, ok)
		c.Status(http.StatusNoContent)
	})

	send := func(cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: cookie})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(codec.Sign("sess-1"))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"sess-1"}, expired)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=;")

	// A forged cookie is cleared but never names a session to release.
	send("sess-2.bogus")
	assert.Equal(t, []string{"sess-1"}, expired)
}
