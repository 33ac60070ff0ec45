package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

// RequireSeller lets logged-in sellers through. Others get a 401 JSON
// response, or a redirect to the login page that comes back afterwards.
func RequireSeller(flashCodec *flash.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); ok {
			c.Next()
			return
		}

		if WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "authentication required",
				"request_id": GetRequestID(c),
			})
			return
		}

		returnTo := "/seller/products"
		if c.Request.Method == http.MethodGet {
			returnTo = c.Request.URL.RequestURI()
		}
		SetFlashCookie(c, flashCodec, view.Flash{
			Kind:    view.FlashWarning,
			Message: "Please log in to continue.",
		})
		c.Redirect(http.StatusFound, "/auth/login?return_to="+url.QueryEscape(returnTo))
		c.Abort()
	}
}
