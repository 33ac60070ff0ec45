package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

// RedirectWithFlash is the tail of every POST handler: set the message,
// then 303 so the browser follows with a GET.
func RedirectWithFlash(c *gin.Context, codec *flash.Codec, location string, kind view.FlashKind, msg string) {
	middleware.SetFlashCookie(c, codec, view.Flash{Kind: kind, Message: msg})
	c.Redirect(http.StatusSeeOther, location)
}
