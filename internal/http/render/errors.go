package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

type errorPage struct {
	Flash      *view.Flash
	Status     int
	StatusText string
	Message    string
	RequestID  string
}

// ErrorPage satisfies middleware.ErrorPage.
func ErrorPage(c *gin.Context, status int, msg string, requestID string) {
	Page(c, status, "error", errorPage{
		Flash:      middleware.GetFlash(c),
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    msg,
		RequestID:  requestID,
	})
}
