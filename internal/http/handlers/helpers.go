package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

// normalizeReturnTo accepts only local paths, so a crafted link cannot
// send the seller to another site after login.
func normalizeReturnTo(s string) string {
	if s == "" || s[0] != '/' {
		return ""
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/\\") {
		return ""
	}
	if strings.Contains(s, "://") {
		return ""
	}
	return s
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// apiMessage is the text shown to the seller for a failed backend call.
func apiMessage(err error) string {
	var ae *sellerapi.Error
	if errors.As(err, &ae) {
		if d := ae.Detail(); d != "" {
			return d
		}
		return ae.Error()
	}
	return "the catalog service is not reachable"
}
