// Package mockapi is an in-memory stand-in for the seller backend, used in
// development and by integration tests of the panel.
package mockapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/storage"
)

const ctxSellerID = "seller_id"

type Server struct {
	store  *Store
	tokens *Tokens
	files  storage.Storage
	log    *slog.Logger
}

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// BcryptCost 0 means bcrypt.DefaultCost.
	BcryptCost int
	Storage    storage.Storage
	Logger     *slog.Logger
}

// New builds a seeded server.
func New(o Options) (*Server, error) {
	if o.TokenTTL == 0 {
		o.TokenTTL = 2 * time.Hour
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	st := NewStore(o.BcryptCost)
	if err := st.Seed(); err != nil {
		return nil, err
	}
	return &Server{
		store:  st,
		tokens: NewTokens(o.JWTSecret, o.TokenTTL),
		files:  o.Storage,
		log:    o.Logger,
	}, nil
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.log.Error("mockapi_panic", slog.Any("panic", recovered))
		detail(c, http.StatusInternalServerError, "Internal server error")
	}))

	if l, ok := s.files.(*storage.Local); ok {
		r.Static(l.URLPrefix, l.BaseDir)
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/login", s.login)
	auth.POST("/signup", s.signup)

	seller := r.Group("/seller", s.requireSeller)
	seller.GET("/products", s.listProducts)
	seller.POST("/products", s.createProduct)
	seller.PATCH("/products/:id", s.patchProduct)
	seller.PUT("/products/:id", s.replaceProduct)
	seller.PATCH("/products/:id/stock", s.updateStock)
	seller.GET("/products/:id/images", s.listImages)
	seller.POST("/products/:id/images", s.uploadImage)
	seller.DELETE("/products/:id/images/:imageID", s.deleteImage)

	return r
}

func (s *Server) requireSeller(c *gin.Context) {
	h := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		detail(c, http.StatusUnauthorized, "Missing Bearer token")
		return
	}
	id, err := s.tokens.SellerID(strings.TrimSpace(raw))
	if err != nil {
		detail(c, http.StatusUnauthorized, capitalize(err.Error()))
		return
	}
	c.Set(ctxSellerID, id)
	c.Next()
}

func sellerID(c *gin.Context) int64 {
	return c.GetInt64(ctxSellerID)
}

// detail writes the backend's error shape: {"detail": ...}.
func detail(c *gin.Context, status int, v any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": v})
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
