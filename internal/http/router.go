package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/activity"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/catalog"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/handlers"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/render"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
)

const (
	flashCookie   = "panel_flash"
	sessionCookie = "panel_session"
)

// Deps are the collaborators the panel router needs.
type Deps struct {
	Logger       *slog.Logger
	API          *sellerapi.Client
	Sessions     session.Store
	Events       activity.Sink
	Secret       []byte
	SecureCookie bool
	SessionTTL   time.Duration
	// Workspaces is shared with the caller so it can sweep expired
	// entries. Nil means the router makes its own.
	Workspaces *catalog.Registry
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()

	workspaces := d.Workspaces
	if workspaces == nil {
		workspaces = catalog.NewRegistry()
	}

	flashCodec := flash.NewCodec(d.Secret, flashCookie, d.SecureCookie)
	sessCfg := middleware.SessionCfg{
		Store:      d.Sessions,
		Codec:      flashCodec,
		CookieName: sessionCookie,
		Secure:     d.SecureCookie,
		Logger:     d.Logger,
		OnExpired:  workspaces.Drop,
	}
	events := d.Events
	if events == nil {
		events = activity.Nop{}
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.ErrorHandler(d.Logger, render.ErrorPage))
	r.Use(middleware.FlashMiddleware(flashCodec))
	r.Use(middleware.SessionMiddleware(sessCfg))

	r.GET("/healthz", handlers.Healthz)
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/seller/products")
	})

	auth := handlers.NewAuthHandlers(d.API, flashCodec, sessCfg, d.SessionTTL, workspaces, d.Logger)
	r.GET("/auth/login", auth.LoginGet)
	r.POST("/auth/login", auth.LoginPost)
	r.GET("/auth/signup", auth.SignupGet)
	r.POST("/auth/signup", auth.SignupPost)
	r.POST("/auth/logout", auth.LogoutPost)

	newAPI := func(s *session.Session) catalog.API { return d.API.WithSession(s) }
	products := handlers.NewProductsHandler(workspaces, newAPI, events, flashCodec, d.Logger)

	seller := r.Group("/seller", middleware.RequireSeller(flashCodec))
	{
		seller.GET("/products", products.List)
		seller.POST("/products", products.Create)
		seller.POST("/products/status/:status", products.ToggleStatus)
		seller.POST("/products/page/:dir", products.Page)
		seller.POST("/products/:id/edit", products.StartEdit)
		seller.POST("/products/:id/edit/cancel", products.CancelEdit)
		seller.POST("/products/:id/patch", products.Patch)
		seller.POST("/products/:id/replace/open", products.OpenReplace)
		seller.POST("/products/:id/replace/close", products.CloseReplace)
		seller.POST("/products/:id/replace", products.Replace)
		seller.POST("/products/:id/images", products.UploadImage)
	}

	api := r.Group("/api/seller", middleware.RequireSeller(flashCodec))
	api.GET("/products", products.ListJSON)

	return r
}
