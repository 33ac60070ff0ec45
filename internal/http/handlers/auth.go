package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/catalog"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/render"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/validation"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

const afterLogin = "/seller/products"

// AuthAPI is the unauthenticated part of the seller API.
type AuthAPI interface {
	Login(ctx context.Context, in sellerapi.LoginPayload) (sellerapi.TokenResponse, error)
	Signup(ctx context.Context, in sellerapi.SignupPayload) (sellerapi.TokenResponse, error)
}

// AuthHandlers exchange credentials for a backend token and keep it in a
// server-side session.
type AuthHandlers struct {
	api        AuthAPI
	flash      *flash.Codec
	sessCfg    middleware.SessionCfg
	ttl        time.Duration
	workspaces *catalog.Registry
	log        *slog.Logger
}

func NewAuthHandlers(api AuthAPI, flashCodec *flash.Codec, sessCfg middleware.SessionCfg, ttl time.Duration, workspaces *catalog.Registry, l *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		api:        api,
		flash:      flashCodec,
		sessCfg:    sessCfg,
		ttl:        ttl,
		workspaces: workspaces,
		log:        l,
	}
}

func (h *AuthHandlers) LoginGet(c *gin.Context) {
	if _, ok := middleware.CurrentSession(c); ok {
		c.Redirect(http.StatusFound, afterLogin)
		return
	}
	render.Page(c, http.StatusOK, "login", view.AuthPage{
		Flash:    middleware.GetFlash(c),
		ReturnTo: normalizeReturnTo(c.Query("return_to")),
	})
}

func (h *AuthHandlers) LoginPost(c *gin.Context) {
	in := sellerapi.LoginPayload{
		UsernameOrEmail: strings.TrimSpace(c.PostForm("username_or_email")),
		Password:        c.PostForm("password"),
	}
	page := view.AuthPage{
		Flash:    middleware.GetFlash(c),
		ReturnTo: normalizeReturnTo(c.PostForm("return_to")),
		Login:    view.LoginForm{UsernameOrEmail: in.UsernameOrEmail},
	}

	if fe := validation.Struct(in); fe != nil {
		page.Errors = fe
		render.Page(c, http.StatusBadRequest, "login", page)
		return
	}

	tok, err := h.api.Login(c.Request.Context(), in)
	if err != nil {
		status, msg := authFailure(err, "Email/username or password is incorrect.")
		h.log.Warn("login_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Int("status", status), slog.Any("err", err))
		page.Message = msg
		render.Page(c, status, "login", page)
		return
	}

	h.startSession(c, tok.AccessToken, in.UsernameOrEmail, page.ReturnTo)
}

func (h *AuthHandlers) SignupGet(c *gin.Context) {
	render.Page(c, http.StatusOK, "signup", view.AuthPage{
		Flash:    middleware.GetFlash(c),
		ReturnTo: normalizeReturnTo(c.Query("return_to")),
	})
}

func (h *AuthHandlers) SignupPost(c *gin.Context) {
	in := sellerapi.SignupPayload{
		Username:        strings.TrimSpace(c.PostForm("username")),
		Email:           strings.TrimSpace(c.PostForm("email")),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
		ShopName:        strings.TrimSpace(c.PostForm("shop_name")),
		Location:        strings.TrimSpace(c.PostForm("location")),
		PhoneNumber:     strings.TrimSpace(c.PostForm("phone_number")),
		Bio:             c.PostForm("bio"),
	}
	page := view.AuthPage{
		Flash:    middleware.GetFlash(c),
		ReturnTo: normalizeReturnTo(c.PostForm("return_to")),
		Signup: view.SignupForm{
			Username:    in.Username,
			Email:       in.Email,
			ShopName:    in.ShopName,
			Location:    in.Location,
			PhoneNumber: in.PhoneNumber,
			Bio:         in.Bio,
		},
	}

	if fe := validation.Struct(in); fe != nil {
		page.Errors = fe
		render.Page(c, http.StatusBadRequest, "signup", page)
		return
	}

	tok, err := h.api.Signup(c.Request.Context(), in)
	if err != nil {
		status, msg := authFailure(err, "")
		h.log.Warn("signup_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Int("status", status), slog.Any("err", err))
		page.Message = msg
		render.Page(c, status, "signup", page)
		return
	}

	h.startSession(c, tok.AccessToken, in.Username, page.ReturnTo)
}

func (h *AuthHandlers) LogoutPost(c *gin.Context) {
	if s, ok := middleware.CurrentSession(c); ok {
		if err := h.sessCfg.Store.Delete(c.Request.Context(), s.ID); err != nil {
			h.log.Error("session_delete_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Any("err", err))
		}
		h.workspaces.Drop(s.ID)
	}
	middleware.ClearSessionCookie(c, h.sessCfg)
	render.RedirectWithFlash(c, h.flash, "/auth/login", view.FlashInfo, "You have been logged out.")
}

func (h *AuthHandlers) startSession(c *gin.Context, token, fallbackName, returnTo string) {
	name := session.TokenUsername(token)
	if name == "" {
		name = fallbackName
	}
	s := session.New(token, name, time.Now(), h.ttl)
	if err := h.sessCfg.Store.Create(c.Request.Context(), s); err != nil {
		middleware.Fail(c, err)
		return
	}
	middleware.SetSessionCookie(c, h.sessCfg, s)

	dest := afterLogin
	if returnTo != "" {
		dest = returnTo
	}
	render.RedirectWithFlash(c, h.flash, dest, view.FlashSuccess, "Welcome, "+name+".")
}

// authFailure maps a failed login or signup call to the status and message
// of the re-rendered form.
func authFailure(err error, unauthorized string) (int, string) {
	status, ok := sellerapi.StatusOf(err)
	switch {
	case !ok:
		return http.StatusBadGateway, "The catalog service is not reachable. Try again shortly."
	case status == http.StatusUnauthorized && unauthorized != "":
		return http.StatusUnauthorized, unauthorized
	case status >= 400 && status < 500:
		return http.StatusBadRequest, apiMessage(err)
	default:
		return http.StatusBadGateway, "The catalog service failed: " + apiMessage(err)
	}
}
