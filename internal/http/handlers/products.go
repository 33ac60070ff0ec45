package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/activity"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/catalog"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/flash"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/middleware"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/http/render"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/session"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/apperr"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

const productsPath = "/seller/products"

// APIFactory returns a catalog API acting as the given seller.
type APIFactory func(s *session.Session) catalog.API

// ProductsHandler serves the seller's product panel. Every POST ends in a
// redirect back to the list, except validation failures, which re-render
// the page with the submitted values.
type ProductsHandler struct {
	workspaces *catalog.Registry
	newAPI     APIFactory
	events     activity.Sink
	flash      *flash.Codec
	log        *slog.Logger
}

func NewProductsHandler(workspaces *catalog.Registry, newAPI APIFactory, events activity.Sink, flashCodec *flash.Codec, l *slog.Logger) *ProductsHandler {
	return &ProductsHandler{
		workspaces: workspaces,
		newAPI:     newAPI,
		events:     events,
		flash:      flashCodec,
		log:        l,
	}
}

func (h *ProductsHandler) workspace(c *gin.Context) *catalog.Workspace {
	s, _ := middleware.CurrentSession(c)
	return h.workspaces.Get(s.ID, s.ExpiresAt, func() *catalog.Workspace {
		return catalog.NewWorkspace(s.Username, h.newAPI(s), catalog.WithEvents(h.events))
	})
}

// applyQuery copies list parameters from the URL into the filter. Absent
// parameters leave the filter as it is.
func applyQuery(ws *catalog.Workspace, c *gin.Context) {
	vals := c.Request.URL.Query()
	q := sellerapi.QueryFromValues(vals)
	if vals.Has("q") {
		ws.SetQuery(q.Q)
	}
	if q.Limit != nil && validPageSize(*q.Limit) {
		ws.SetLimit(*q.Limit)
	}
	if vals.Has("status_in") {
		ws.SetStatuses(q.Statuses)
	}
}

func validPageSize(n int) bool {
	for _, s := range catalog.PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

func (h *ProductsHandler) load(c *gin.Context, ws *catalog.Workspace) {
	applyQuery(ws, c)
	if c.Query("refresh") != "" {
		ws.Refresh(c.Request.Context())
		return
	}
	ws.EnsureLoaded(c.Request.Context())
}

// List renders the panel. The list is fetched only when the filter changed
// since the last fetch, so local placeholders and failed edits stay visible
// across redirects.
func (h *ProductsHandler) List(c *gin.Context) {
	ws := h.workspace(c)
	h.load(c, ws)
	render.Page(c, http.StatusOK, "products", buildPage(ws.View(), ws.Seller(), middleware.GetFlash(c), pageOverrides{}))
}

type listJSON struct {
	State   catalog.State `json:"state"`
	Error   string        `json:"error,omitempty"`
	Items   []recordJSON  `json:"items"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
	Filter  filterJSON    `json:"filter"`
}

type recordJSON struct {
	sellerapi.Product
	Sync      catalog.SyncState `json:"sync"`
	SyncError string            `json:"sync_error,omitempty"`
}

type filterJSON struct {
	Q        string             `json:"q"`
	Statuses []sellerapi.Status `json:"status_in"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// ListJSON is List for scripts: same filter handling, JSON out.
func (h *ProductsHandler) ListJSON(c *gin.Context) {
	ws := h.workspace(c)
	h.load(c, ws)
	v := ws.View()

	items := make([]recordJSON, 0, len(v.Items))
	for _, r := range v.Items {
		items = append(items, recordJSON{Product: r.Product, Sync: r.Sync, SyncError: r.SyncError})
	}
	statuses := v.Filter.Statuses()
	if statuses == nil {
		statuses = []sellerapi.Status{}
	}
	c.JSON(http.StatusOK, listJSON{
		State:   v.State,
		Error:   v.Err,
		Items:   items,
		HasNext: v.HasNext,
		HasPrev: v.HasPrev,
		Filter: filterJSON{
			Q:        v.Filter.Q(),
			Statuses: statuses,
			Limit:    v.Filter.Limit(),
			Offset:   v.Filter.Offset(),
		},
	})
}

func (h *ProductsHandler) ToggleStatus(c *gin.Context) {
	s := sellerapi.Status(c.Param("status"))
	if s == "" {
		middleware.Fail(c, apperr.InvalidErr("Unknown status.", nil))
		return
	}
	h.workspace(c).ToggleStatus(s)
	c.Redirect(http.StatusSeeOther, productsPath)
}

func (h *ProductsHandler) Page(c *gin.Context) {
	ws := h.workspace(c)
	switch c.Param("dir") {
	case "next":
		if !ws.View().HasNext {
			break
		}
		ws.NextPage()
	case "prev":
		ws.PrevPage()
	default:
		middleware.Fail(c, apperr.NotFoundErr("Page not found."))
		return
	}
	c.Redirect(http.StatusSeeOther, productsPath)
}

func (h *ProductsHandler) Create(c *gin.Context) {
	var f catalog.CreateForm
	if err := c.ShouldBind(&f); err != nil {
		middleware.Fail(c, apperr.InvalidErr("The form data is invalid.", nil))
		return
	}
	ws := h.workspace(c)
	rec, err := ws.Create(c.Request.Context(), f)

	var unsynced *catalog.UnsyncedError
	switch {
	case err == nil:
		render.RedirectWithFlash(c, h.flash, anchor(rec.ID), view.FlashSuccess, fmt.Sprintf("Created “%s”.", rec.Title))
	case errors.As(err, &unsynced):
		render.RedirectWithFlash(c, h.flash, anchor(rec.ID), view.FlashWarning,
			fmt.Sprintf("The catalog service did not accept “%s” (%s). It is kept in this session only and is not saved.", rec.Title, apiMessage(unsynced.Err)))
	case errors.Is(err, catalog.ErrBusy):
		render.RedirectWithFlash(c, h.flash, productsPath, view.FlashWarning, "A product is already being created.")
	default:
		if ae, ok := apperr.As(err); ok && ae.Kind == apperr.Invalid {
			form := createFormView(f)
			form.Errors = ae.Fields
			h.rerender(c, ws, pageOverrides{create: &form})
			return
		}
		middleware.Fail(c, err)
	}
}

func (h *ProductsHandler) StartEdit(c *gin.Context) {
	h.openSurface(c, (*catalog.Workspace).StartEdit)
}

func (h *ProductsHandler) CancelEdit(c *gin.Context) {
	id, _ := paramID(c)
	h.workspace(c).CancelEdit()
	c.Redirect(http.StatusSeeOther, anchor(id))
}

func (h *ProductsHandler) OpenReplace(c *gin.Context) {
	h.openSurface(c, (*catalog.Workspace).StartReplace)
}

func (h *ProductsHandler) CloseReplace(c *gin.Context) {
	id, _ := paramID(c)
	h.workspace(c).CloseReplace()
	c.Redirect(http.StatusSeeOther, anchor(id))
}

func (h *ProductsHandler) openSurface(c *gin.Context, open func(*catalog.Workspace, int64) (catalog.Record, error)) {
	id, ok := paramID(c)
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}
	if _, err := open(h.workspace(c), id); err != nil {
		render.RedirectWithFlash(c, h.flash, productsPath, view.FlashError, "That product is no longer in the list.")
		return
	}
	c.Redirect(http.StatusSeeOther, anchor(id))
}

func (h *ProductsHandler) Patch(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}
	var d catalog.PatchDraft
	if err := c.ShouldBind(&d); err != nil {
		middleware.Fail(c, apperr.InvalidErr("The form data is invalid.", nil))
		return
	}
	ws := h.workspace(c)
	rec, err := ws.SavePatch(c.Request.Context(), id, d)
	if ae, ok := apperr.As(err); ok && ae.Kind == apperr.Invalid {
		h.rerender(c, ws, pageOverrides{patch: &rowPatch{id: id, form: view.PatchForm{
			Title:  d.Title,
			Price:  d.Price,
			Status: d.Status,
			Errors: ae.Fields,
		}}})
		return
	}
	h.finishSave(c, id, rec, err)
}

func (h *ProductsHandler) Replace(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}
	var f catalog.ReplaceForm
	if err := c.ShouldBind(&f); err != nil {
		middleware.Fail(c, apperr.InvalidErr("The form data is invalid.", nil))
		return
	}
	ws := h.workspace(c)
	rec, err := ws.Replace(c.Request.Context(), id, f)
	if ae, ok := apperr.As(err); ok && ae.Kind == apperr.Invalid {
		form := replaceFormView(f)
		form.Errors = ae.Fields
		h.rerender(c, ws, pageOverrides{replace: &rowReplace{id: id, form: form}})
		return
	}
	h.finishSave(c, id, rec, err)
}

// finishSave turns the outcome of a PATCH or PUT into a flash message.
func (h *ProductsHandler) finishSave(c *gin.Context, id int64, rec catalog.Record, err error) {
	var unsynced *catalog.UnsyncedError
	switch {
	case err == nil && rec.Sync == catalog.Local:
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashInfo,
			fmt.Sprintf("Updated “%s” in this session. It is still not saved to the catalog.", rec.Title))
	case err == nil:
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashSuccess, fmt.Sprintf("Saved “%s”.", rec.Title))
	case errors.As(err, &unsynced):
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashWarning,
			fmt.Sprintf("“%s” was not saved (%s). The change is shown here until the list reloads.", rec.Title, apiMessage(unsynced.Err)))
	case errors.Is(err, catalog.ErrBusy):
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashWarning, "The previous change to this product is still being saved.")
	case errors.Is(err, catalog.ErrNotEditing):
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashWarning, "That product is not being edited any more.")
	case errors.Is(err, catalog.ErrNotFound):
		render.RedirectWithFlash(c, h.flash, productsPath, view.FlashError, "That product is no longer in the list.")
	default:
		middleware.Fail(c, err)
	}
}

func (h *ProductsHandler) UploadImage(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		middleware.Fail(c, apperr.NotFoundErr("Product not found."))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashError, "Choose an image to upload.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	defer f.Close()

	rec, err := h.workspace(c).UploadImage(c.Request.Context(), id, fh.Filename, f)
	switch {
	case err == nil:
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashSuccess, fmt.Sprintf("Image added to “%s”.", rec.Title))
	case errors.Is(err, catalog.ErrLocalOnly):
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashWarning, "This product is not saved yet, so it cannot take images.")
	case errors.Is(err, catalog.ErrBusy):
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashWarning, "This product is busy. Try again in a moment.")
	case errors.Is(err, catalog.ErrNotFound):
		render.RedirectWithFlash(c, h.flash, productsPath, view.FlashError, "That product is no longer in the list.")
	default:
		h.log.Warn("image_upload_failed", slog.String("request_id", middleware.GetRequestID(c)), slog.Int64("product_id", id), slog.Any("err", err))
		render.RedirectWithFlash(c, h.flash, anchor(id), view.FlashError, "Upload failed: "+apiMessage(err))
	}
}

func (h *ProductsHandler) rerender(c *gin.Context, ws *catalog.Workspace, o pageOverrides) {
	render.Page(c, http.StatusUnprocessableEntity, "products", buildPage(ws.View(), ws.Seller(), middleware.GetFlash(c), o))
}

func anchor(id int64) string {
	if id == 0 {
		return productsPath
	}
	return fmt.Sprintf("%s#product-%d", productsPath, id)
}
