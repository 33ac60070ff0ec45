package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/validation"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/storage"
)

const maxImageBytes = 5 << 20

func (s *Server) login(c *gin.Context) {
	var in sellerapi.LoginPayload
	if !bindJSON(c, &in) {
		return
	}
	u, err := s.store.Authenticate(in.UsernameOrEmail, in.Password)
	if err != nil {
		detail(c, http.StatusUnauthorized, capitalize(err.Error()))
		return
	}
	s.issue(c, http.StatusOK, u)
}

func (s *Server) signup(c *gin.Context) {
	var in sellerapi.SignupPayload
	if !bindJSON(c, &in) {
		return
	}
	u, err := s.store.AddSeller(in)
	switch {
	case errors.Is(err, errUserExists), errors.Is(err, errShopExists):
		detail(c, http.StatusBadRequest, capitalize(err.Error()))
		return
	case err != nil:
		_ = c.Error(err)
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.issue(c, http.StatusCreated, u)
}

func (s *Server) issue(c *gin.Context, status int, u *seller) {
	tok, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		_ = c.Error(err)
		detail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(status, sellerapi.TokenResponse{AccessToken: tok, TokenType: "bearer"})
}

func (s *Server) listProducts(c *gin.Context) {
	p := listParams{
		Statuses: c.QueryArray("status_in"),
		Q:        c.Query("q"),
		Limit:    50,
	}
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			detail(c, http.StatusUnprocessableEntity, "limit must be between 1 and 100")
			return
		}
		p.Limit = n
	}
	if raw, ok := c.GetQuery("offset"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			detail(c, http.StatusUnprocessableEntity, "offset must be 0 or greater")
			return
		}
		p.Offset = n
	}
	c.JSON(http.StatusOK, s.store.List(sellerID(c), p))
}

func (s *Server) createProduct(c *gin.Context) {
	var in sellerapi.CreateProductPayload
	if !bindJSON(c, &in) {
		return
	}
	c.JSON(http.StatusCreated, s.store.Create(sellerID(c), in))
}

// patchProduct takes any JSON object and applies only title, price and
// status. Price may be a number or a numeric string.
func (s *Server) patchProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Body must be a JSON object")
		return
	}

	var (
		title  *string
		price  *decimal.Decimal
		status *sellerapi.Status
	)
	if raw, ok := body["title"]; ok {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			detail(c, http.StatusUnprocessableEntity, "title must be a string")
			return
		}
		title = &v
	}
	if raw, ok := body["price"]; ok {
		var v decimal.Decimal
		if err := v.UnmarshalJSON(raw); err != nil {
			detail(c, http.StatusUnprocessableEntity, "price must be a number")
			return
		}
		price = &v
	}
	if raw, ok := body["status"]; ok {
		var v sellerapi.Status
		if err := json.Unmarshal(raw, &v); err != nil {
			detail(c, http.StatusUnprocessableEntity, "status must be a string")
			return
		}
		status = &v
	}

	out, err := s.store.Patch(sellerID(c), id, title, price, status)
	if err != nil {
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) replaceProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var in sellerapi.ReplaceProductPayload
	if !bindJSON(c, &in) {
		return
	}
	out, err := s.store.Replace(sellerID(c), id, in)
	if err != nil {
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) updateStock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var in struct {
		StockQuantity int `json:"stock_quantity" validate:"gte=0"`
	}
	if !bindJSON(c, &in) {
		return
	}
	if err := s.store.SetStock(sellerID(c), id, in.StockQuantity); err != nil {
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	c.JSON(http.StatusOK, sellerapi.StockUpdate{OK: true, StockQuantity: in.StockQuantity})
}

func (s *Server) listImages(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	out, err := s.store.Images(sellerID(c), id)
	if err != nil {
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) uploadImage(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if !s.store.Owns(sellerID(c), id) {
		detail(c, http.StatusNotFound, capitalize(errNotFound.Error()))
		return
	}
	if s.files == nil {
		detail(c, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "file is required")
		return
	}
	if fh.Size > maxImageBytes {
		detail(c, http.StatusRequestEntityTooLarge, "File too large")
		return
	}
	f, err := fh.Open()
	if err != nil {
		detail(c, http.StatusBadRequest, "Could not read upload")
		return
	}
	defer f.Close()

	res, err := s.files.Put(c.Request.Context(), f, storage.PutInput{
		Folder:      fmt.Sprintf("products/%d", id),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	})
	if err != nil {
		s.log.Error("image_store_failed", slog.Int64("product_id", id), slog.Any("err", err))
		detail(c, http.StatusBadGateway, "Image storage failed")
		return
	}

	img, err := s.store.AddImage(sellerID(c), id, absoluteURL(c, res.URL), res.Key)
	if err != nil {
		_ = s.files.Delete(c.Request.Context(), res.Key)
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, img)
}

func (s *Server) deleteImage(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	imageID, err := strconv.ParseInt(c.Param("imageID"), 10, 64)
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid image id")
		return
	}
	key, err := s.store.RemoveImage(sellerID(c), id, imageID)
	if err != nil {
		detail(c, http.StatusNotFound, capitalize(err.Error()))
		return
	}
	if key != "" && s.files != nil {
		if err := s.files.Delete(c.Request.Context(), key); err != nil {
			s.log.Warn("image_delete_failed", slog.String("key", key), slog.Any("err", err))
		}
	}
	c.Status(http.StatusNoContent)
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		detail(c, http.StatusUnprocessableEntity, "Invalid product id")
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body, answering 422 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		detail(c, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	if fe := validation.Struct(dst); fe != nil {
		detail(c, http.StatusUnprocessableEntity, map[string]string(fe))
		return false
	}
	return true
}


// absoluteURL roots a path-only storage URL at the host the client reached,
// so clients on other origins can fetch it.
func absoluteURL(c *gin.Context, u string) string {
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") {
		return u
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p == "http" || p == "https" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host + u
}
