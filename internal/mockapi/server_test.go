package mockapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/storage"
)

type tokenSession string

func (t tokenSession) AccessToken() string { return string(t) }

func newTestServer(t *testing.T) (*httptest.Server, *sellerapi.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv, err := New(Options{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
		Storage:    storage.NewLocal(t.TempDir(), "/uploads"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, sellerapi.New(ts.URL, ts.Client())
}

func loggedIn(t *testing.T, c *sellerapi.Client) *sellerapi.Client {
	t.Helper()
	tok, err := c.Login(context.Background(), sellerapi.LoginPayload{UsernameOrEmail: DemoUsername, Password: DemoPassword})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	return c.WithSession(tokenSession(tok.AccessToken))
}

// ============================================
// Auth
// ============================================

func TestLogin_ByEmailAndBadPassword(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()

	_, err := c.Login(ctx, sellerapi.LoginPayload{UsernameOrEmail: "demo@example.com", Password: DemoPassword})
	require.NoError(t, err)

	_, err = c.Login(ctx, sellerapi.LoginPayload{UsernameOrEmail: "demo", Password: "wrong"})
	status, ok := sellerapi.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestSignup(t *testing.T) {
	_, c := newTestServer(t)
	ctx := context.Background()
	in := sellerapi.SignupPayload{
		Username:        "maker",
		Email:           "maker@example.com",
		Password:        "longenough",
		ConfirmPassword: "longenough",
		ShopName:        "Maker Shop",
		Location:        "Izmir",
		PhoneNumber:     "1",
	}

	tok, err := c.Signup(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = c.Signup(ctx, in)
	status, _ := sellerapi.StatusOf(err)
	assert.Equal(t, http.StatusBadRequest, status)

	in.Username, in.Email, in.ConfirmPassword = "x2", "x2@example.com", "different"
	_, err = c.Signup(ctx, in)
	status, _ = sellerapi.StatusOf(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestSellerRoutes_RequireToken(t *testing.T) {
	_, c := newTestServer(t)

	_, err := c.ListProducts(context.Background(), sellerapi.Query{})
	var apiErr *sellerapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.JSONEq(t, `{"detail":"Missing Bearer token"}`, apiErr.Body)

	_, err = c.WithSession(tokenSession("garbage")).ListProducts(context.Background(), sellerapi.Query{})
	require.ErrorAs(t, err, &apiErr)
	assert.JSONEq(t, `{"detail":"Invalid token"}`, apiErr.Body)
}

func TestTokens_Expired(t *testing.T) {
	tk := NewTokens("s", time.Minute)
	now := time.Now()
	tk.now = func() time.Time { return now }
	raw, err := tk.Issue(1, "demo")
	require.NoError(t, err)

	id, err := tk.SellerID(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	now = now.Add(2 * time.Minute)
	_, err = tk.SellerID(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// ============================================
// Products
// ============================================

func TestListProducts_Filters(t *testing.T) {
	_, c := newTestServer(t)
	c = loggedIn(t, c)
	ctx := context.Background()

	all, err := c.ListProducts(ctx, sellerapi.Query{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Wooden Toy", all[0].Title, "newest first")
	assert.True(t, all[2].Price.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, []string{"/mock/bag.jpg"}, all[2].Images)
	assert.Equal(t, "Demo Atelier", all[2].ShopName)

	active, err := c.ListProducts(ctx, sellerapi.Query{Statuses: []sellerapi.Status{sellerapi.StatusActive}})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	both, err := c.ListProducts(ctx, sellerapi.Query{Statuses: []sellerapi.Status{sellerapi.StatusActive, sellerapi.StatusInactive}})
	require.NoError(t, err)
	assert.Len(t, both, 3)

	rings, err := c.ListProducts(ctx, sellerapi.Query{Q: "RING"})
	require.NoError(t, err)
	require.Len(t, rings, 1)
	assert.Equal(t, "silver-ring", rings[0].Slug)

	page, err := c.ListProducts(ctx, sellerapi.Query{Limit: sellerapi.IntPtr(2), Offset: sellerapi.IntPtr(2)})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Handmade Bag", page[0].Title)

	_, err = c.ListProducts(ctx, sellerapi.Query{Limit: sellerapi.IntPtr(101)})
	status, _ := sellerapi.StatusOf(err)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestCreatePatchReplace(t *testing.T) {
	_, c := newTestServer(t)
	c = loggedIn(t, c)
	ctx := context.Background()

	created, err := c.CreateProduct(ctx, sellerapi.CreateProductPayload{
		Title:         "Linen Scarf",
		Price:         sellerapi.NewAmount(decimal.RequireFromString("19.90")),
		StockQuantity: 5,
		Currency:      "EUR",
		CategoryID:    1,
		Status:        sellerapi.StatusDraft,
	})
	require.NoError(t, err)
	assert.Equal(t, "linen-scarf", created.Slug)
	assert.Equal(t, "Bags", created.CategoryName)

	title := "Wool Scarf"
	patched, err := c.PatchProduct(ctx, created.ID, sellerapi.PatchProductPayload{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Wool Scarf", patched.Title)
	assert.True(t, patched.Price.Equal(decimal.RequireFromString("19.9")), "omitted price stays")
	assert.Equal(t, sellerapi.StatusDraft, patched.Status)

	replaced, err := c.ReplaceProduct(ctx, created.ID, sellerapi.ReplaceProductPayload{
		Title:    "Silk Scarf",
		Price:    sellerapi.NewAmount(decimal.NewFromInt(40)),
		Currency: "USD",
		Status:   sellerapi.StatusPaused,
	})
	require.NoError(t, err)
	assert.Equal(t, "silk-scarf", replaced.Slug)
	assert.Equal(t, 5, replaced.StockQuantity)
	assert.Equal(t, "Uncategorized", replaced.CategoryName)

	stock, err := c.UpdateStock(ctx, created.ID, 9)
	require.NoError(t, err)
	assert.True(t, stock.OK)

	_, err = c.PatchProduct(ctx, 9999, sellerapi.PatchProductPayload{Title: &title})
	status, _ := sellerapi.StatusOf(err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPatch_IgnoresOtherFields(t *testing.T) {
	_, c := newTestServer(t)
	c = loggedIn(t, c)

	body := `{"title":"Renamed","stock_quantity":999,"price":"7.5"}`
	var out sellerapi.Product
	require.NoError(t, c.Do(context.Background(), http.MethodPatch, "/seller/products/1", jsonRaw(body), &out))
	assert.Equal(t, "Renamed", out.Title)
	assert.Equal(t, 8, out.StockQuantity)
	assert.True(t, out.Price.Equal(decimal.RequireFromString("7.5")))
}

func TestImages_UploadListDelete(t *testing.T) {
	ts, c := newTestServer(t)
	c = loggedIn(t, c)
	ctx := context.Background()

	img, err := c.UploadProductImage(ctx, 3, "toy.png", strings.NewReader("fake-png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.URL, ts.URL+"/uploads/products/3/"), img.URL)

	res, err := ts.Client().Get(img.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.Equal(t, "fake-png", string(b))

	imgs, err := c.ListProductImages(ctx, 3)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.Equal(t, img.URL, imgs[0].URL)

	list, err := c.ListProducts(ctx, sellerapi.Query{})
	require.NoError(t, err)
	var listed []string
	for _, p := range list {
		if p.ID == 3 {
			listed = p.Images
		}
	}
	assert.Equal(t, []string{img.URL}, listed)

	require.NoError(t, c.DeleteProductImage(ctx, 3, img.ID))
	imgs, err = c.ListProductImages(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, imgs)
}

func TestImages_URLFollowsForwardedProto(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, absoluteURL(c, "/uploads/a.png"))
	})
	r.GET("/s3", func(c *gin.Context) {
		c.String(http.StatusOK, absoluteURL(c, "https://bucket.s3.amazonaws.com/a.png"))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "api.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://api.example.com/uploads/a.png", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s3", nil))
	assert.Equal(t, "https://bucket.s3.amazonaws.com/a.png", w.Body.String())
}

type jsonRaw string

func (j jsonRaw) MarshalJSON() ([]byte, error) { return []byte(j), nil }
