// Command smoke logs in to a seller backend and walks the catalog calls the
// panel relies on: list, create, patch, replace and stock update.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

type token string

func (t token) AccessToken() string { return string(t) }

func main() {
	baseURL := pflag.String("url", "http://localhost:8001", "Seller API base URL")
	user := pflag.String("user", "demo", "Username or email")
	password := pflag.String("password", "123456", "Password")
	keep := pflag.Bool("keep", false, "Leave the created product active instead of pausing it")
	pflag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, *baseURL, *user, *password, *keep); err != nil {
		fmt.Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ smoke run passed")
}

func run(ctx context.Context, baseURL, user, password string, keep bool) error {
	anon := sellerapi.New(baseURL, &http.Client{Timeout: 10 * time.Second})

	tok, err := anon.Login(ctx, sellerapi.LoginPayload{UsernameOrEmail: user, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c := anon.WithSession(token(tok.AccessToken))
	fmt.Println("✓ logged in as", user)

	limit := 10
	items, err := c.ListProducts(ctx, sellerapi.Query{Limit: &limit})
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	fmt.Printf("✓ listed %d products\n", len(items))

	created, err := c.CreateProduct(ctx, sellerapi.CreateProductPayload{
		Title:         fmt.Sprintf("Smoke %s", time.Now().Format("150405")),
		Price:         sellerapi.NewAmount(decimal.RequireFromString("9.99")),
		StockQuantity: 1,
		Currency:      "EUR",
		Status:        sellerapi.StatusDraft,
		IsHandmade:    true,
	})
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	fmt.Printf("✓ created #%d %q (%s)\n", created.ID, created.Title, created.Slug)

	title := created.Title + " edited"
	patched, err := c.PatchProduct(ctx, created.ID, sellerapi.PatchProductPayload{Title: &title})
	if err != nil {
		return fmt.Errorf("patch: %w", err)
	}
	if patched.Title != title {
		return fmt.Errorf("patch: title is %q, want %q", patched.Title, title)
	}
	fmt.Println("✓ patched title")

	status := sellerapi.StatusActive
	if !keep {
		status = sellerapi.StatusPaused
	}
	replaced, err := c.ReplaceProduct(ctx, created.ID, sellerapi.ReplaceProductPayload{
		Title:      title,
		Price:      sellerapi.NewAmount(decimal.RequireFromString("12.50")),
		Currency:   "EUR",
		Status:     status,
		IsHandmade: true,
	})
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	fmt.Printf("✓ replaced, price %s status %s\n", replaced.Price.StringFixed(2), replaced.Status)

	if _, err := c.UpdateStock(ctx, created.ID, 5); err != nil {
		return fmt.Errorf("stock: %w", err)
	}
	fmt.Println("✓ stock set to 5")
	return nil
}
