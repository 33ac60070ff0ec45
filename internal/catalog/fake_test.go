package catalog

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

var errDown = &sellerapi.Error{Status: 503, Body: "backend not ready"}

type fakeAPI struct {
	mu sync.Mutex

	list    func(q sellerapi.Query) ([]sellerapi.Product, error)
	create  func(in sellerapi.CreateProductPayload) (sellerapi.Product, error)
	patch   func(id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error)
	replace func(id int64, in sellerapi.ReplaceProductPayload) (sellerapi.Product, error)
	upload  func(id int64, filename string) (sellerapi.ProductImage, error)

	queries  []sellerapi.Query
	patches  []sellerapi.PatchProductPayload
	replaces []sellerapi.ReplaceProductPayload
	creates  []sellerapi.CreateProductPayload
}

func (f *fakeAPI) ListProducts(_ context.Context, q sellerapi.Query) ([]sellerapi.Product, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn := f.list
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(q)
}

func (f *fakeAPI) CreateProduct(_ context.Context, in sellerapi.CreateProductPayload) (sellerapi.Product, error) {
	f.mu.Lock()
	f.creates = append(f.creates, in)
	f.mu.Unlock()
	if f.create == nil {
		return sellerapi.Product{}, errors.New("create not stubbed")
	}
	return f.create(in)
}

func (f *fakeAPI) PatchProduct(_ context.Context, id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error) {
	f.mu.Lock()
	f.patches = append(f.patches, in)
	f.mu.Unlock()
	if f.patch == nil {
		return sellerapi.Product{}, errors.New("patch not stubbed")
	}
	return f.patch(id, in)
}

func (f *fakeAPI) ReplaceProduct(_ context.Context, id int64, in sellerapi.ReplaceProductPayload) (sellerapi.Product, error) {
	f.mu.Lock()
	f.replaces = append(f.replaces, in)
	f.mu.Unlock()
	if f.replace == nil {
		return sellerapi.Product{}, errors.New("replace not stubbed")
	}
	return f.replace(id, in)
}

func (f *fakeAPI) UploadProductImage(_ context.Context, id int64, filename string, r io.Reader) (sellerapi.ProductImage, error) {
	_, _ = io.ReadAll(r)
	if f.upload == nil {
		return sellerapi.ProductImage{}, errors.New("upload not stubbed")
	}
	return f.upload(id, filename)
}

func product(id int64, title, price string) sellerapi.Product {
	return sellerapi.Product{
		ID:       id,
		Title:    title,
		Slug:     "p",
		Price:    decimal.RequireFromString(price),
		Currency: "EUR",
		Status:   sellerapi.StatusActive,
	}
}

func products(n int) []sellerapi.Product {
	out := make([]sellerapi.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, product(int64(i), "P", "1.00"))
	}
	return out
}
