package sellerapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

func (c *Client) ListProducts(ctx context.Context, q Query) ([]Product, error) {
	var out []Product
	if err := c.Do(ctx, http.MethodGet, "/seller/products"+q.String(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProduct(ctx context.Context, in CreateProductPayload) (Product, error) {
	var out Product
	err := c.Do(ctx, http.MethodPost, "/seller/products", in, &out)
	return out, err
}

func (c *Client) PatchProduct(ctx context.Context, id int64, in PatchProductPayload) (Product, error) {
	var out Product
	err := c.Do(ctx, http.MethodPatch, productPath(id), in, &out)
	return out, err
}

func (c *Client) ReplaceProduct(ctx context.Context, id int64, in ReplaceProductPayload) (Product, error) {
	var out Product
	err := c.Do(ctx, http.MethodPut, productPath(id), in, &out)
	return out, err
}

func (c *Client) UpdateStock(ctx context.Context, id int64, qty int) (StockUpdate, error) {
	var out StockUpdate
	body := map[string]int{"stock_quantity": qty}
	err := c.Do(ctx, http.MethodPatch, productPath(id)+"/stock", body, &out)
	return out, err
}

func (c *Client) UploadProductImage(ctx context.Context, id int64, filename string, r io.Reader) (ProductImage, error) {
	var out ProductImage
	body := &Multipart{Field: "file", Filename: filename, Content: r}
	err := c.Do(ctx, http.MethodPost, productPath(id)+"/images", body, &out)
	return out, err
}

func (c *Client) ListProductImages(ctx context.Context, id int64) ([]ProductImage, error) {
	var out []ProductImage
	if err := c.Do(ctx, http.MethodGet, productPath(id)+"/images", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteProductImage(ctx context.Context, id, imageID int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/images/%d", productPath(id), imageID), nil, nil)
}

func productPath(id int64) string {
	return fmt.Sprintf("/seller/products/%d", id)
}
