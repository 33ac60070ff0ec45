package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

func TestStruct_CreatePayload(t *testing.T) {
	ok := sellerapi.CreateProductPayload{
		Title:    "Handmade Bag",
		Price:    sellerapi.NewAmount(decimal.RequireFromString("120")),
		Currency: "EUR",
		Status:   sellerapi.StatusDraft,
	}
	assert.Nil(t, Struct(ok))

	bad := ok
	bad.Title = ""
	bad.Price = sellerapi.NewAmount(decimal.RequireFromString("-1"))
	bad.StockQuantity = -2
	bad.Currency = "GBP"

	fe := Struct(bad)
	assert.Equal(t, "This field is required.", fe["title"])
	assert.Equal(t, "Must be 0 or greater.", fe["price"])
	assert.Equal(t, "Must be 0 or greater.", fe["stock_quantity"])
	assert.Equal(t, "Unsupported currency.", fe["currency"])
}

func TestStruct_Signup(t *testing.T) {
	fe := Struct(sellerapi.SignupPayload{
		Username:        "ab",
		Email:           "not-an-email",
		Password:        "secret123",
		ConfirmPassword: "secret124",
		ShopName:        "Shop",
	})
	assert.Contains(t, fe, "username")
	assert.Equal(t, "Enter a valid email address.", fe["email"])
	assert.Equal(t, "Does not match.", fe["confirm_password"])
}
