package sellerapi

import (
	"github.com/shopspring/decimal"
)

// Status is open-ended: the API may return values the panel does not know
// about, and they are passed through untouched.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPaused   Status = "paused"
)

// KnownStatuses lists the statuses offered as filters and edit options.
var KnownStatuses = []Status{StatusDraft, StatusActive, StatusInactive, StatusPaused}

// Currencies accepted on create and replace.
var Currencies = []string{"EUR", "USD", "TRY"}

func ValidCurrency(code string) bool {
	for _, c := range Currencies {
		if c == code {
			return true
		}
	}
	return false
}

// Product is a seller-scoped catalog record as returned by the API.
// Price travels as a JSON string ("10.00").
type Product struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StockQuantity int             `json:"stock_quantity"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	ShopName      string          `json:"shop_name"`
	Location      string          `json:"location"`
	PhoneNumber   string          `json:"phone_number"`
	Status        Status          `json:"status,omitempty"`
	IsHandmade    *bool           `json:"is_handmade,omitempty"`
}

// Amount is a decimal written as a bare JSON number, which is what the API
// expects in request bodies.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}

type CreateProductPayload struct {
	Title         string `json:"title" validate:"required"`
	Price         Amount `json:"price" validate:"gte=0"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0"`
	Description   string `json:"description"`
	Currency      string `json:"currency" validate:"required,currency"`
	CategoryID    int64  `json:"category_id" validate:"gte=0"`
	Status        Status `json:"status" validate:"required"`
	IsHandmade    bool   `json:"is_handmade"`
}

// PatchProductPayload carries only changed fields. A nil field is omitted
// from the body and the API leaves it unchanged.
type PatchProductPayload struct {
	Title  *string `json:"title,omitempty"`
	Price  *Amount `json:"price,omitempty"`
	Status *Status `json:"status,omitempty"`
}

func (p PatchProductPayload) Empty() bool {
	return p.Title == nil && p.Price == nil && p.Status == nil
}

type ReplaceProductPayload struct {
	Title       string `json:"title" validate:"required"`
	Price       Amount `json:"price" validate:"gte=0"`
	Description string `json:"description"`
	Currency    string `json:"currency" validate:"required,currency"`
	CategoryID  int64  `json:"category_id" validate:"gte=0"`
	Status      Status `json:"status" validate:"required"`
	IsHandmade  bool   `json:"is_handmade"`
}

type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	URL       string `json:"url"`
}

type StockUpdate struct {
	OK            bool `json:"ok"`
	StockQuantity int  `json:"stock_quantity"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type LoginPayload struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type SignupPayload struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	ShopName        string `json:"shop_name" validate:"required"`
	Location        string `json:"location"`
	PhoneNumber     string `json:"phone_number"`
	Bio             string `json:"bio"`
}
