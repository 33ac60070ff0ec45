package catalog

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/apperr"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/slug"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/validation"
)

const (
	invalidFormMsg     = "Please fix the highlighted fields."
	invalidCategoryMsg = "Category ID must be a valid number."
)

// maxWhole bounds stock and category ids; larger values would wrap when
// converted to Go integers.
var maxWhole = decimal.NewFromInt(math.MaxInt32)

// Denormalized values shown on placeholders created while offline.
const (
	placeholderCategory = "Mock Category"
	placeholderShop     = "My Shop (Mock)"
	placeholderUnknown  = "—"
)

// PatchDraft is the raw inline edit form. Only title, price and status can
// be changed this way.
type PatchDraft struct {
	Title  string `form:"title"`
	Price  string `form:"price"`
	Status string `form:"status"`
}

// DraftFrom prefills the editor.
func DraftFrom(p sellerapi.Product) PatchDraft {
	return PatchDraft{
		Title:  p.Title,
		Price:  priceText(p.Price),
		Status: string(p.Status),
	}
}

// Diff returns a payload holding only the fields that differ from orig.
// A blank title means "keep the current one".
func (d PatchDraft) Diff(orig sellerapi.Product) (sellerapi.PatchProductPayload, error) {
	var out sellerapi.PatchProductPayload
	fields := validation.FieldErrors{}

	if t := strings.TrimSpace(d.Title); t != "" && t != orig.Title {
		out.Title = &t
	}

	if raw := strings.TrimSpace(d.Price); raw != "" {
		p, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			fields["price"] = "Must be a number."
		case p.IsNegative():
			fields["price"] = "Must be 0 or greater."
		case !p.Equal(orig.Price):
			a := sellerapi.NewAmount(p)
			out.Price = &a
		}
	}

	if s := sellerapi.Status(strings.TrimSpace(d.Status)); s != "" && s != orig.Status {
		out.Status = &s
	}

	if len(fields) > 0 {
		return sellerapi.PatchProductPayload{}, apperr.InvalidErr(invalidFormMsg, fields)
	}
	return out, nil
}

func applyPatch(p sellerapi.Product, in sellerapi.PatchProductPayload) sellerapi.Product {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Price != nil {
		p.Price = in.Price.Decimal
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	return p
}

// ReplaceForm is the raw full edit (PUT) form.
type ReplaceForm struct {
	Title       string `form:"title"`
	Price       string `form:"price"`
	Currency    string `form:"currency"`
	Status      string `form:"status"`
	IsHandmade  bool   `form:"is_handmade"`
	Description string `form:"description"`
	CategoryID  string `form:"category_id"`
}

func ReplaceFormFrom(p sellerapi.Product) ReplaceForm {
	handmade := true
	if p.IsHandmade != nil {
		handmade = *p.IsHandmade
	}
	status := string(p.Status)
	if status == "" {
		status = string(sellerapi.StatusDraft)
	}
	currency := p.Currency
	if currency == "" {
		currency = "EUR"
	}
	return ReplaceForm{
		Title:       p.Title,
		Price:       priceText(p.Price),
		Currency:    currency,
		Status:      status,
		IsHandmade:  handmade,
		Description: p.Description,
		CategoryID:  strconv.FormatInt(p.CategoryID, 10),
	}
}

// Payload builds the complete replacement body. Description and category
// default to "" and 0.
func (f ReplaceForm) Payload() (sellerapi.ReplaceProductPayload, error) {
	out := sellerapi.ReplaceProductPayload{
		Title:       strings.TrimSpace(f.Title),
		Price:       sellerapi.NewAmount(numberOrZero(f.Price)),
		Description: f.Description,
		Currency:    strings.TrimSpace(f.Currency),
		Status:      sellerapi.Status(strings.TrimSpace(f.Status)),
		IsHandmade:  f.IsHandmade,
	}
	fields := validation.FieldErrors{}
	if n, ok := finiteNumber(f.CategoryID); ok {
		if whole(n) {
			out.CategoryID = n.IntPart()
		} else {
			fields["category_id"] = invalidCategoryMsg
		}
	}
	for k, v := range validation.Struct(out) {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return sellerapi.ReplaceProductPayload{}, apperr.InvalidErr(invalidFormMsg, fields)
	}
	return out, nil
}

func applyReplace(p sellerapi.Product, in sellerapi.ReplaceProductPayload) sellerapi.Product {
	handmade := in.IsHandmade
	p.Title = in.Title
	p.Price = in.Price.Decimal
	p.Currency = in.Currency
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Status = in.Status
	p.IsHandmade = &handmade
	return p
}

// CreateForm is the raw create form. Price and stock that do not parse are
// taken as 0; the category id must be a whole number.
type CreateForm struct {
	Title       string `form:"title"`
	Price       string `form:"price"`
	Stock       string `form:"stock_quantity"`
	Description string `form:"description"`
	Currency    string `form:"currency"`
	CategoryID  string `form:"category_id"`
	Status      string `form:"status"`
	IsHandmade  bool   `form:"is_handmade"`
}

func (f CreateForm) Payload() (sellerapi.CreateProductPayload, error) {
	fields := validation.FieldErrors{}

	stock := numberOrZero(f.Stock)
	if !whole(stock) {
		fields["stock_quantity"] = "Must be a whole number."
		stock = decimal.Zero
	}

	var categoryID int64
	if n, ok := finiteNumber(f.CategoryID); !ok && strings.TrimSpace(f.CategoryID) != "" || ok && !whole(n) {
		fields["category_id"] = invalidCategoryMsg
	} else if ok {
		categoryID = n.IntPart()
	}

	currency := strings.TrimSpace(f.Currency)
	if currency == "" {
		currency = "EUR"
	}
	status := sellerapi.Status(strings.TrimSpace(f.Status))
	if status == "" {
		status = sellerapi.StatusDraft
	}

	out := sellerapi.CreateProductPayload{
		Title:         strings.TrimSpace(f.Title),
		Price:         sellerapi.NewAmount(numberOrZero(f.Price)),
		StockQuantity: int(stock.IntPart()),
		Description:   f.Description,
		Currency:      currency,
		CategoryID:    categoryID,
		Status:        status,
		IsHandmade:    f.IsHandmade,
	}
	for k, v := range validation.Struct(out) {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return sellerapi.CreateProductPayload{}, apperr.InvalidErr(invalidFormMsg, fields)
	}
	return out, nil
}

// placeholder synthesizes the record shown when create could not reach the
// API. It is marked Local and never treated as persisted.
func placeholder(id int64, in sellerapi.CreateProductPayload, cause error) Record {
	handmade := in.IsHandmade
	return Record{
		Product: sellerapi.Product{
			ID:            id,
			Title:         in.Title,
			Slug:          slug.FromTitle(in.Title),
			Price:         in.Price.Decimal,
			Currency:      in.Currency,
			StockQuantity: in.StockQuantity,
			Description:   in.Description,
			Images:        []string{},
			CategoryID:    in.CategoryID,
			CategoryName:  placeholderCategory,
			ShopName:      placeholderShop,
			Location:      placeholderUnknown,
			PhoneNumber:   placeholderUnknown,
			Status:        in.Status,
			IsHandmade:    &handmade,
		},
		Sync:      Local,
		SyncError: describe(cause),
	}
}

func localID(now time.Time, last int64) int64 {
	id := now.UnixMilli()
	if id <= last {
		id = last + 1
	}
	return id
}

// whole reports whether d is an integer that fits the API's integer fields.
// priceText shows two decimals unless that would round the price, so an
// untouched field never shows up as a change.
func priceText(d decimal.Decimal) string {
	if !d.Equal(d.Round(2)) {
		return d.String()
	}
	return d.StringFixed(2)
}

func whole(d decimal.Decimal) bool {
	return d.IsInteger() && d.Abs().LessThanOrEqual(maxWhole)
}

func numberOrZero(raw string) decimal.Decimal {
	if d, ok := finiteNumber(raw); ok {
		return d
	}
	return decimal.Zero
}

func finiteNumber(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NewFromFloat(f), true
	}
	return d, true
}
