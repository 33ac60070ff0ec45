package handlers

import (
	"strconv"
	"strings"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/catalog"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/pkg/view"
)

// pageOverrides carries submitted values that failed validation, so the
// page shows them instead of the stored record.
type pageOverrides struct {
	create  *view.CreateForm
	patch   *rowPatch
	replace *rowReplace
}

type rowPatch struct {
	id   int64
	form view.PatchForm
}

type rowReplace struct {
	id   int64
	form view.ReplaceForm
}

var syncLabels = map[catalog.SyncState]string{
	catalog.Synced:  "Saved",
	catalog.Pending: "Saving…",
	catalog.Failed:  "Not saved",
	catalog.Local:   "This session only",
}

func buildPage(v catalog.View, seller string, f *view.Flash, o pageOverrides) view.ProductsPage {
	p := view.ProductsPage{
		Flash:           f,
		Seller:          seller,
		Q:               v.Filter.Q(),
		Limit:           v.Filter.Limit(),
		Page:            v.Filter.Offset()/v.Filter.Limit() + 1,
		Loading:         v.State == catalog.Loading,
		Error:           v.Err,
		HasPrev:         v.HasPrev,
		HasNext:         v.HasNext,
		StatusOptions:   statusOptions(""),
		CurrencyOptions: currencyOptions(),
		Creating:        v.Creating,
		Create:          defaultCreateForm(),
	}
	for _, s := range sellerapi.KnownStatuses {
		p.Statuses = append(p.Statuses, view.Option{
			Value:    string(s),
			Label:    statusLabel(s),
			Selected: v.Filter.HasStatus(s),
		})
	}
	for _, n := range catalog.PageSizes {
		p.Limits = append(p.Limits, view.Option{
			Value:    strconv.Itoa(n),
			Label:    strconv.Itoa(n),
			Selected: n == v.Filter.Limit(),
		})
	}
	if o.create != nil {
		p.Create = *o.create
	}

	p.Rows = make([]view.ProductRow, 0, len(v.Items))
	for _, r := range v.Items {
		row := productRow(r)
		row.Busy = v.Busy[r.ID]
		row.Editing = v.Editing.Patching(r.ID)
		row.Replacing = v.Editing.Replacing(r.ID)
		if row.Editing {
			row.Patch = patchFormView(catalog.DraftFrom(r.Product))
			if o.patch != nil && o.patch.id == r.ID {
				row.Patch = o.patch.form
			}
		}
		if row.Replacing {
			row.Replace = replaceFormView(catalog.ReplaceFormFrom(r.Product))
			if o.replace != nil && o.replace.id == r.ID {
				row.Replace = o.replace.form
			}
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}

func productRow(r catalog.Record) view.ProductRow {
	return view.ProductRow{
		ID:            r.ID,
		Title:         r.Title,
		Slug:          r.Slug,
		Price:         view.Money(r.Price, r.Currency),
		Currency:      r.Currency,
		Stock:         r.StockQuantity,
		Status:        statusLabel(r.Status),
		Category:      r.CategoryName,
		Shop:          r.ShopName,
		Images:        r.Images,
		Sync:          string(r.Sync),
		SyncLabel:     syncLabels[r.Sync],
		SyncError:     r.SyncError,
		Unsynced:      r.Unsynced(),
		StatusChoices: statusOptions(r.Status),
	}
}

// statusOptions lists the known statuses, plus current when the API
// returned one outside that set.
func statusOptions(current sellerapi.Status) []view.Option {
	out := make([]view.Option, 0, len(sellerapi.KnownStatuses)+1)
	known := false
	for _, s := range sellerapi.KnownStatuses {
		known = known || s == current
		out = append(out, view.Option{Value: string(s), Label: statusLabel(s)})
	}
	if current != "" && !known {
		out = append(out, view.Option{Value: string(current), Label: statusLabel(current)})
	}
	return out
}

func statusLabel(s sellerapi.Status) string {
	if s == "" {
		return "—"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func currencyOptions() []view.Option {
	out := make([]view.Option, 0, len(sellerapi.Currencies))
	for _, c := range sellerapi.Currencies {
		out = append(out, view.Option{Value: c, Label: c})
	}
	return out
}

func defaultCreateForm() view.CreateForm {
	return view.CreateForm{
		Currency:   "EUR",
		Status:     string(sellerapi.StatusDraft),
		IsHandmade: true,
	}
}

func createFormView(f catalog.CreateForm) view.CreateForm {
	return view.CreateForm{
		Title:       f.Title,
		Price:       f.Price,
		Stock:       f.Stock,
		Description: f.Description,
		Currency:    f.Currency,
		CategoryID:  f.CategoryID,
		Status:      f.Status,
		IsHandmade:  f.IsHandmade,
	}
}

func patchFormView(d catalog.PatchDraft) view.PatchForm {
	return view.PatchForm{Title: d.Title, Price: d.Price, Status: d.Status}
}

func replaceFormView(f catalog.ReplaceForm) view.ReplaceForm {
	return view.ReplaceForm{
		Title:       f.Title,
		Price:       f.Price,
		Currency:    f.Currency,
		Status:      f.Status,
		Description: f.Description,
		CategoryID:  f.CategoryID,
		IsHandmade:  f.IsHandmade,
	}
}
