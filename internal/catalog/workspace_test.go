package catalog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/activity"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/shared/apperr"
)

var fixedNow = time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

func newLoadedWorkspace(t *testing.T, api *fakeAPI, items ...sellerapi.Product) (*Workspace, *activity.Recorder) {
	t.Helper()
	api.list = func(sellerapi.Query) ([]sellerapi.Product, error) { return items, nil }
	rec := &activity.Recorder{}
	w := NewWorkspace("demo", api, WithEvents(rec), WithClock(func() time.Time { return fixedNow }))
	require.True(t, w.Refresh(context.Background()))
	return w, rec
}

// ============================================
// Loading
// ============================================

func TestWorkspace_EnsureLoaded_OnlyOnFilterChange(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, products(2)...)
	assert.Len(t, api.queries, 1)

	assert.False(t, w.EnsureLoaded(context.Background()))
	assert.Len(t, api.queries, 1)

	w.SetQuery("ring")
	assert.True(t, w.EnsureLoaded(context.Background()))
	require.Len(t, api.queries, 2)
	assert.Equal(t, "q=ring&limit=50&offset=0", api.queries[1].Encode())
}

func TestWorkspace_Refresh_LatestFilterWins(t *testing.T) {
	slow := make(chan struct{})
	api := &fakeAPI{}
	api.list = func(q sellerapi.Query) ([]sellerapi.Product, error) {
		if q.Q == "old" {
			<-slow
			return products(5), nil
		}
		return products(1), nil
	}
	w := NewWorkspace("demo", api)

	w.SetQuery("old")
	var wg sync.WaitGroup
	wg.Add(1)
	var oldApplied bool
	go func() {
		defer wg.Done()
		oldApplied = w.Refresh(context.Background())
	}()

	// Wait until the first request is in flight.
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.queries) == 1
	}, time.Second, time.Millisecond)

	w.SetQuery("new")
	assert.True(t, w.Refresh(context.Background()))

	close(slow)
	wg.Wait()

	assert.False(t, oldApplied)
	v := w.View()
	assert.Len(t, v.Items, 1)
	assert.Equal(t, "new", v.Filter.Q())
}

func TestWorkspace_Refresh_Error(t *testing.T) {
	api := &fakeAPI{list: func(sellerapi.Query) ([]sellerapi.Product, error) { return nil, errDown }}
	w := NewWorkspace("demo", api)
	w.Refresh(context.Background())

	v := w.View()
	assert.Equal(t, Errored, v.State)
	assert.Equal(t, "backend not ready", v.Err)
	assert.Empty(t, v.Items)
}

func TestWorkspace_HasPrevHasNext(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, products(10)...)
	w.SetLimit(10)
	w.Refresh(context.Background())

	v := w.View()
	assert.True(t, v.HasNext)
	assert.False(t, v.HasPrev)

	w.NextPage()
	w.Refresh(context.Background())
	v = w.View()
	assert.True(t, v.HasPrev)
	assert.Equal(t, 10, v.Filter.Offset())
}

// ============================================
// Edit surfaces
// ============================================

func TestWorkspace_StartEdit_IsExclusive(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "10.00"), product(2, "B", "20.00"))

	_, err := w.StartEdit(1)
	require.NoError(t, err)
	_, err = w.StartEdit(2)
	require.NoError(t, err)

	v := w.View()
	assert.Equal(t, Editing{Surface: PatchSurface, ID: 2}, v.Editing)

	a, _ := w.Record(1)
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, Synced, a.Sync)
	assert.Empty(t, api.patches)
}

func TestWorkspace_ReplaceAndEditCloseEachOther(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "10.00"), product(2, "B", "20.00"))

	_, _ = w.StartEdit(1)
	_, _ = w.StartReplace(2)
	assert.Equal(t, Editing{Surface: ReplaceSurface, ID: 2}, w.View().Editing)

	_, _ = w.StartEdit(1)
	assert.Equal(t, Editing{Surface: PatchSurface, ID: 1}, w.View().Editing)

	w.CloseReplace()
	assert.Equal(t, PatchSurface, w.View().Editing.Surface, "closing a surface that is not open is a no-op")
	w.CancelEdit()
	assert.Equal(t, NoSurface, w.View().Editing.Surface)

	_, err := w.StartEdit(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ============================================
// PATCH
// ============================================

func TestWorkspace_SavePatch_SendsOnlyChangedFields(t *testing.T) {
	api := &fakeAPI{}
	api.patch = func(id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error) {
		p := product(id, *in.Title, "10.00")
		p.Slug = "server-slug"
		return p, nil
	}
	w, rec := newLoadedWorkspace(t, api, product(1, "Old", "10.00"))

	_, _ = w.StartEdit(1)
	got, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "New", Price: "10.00", Status: "active"})
	require.NoError(t, err)

	require.Len(t, api.patches, 1)
	sent := api.patches[0]
	require.NotNil(t, sent.Title)
	assert.Equal(t, "New", *sent.Title)
	assert.Nil(t, sent.Price)
	assert.Nil(t, sent.Status)

	assert.Equal(t, Synced, got.Sync)
	assert.Equal(t, "server-slug", got.Slug, "server response replaces the optimistic record")
	assert.Equal(t, NoSurface, w.View().Editing.Surface)
	assert.Equal(t, []activity.Kind{activity.Patched}, rec.Kinds())
}

func TestWorkspace_SavePatch_FailureKeepsOptimisticValue(t *testing.T) {
	api := &fakeAPI{}
	api.patch = func(int64, sellerapi.PatchProductPayload) (sellerapi.Product, error) { return sellerapi.Product{}, errDown }
	w, rec := newLoadedWorkspace(t, api, product(1, "Old", "10.00"))

	_, _ = w.StartEdit(1)
	got, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "Old", Price: "12.5"})

	var unsynced *UnsyncedError
	require.ErrorAs(t, err, &unsynced)
	assert.ErrorIs(t, err, errDown)

	assert.Equal(t, Failed, got.Sync)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "backend not ready", got.SyncError)

	stored, _ := w.Record(1)
	assert.Equal(t, got, stored)
	assert.Equal(t, NoSurface, w.View().Editing.Surface, "edit mode closes even on failure")
	assert.Equal(t, []activity.Kind{activity.PatchFailed}, rec.Kinds())
}

func TestWorkspace_SavePatch_InvalidKeepsEditorOpen(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "Old", "10.00"))

	_, _ = w.StartEdit(1)
	_, err := w.SavePatch(context.Background(), 1, PatchDraft{Price: "-1"})

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.Invalid, ae.Kind)
	assert.Contains(t, ae.Fields, "price")
	assert.Empty(t, api.patches)
	assert.True(t, w.View().Editing.Patching(1))
}

func TestWorkspace_SavePatch_NoChangesSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "Old", "10.00"))

	_, _ = w.StartEdit(1)
	_, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "  ", Price: "10", Status: "active"})
	require.NoError(t, err)
	assert.Empty(t, api.patches)
	assert.Equal(t, NoSurface, w.View().Editing.Surface)
}

func TestWorkspace_SavePatch_RequiresOpenEditor(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "1"), product(2, "B", "2"))

	_, _ = w.StartEdit(1)
	_, _ = w.StartEdit(2)
	_, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "half edited"})
	assert.ErrorIs(t, err, ErrNotEditing)

	a, _ := w.Record(1)
	assert.Equal(t, "A", a.Title)
}

func TestWorkspace_SavePatch_RejectsDuplicateSubmit(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{}
	api.patch = func(id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error) {
		<-release
		return product(id, *in.Title, "1"), nil
	}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "1"))
	_, _ = w.StartEdit(1)

	done := make(chan error, 1)
	go func() {
		_, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "B"})
		done <- err
	}()
	require.Eventually(t, func() bool { return w.View().Busy[1] }, time.Second, time.Millisecond)

	v := w.View()
	pending, _ := w.Record(1)
	assert.Equal(t, Pending, pending.Sync)
	assert.Equal(t, "B", pending.Title)
	assert.True(t, v.Editing.Patching(1))

	_, err := w.SavePatch(context.Background(), 1, PatchDraft{Title: "C"})
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, w.View().Busy[1])
}

// ============================================
// PUT
// ============================================

func validReplaceForm() ReplaceForm {
	return ReplaceForm{
		Title:       " Leather Bag ",
		Price:       "99.90",
		Currency:    "USD",
		Status:      "paused",
		IsHandmade:  false,
		Description: "brown",
		CategoryID:  "",
	}
}

func TestWorkspace_Replace_ValidationBeforeRequest(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "1"))
	_, _ = w.StartReplace(1)

	f := validReplaceForm()
	f.Title = "   "
	f.Price = "-5"
	_, err := w.Replace(context.Background(), 1, f)

	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "price")
	assert.Empty(t, api.replaces)
	assert.True(t, w.View().Editing.Replacing(1))
}

func TestWorkspace_Replace_RejectsOutOfRangeCategory(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "1"))
	_, _ = w.StartReplace(1)

	for _, id := range []string{"2e19", "1.5"} {
		f := validReplaceForm()
		f.CategoryID = id
		_, err := w.Replace(context.Background(), 1, f)

		ae, ok := apperr.As(err)
		require.True(t, ok, id)
		assert.Equal(t, "Category ID must be a valid number.", ae.Fields["category_id"], id)
	}
	assert.Empty(t, api.replaces)
}

func TestWorkspace_Replace_SendsFullPayload(t *testing.T) {
	api := &fakeAPI{}
	api.replace = func(id int64, in sellerapi.ReplaceProductPayload) (sellerapi.Product, error) {
		p := product(id, in.Title, in.Price.String())
		p.Slug = "leather-bag"
		return p, nil
	}
	w, rec := newLoadedWorkspace(t, api, product(1, "A", "1"))
	_, _ = w.StartReplace(1)

	got, err := w.Replace(context.Background(), 1, validReplaceForm())
	require.NoError(t, err)

	require.Len(t, api.replaces, 1)
	sent := api.replaces[0]
	assert.Equal(t, "Leather Bag", sent.Title)
	assert.Equal(t, "USD", sent.Currency)
	assert.Equal(t, sellerapi.StatusPaused, sent.Status)
	assert.Equal(t, int64(0), sent.CategoryID)
	assert.Equal(t, "brown", sent.Description)
	assert.False(t, sent.IsHandmade)

	assert.Equal(t, "leather-bag", got.Slug)
	assert.Equal(t, Synced, got.Sync)
	assert.Equal(t, NoSurface, w.View().Editing.Surface)
	assert.Equal(t, []activity.Kind{activity.Replaced}, rec.Kinds())
}

func TestWorkspace_Replace_FailureMergesAndCloses(t *testing.T) {
	api := &fakeAPI{}
	api.replace = func(int64, sellerapi.ReplaceProductPayload) (sellerapi.Product, error) {
		return sellerapi.Product{}, errors.New("dial tcp: connection refused")
	}
	orig := product(1, "A", "1")
	orig.StockQuantity = 7
	orig.Images = []string{"/a.jpg"}
	orig.ShopName = "Shop"
	w, _ := newLoadedWorkspace(t, api, orig)
	_, _ = w.StartReplace(1)

	got, err := w.Replace(context.Background(), 1, validReplaceForm())
	var unsynced *UnsyncedError
	require.ErrorAs(t, err, &unsynced)

	assert.Equal(t, Failed, got.Sync)
	assert.Equal(t, "Leather Bag", got.Title)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 7, got.StockQuantity, "fields outside the PUT form keep their local values")
	assert.Equal(t, []string{"/a.jpg"}, got.Images)
	assert.Equal(t, "Shop", got.ShopName)
	assert.Equal(t, NoSurface, w.View().Editing.Surface)
}

// ============================================
// Create
// ============================================

func TestWorkspace_Create_SuccessPrepends(t *testing.T) {
	api := &fakeAPI{}
	api.create = func(in sellerapi.CreateProductPayload) (sellerapi.Product, error) {
		return product(50, in.Title, in.Price.String()), nil
	}
	w, rec := newLoadedWorkspace(t, api, product(1, "A", "1"))

	got, err := w.Create(context.Background(), CreateForm{Title: "New", Price: "5", Stock: "3", Currency: "EUR", Status: "draft"})
	require.NoError(t, err)
	assert.Equal(t, Synced, got.Sync)

	items := w.View().Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(50), items[0].ID)
	assert.Equal(t, []activity.Kind{activity.Created}, rec.Kinds())
}

func TestWorkspace_Create_FallbackPlaceholder(t *testing.T) {
	api := &fakeAPI{}
	api.create = func(sellerapi.CreateProductPayload) (sellerapi.Product, error) { return sellerapi.Product{}, errDown }
	w, rec := newLoadedWorkspace(t, api)

	got, err := w.Create(context.Background(), CreateForm{
		Title:      "Handmade Leather Bag!!",
		Price:      "19.99",
		Stock:      "4",
		Currency:   "TRY",
		CategoryID: "3",
		IsHandmade: true,
	})
	var unsynced *UnsyncedError
	require.ErrorAs(t, err, &unsynced)
	assert.Equal(t, got, unsynced.Record)

	assert.Equal(t, Local, got.Sync)
	assert.True(t, got.Unsynced())
	assert.Equal(t, fixedNow.UnixMilli(), got.ID)
	assert.Equal(t, "handmade-leather-bag", got.Slug)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 4, got.StockQuantity)
	assert.Equal(t, "Mock Category", got.CategoryName)
	assert.Equal(t, sellerapi.StatusDraft, got.Status)
	assert.Empty(t, got.Images)
	assert.Equal(t, []activity.Kind{activity.CreatedLocal}, rec.Kinds())

	second, _ := w.Create(context.Background(), CreateForm{Title: "Other", Currency: "EUR"})
	assert.Equal(t, fixedNow.UnixMilli()+1, second.ID, "local ids stay unique within the session")
}

func TestWorkspace_Create_NonNumericCoercesToZero(t *testing.T) {
	api := &fakeAPI{}
	api.create = func(sellerapi.CreateProductPayload) (sellerapi.Product, error) { return sellerapi.Product{}, errDown }
	w, _ := newLoadedWorkspace(t, api)

	got, err := w.Create(context.Background(), CreateForm{Title: "Ring", Price: "abc", Stock: "", Currency: "EUR"})
	require.Error(t, err)
	assert.True(t, got.Price.IsZero())
	assert.Equal(t, 0, got.StockQuantity)
	require.Len(t, api.creates, 1)
	assert.True(t, api.creates[0].Price.IsZero())
}

func TestWorkspace_Create_Validation(t *testing.T) {
	api := &fakeAPI{}
	w, _ := newLoadedWorkspace(t, api)

	_, err := w.Create(context.Background(), CreateForm{
		Title:      " ",
		Price:      "-1",
		Stock:      "-2",
		CategoryID: "x",
		Currency:   "EUR",
	})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "price")
	assert.Contains(t, ae.Fields, "stock_quantity")
	assert.Equal(t, "Category ID must be a valid number.", ae.Fields["category_id"])
	assert.Empty(t, api.creates)

	_, err = w.Create(context.Background(), CreateForm{Title: "T", Stock: "1.5", CategoryID: "2.5"})
	ae, _ = apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "Must be a whole number.", ae.Fields["stock_quantity"])
	assert.Contains(t, ae.Fields, "category_id")

	for _, stock := range []string{"18446744073709551621", "1e20", "-1e20"} {
		_, err = w.Create(context.Background(), CreateForm{Title: "Ring", Price: "1", Stock: stock, CategoryID: "2e19", Currency: "EUR"})
		ae, _ = apperr.As(err)
		require.NotNil(t, ae, stock)
		assert.Equal(t, "Must be a whole number.", ae.Fields["stock_quantity"], stock)
		assert.Equal(t, "Category ID must be a valid number.", ae.Fields["category_id"], stock)
	}
	assert.Empty(t, api.creates)
}

func TestWorkspace_Create_LargestStockKeptExactly(t *testing.T) {
	api := &fakeAPI{}
	api.create = func(sellerapi.CreateProductPayload) (sellerapi.Product, error) { return sellerapi.Product{}, errDown }
	w, _ := newLoadedWorkspace(t, api)

	rec, err := w.Create(context.Background(), CreateForm{Title: "Beads", Stock: "2147483647", CategoryID: "2147483647", Currency: "EUR"})
	var unsynced *UnsyncedError
	require.ErrorAs(t, err, &unsynced)
	assert.Equal(t, 2147483647, rec.StockQuantity)
	assert.Equal(t, int64(2147483647), rec.CategoryID)
}

func TestWorkspace_LocalRecordEditsStayLocal(t *testing.T) {
	api := &fakeAPI{}
	api.create = func(sellerapi.CreateProductPayload) (sellerapi.Product, error) { return sellerapi.Product{}, errDown }
	w, _ := newLoadedWorkspace(t, api)

	local, _ := w.Create(context.Background(), CreateForm{Title: "Draft thing", Currency: "EUR"})
	_, err := w.StartEdit(local.ID)
	require.NoError(t, err)

	got, err := w.SavePatch(context.Background(), local.ID, PatchDraft{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, Local, got.Sync)
	assert.Equal(t, "Renamed", got.Title)
	assert.Empty(t, api.patches)

	_, err = w.UploadImage(context.Background(), local.ID, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrLocalOnly)
}

func TestWorkspace_UploadImage(t *testing.T) {
	api := &fakeAPI{}
	api.upload = func(id int64, filename string) (sellerapi.ProductImage, error) {
		return sellerapi.ProductImage{ID: 9, ProductID: id, URL: "/uploads/" + filename}, nil
	}
	w, _ := newLoadedWorkspace(t, api, product(1, "A", "1"))

	got, err := w.UploadImage(context.Background(), 1, "a.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.png"}, got.Images)
}

func TestDraftFrom(t *testing.T) {
	p := product(1, "A", "10")
	d := DraftFrom(p)
	assert.Equal(t, "10.00", d.Price)

	payload, err := d.Diff(p)
	require.NoError(t, err)
	assert.True(t, payload.Empty())
}

func TestDraftFrom_SubCentPriceUntouched(t *testing.T) {
	api := &fakeAPI{}
	api.patch = func(id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error) {
		return product(id, *in.Title, "10.005"), nil
	}
	p := product(1, "A", "10.005")
	w, _ := newLoadedWorkspace(t, api, p)

	d := DraftFrom(p)
	assert.Equal(t, "10.005", d.Price)

	_, _ = w.StartEdit(1)
	d.Title = "B"
	_, err := w.SavePatch(context.Background(), 1, d)
	require.NoError(t, err)
	require.Len(t, api.patches, 1)
	assert.Nil(t, api.patches[0].Price)
}

func TestReplaceFormFrom_Defaults(t *testing.T) {
	f := ReplaceFormFrom(sellerapi.Product{Title: "x", Price: decimal.RequireFromString("2")})
	assert.Equal(t, "EUR", f.Currency)
	assert.Equal(t, "draft", f.Status)
	assert.True(t, f.IsHandmade)
	assert.Equal(t, "0", f.CategoryID)
	assert.Equal(t, "2.00", f.Price)

	f = ReplaceFormFrom(sellerapi.Product{Title: "x", Price: decimal.RequireFromString("10.005")})
	assert.Equal(t, "10.005", f.Price)
}
