package catalog

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/activity"
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

// API is the part of the seller API a workspace needs.
type API interface {
	ListProducts(ctx context.Context, q sellerapi.Query) ([]sellerapi.Product, error)
	CreateProduct(ctx context.Context, in sellerapi.CreateProductPayload) (sellerapi.Product, error)
	PatchProduct(ctx context.Context, id int64, in sellerapi.PatchProductPayload) (sellerapi.Product, error)
	ReplaceProduct(ctx context.Context, id int64, in sellerapi.ReplaceProductPayload) (sellerapi.Product, error)
	UploadProductImage(ctx context.Context, id int64, filename string, r io.Reader) (sellerapi.ProductImage, error)
}

type Surface string

const (
	NoSurface      Surface = ""
	PatchSurface   Surface = "patch"
	ReplaceSurface Surface = "replace"
)

// Editing is the single open edit surface. Opening one closes the other.
type Editing struct {
	Surface Surface
	ID      int64
}

func (e Editing) Patching(id int64) bool  { return e.Surface == PatchSurface && e.ID == id }
func (e Editing) Replacing(id int64) bool { return e.Surface == ReplaceSurface && e.ID == id }

// View is a copy of the workspace taken for rendering.
type View struct {
	Filter   Filter
	State    State
	Err      string
	Items    []Record
	HasNext  bool
	HasPrev  bool
	Editing  Editing
	Busy     map[int64]bool
	Creating bool
}

type Option func(*Workspace)

func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

func WithEvents(s activity.Sink) Option {
	return func(w *Workspace) { w.events = s }
}

// Workspace owns one seller's in-memory product collection. All state
// changes go through its methods; flows get records by value.
//
// The lock is never held across an API call. Each flow takes it to prepare,
// releases it for the request and takes it again to apply the result.
type Workspace struct {
	mu     sync.Mutex
	seller string
	api    API
	events activity.Sink
	now    func() time.Time

	filter      Filter
	list        List
	requested   string
	editing     Editing
	busy        map[int64]bool
	creating    bool
	lastLocalID int64
}

func NewWorkspace(seller string, api API, opts ...Option) *Workspace {
	w := &Workspace{
		seller: seller,
		api:    api,
		events: activity.Nop{},
		now:    time.Now,
		filter: NewFilter(),
		list:   List{state: Idle},
		busy:   map[int64]bool{},
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Workspace) Seller() string { return w.seller }

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	busy := make(map[int64]bool, len(w.busy))
	for id := range w.busy {
		busy[id] = true
	}
	return View{
		Filter:   w.filter,
		State:    w.list.State(),
		Err:      w.list.Err(),
		Items:    w.list.Items(),
		HasNext:  w.list.HasNext(),
		HasPrev:  w.filter.Offset() > 0,
		Editing:  w.editing,
		Busy:     busy,
		Creating: w.creating,
	}
}

func (w *Workspace) Filter() Filter {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter
}

func (w *Workspace) SetQuery(q string) { w.withFilter(func(f *Filter) { f.SetQ(q) }) }

func (w *Workspace) SetLimit(n int) { w.withFilter(func(f *Filter) { f.SetLimit(n) }) }

func (w *Workspace) ToggleStatus(s sellerapi.Status) {
	w.withFilter(func(f *Filter) { f.ToggleStatus(s) })
}

func (w *Workspace) SetStatuses(list []sellerapi.Status) {
	w.withFilter(func(f *Filter) { f.SetStatuses(list) })
}

func (w *Workspace) NextPage() { w.withFilter(func(f *Filter) { f.Next() }) }

func (w *Workspace) PrevPage() { w.withFilter(func(f *Filter) { f.Prev() }) }

func (w *Workspace) withFilter(fn func(*Filter)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(&w.filter)
}

// NeedsLoad reports whether the visible list was fetched for a different
// filter than the current one.
func (w *Workspace) NeedsLoad() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.list.State() == Idle || w.requested != w.filter.Query().Encode()
}

// EnsureLoaded fetches only when the filter changed since the last fetch.
func (w *Workspace) EnsureLoaded(ctx context.Context) bool {
	if !w.NeedsLoad() {
		return false
	}
	return w.Refresh(ctx)
}

// Refresh fetches the current filter and reports whether the result was
// applied. If another Refresh started meanwhile, this result is dropped.
func (w *Workspace) Refresh(ctx context.Context) bool {
	w.mu.Lock()
	q := w.filter.Query()
	t := w.list.Begin(w.filter.Limit())
	w.requested = q.Encode()
	w.mu.Unlock()

	items, err := w.api.ListProducts(ctx, q)

	w.mu.Lock()
	defer w.mu.Unlock()
	applied := w.list.Resolve(t, items, err)
	if applied && w.editing.Surface != NoSurface {
		if _, ok := w.list.find(w.editing.ID); !ok {
			w.editing = Editing{}
		}
	}
	return applied
}

func (w *Workspace) Record(id int64) (Record, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.list.find(id)
}

// StartEdit opens the inline editor on id, closing any other editor and
// any open replace form.
func (w *Workspace) StartEdit(id int64) (Record, error) {
	return w.open(PatchSurface, id)
}

// StartReplace opens the full replace form on id, closing any inline editor.
func (w *Workspace) StartReplace(id int64) (Record, error) {
	return w.open(ReplaceSurface, id)
}

func (w *Workspace) open(s Surface, id int64) (Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec, ok := w.list.find(id)
	if !ok {
		return Record{}, ErrNotFound
	}
	w.editing = Editing{Surface: s, ID: id}
	return rec, nil
}

func (w *Workspace) CancelEdit() { w.close(PatchSurface) }

func (w *Workspace) CloseReplace() { w.close(ReplaceSurface) }

func (w *Workspace) close(s Surface) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.editing.Surface == s {
		w.editing = Editing{}
	}
}

// SavePatch applies the inline edit optimistically and sends only the
// changed fields. If the API call fails the edit still closes and the
// optimistic value stays, marked Failed; the error is an *UnsyncedError.
// Validation errors keep the editor open and send nothing.
func (w *Workspace) SavePatch(ctx context.Context, id int64, d PatchDraft) (Record, error) {
	w.mu.Lock()
	if !w.editing.Patching(id) {
		w.mu.Unlock()
		return Record{}, ErrNotEditing
	}
	if w.busy[id] {
		w.mu.Unlock()
		return Record{}, ErrBusy
	}
	rec, ok := w.list.find(id)
	if !ok {
		w.editing = Editing{}
		w.mu.Unlock()
		return Record{}, ErrNotFound
	}
	payload, err := d.Diff(rec.Product)
	if err != nil {
		w.mu.Unlock()
		return rec, err
	}
	if payload.Empty() {
		w.editing = Editing{}
		w.mu.Unlock()
		return rec, nil
	}

	optimistic := rec
	optimistic.Product = applyPatch(rec.Product, payload)
	if rec.Sync == Local {
		// The API has never seen this record; the edit stays local.
		w.list.replace(id, optimistic)
		w.editing = Editing{}
		w.mu.Unlock()
		return optimistic, nil
	}
	optimistic.Sync, optimistic.SyncError = Pending, ""
	w.list.replace(id, optimistic)
	w.busy[id] = true
	w.mu.Unlock()

	updated, apiErr := w.api.PatchProduct(ctx, id, payload)

	w.mu.Lock()
	delete(w.busy, id)
	if w.editing.Patching(id) {
		w.editing = Editing{}
	}
	var result Record
	if apiErr != nil {
		result = optimistic
		result.Sync, result.SyncError = Failed, describe(apiErr)
	} else {
		result = Record{Product: updated, Sync: Synced}
	}
	w.list.replace(id, result)
	w.mu.Unlock()

	if apiErr != nil {
		w.emit(ctx, activity.PatchFailed, result)
		return result, &UnsyncedError{Record: result, Err: apiErr}
	}
	w.emit(ctx, activity.Patched, result)
	return result, nil
}

// Replace validates the form, merges it into the current record
// optimistically and sends the full payload with PUT. Fields PUT does not
// carry keep their local values until the server answers. Failure handling
// matches SavePatch.
func (w *Workspace) Replace(ctx context.Context, id int64, f ReplaceForm) (Record, error) {
	payload, err := f.Payload()
	if err != nil {
		return Record{}, err
	}

	w.mu.Lock()
	if !w.editing.Replacing(id) {
		w.mu.Unlock()
		return Record{}, ErrNotEditing
	}
	if w.busy[id] {
		w.mu.Unlock()
		return Record{}, ErrBusy
	}
	rec, ok := w.list.find(id)
	if !ok {
		w.editing = Editing{}
		w.mu.Unlock()
		return Record{}, ErrNotFound
	}

	optimistic := rec
	optimistic.Product = applyReplace(rec.Product, payload)
	if rec.Sync == Local {
		w.list.replace(id, optimistic)
		w.editing = Editing{}
		w.mu.Unlock()
		return optimistic, nil
	}
	optimistic.Sync, optimistic.SyncError = Pending, ""
	w.list.replace(id, optimistic)
	w.busy[id] = true
	w.mu.Unlock()

	updated, apiErr := w.api.ReplaceProduct(ctx, id, payload)

	w.mu.Lock()
	delete(w.busy, id)
	if w.editing.Replacing(id) {
		w.editing = Editing{}
	}
	var result Record
	if apiErr != nil {
		result = optimistic
		result.Sync, result.SyncError = Failed, describe(apiErr)
	} else {
		result = Record{Product: updated, Sync: Synced}
	}
	w.list.replace(id, result)
	w.mu.Unlock()

	if apiErr != nil {
		w.emit(ctx, activity.ReplaceFailed, result)
		return result, &UnsyncedError{Record: result, Err: apiErr}
	}
	w.emit(ctx, activity.Replaced, result)
	return result, nil
}

// Create validates and submits the form. On success the server record goes
// to the top of the list. On failure a Local placeholder is pinned instead
// and the error is an *UnsyncedError carrying it.
func (w *Workspace) Create(ctx context.Context, f CreateForm) (Record, error) {
	payload, err := f.Payload()
	if err != nil {
		return Record{}, err
	}

	w.mu.Lock()
	if w.creating {
		w.mu.Unlock()
		return Record{}, ErrBusy
	}
	w.creating = true
	w.mu.Unlock()

	created, apiErr := w.api.CreateProduct(ctx, payload)

	w.mu.Lock()
	w.creating = false
	var rec Record
	if apiErr != nil {
		w.lastLocalID = localID(w.now(), w.lastLocalID)
		rec = placeholder(w.lastLocalID, payload, apiErr)
		w.list.pin(rec)
	} else {
		rec = Record{Product: created, Sync: Synced}
		w.list.prepend(rec)
	}
	w.mu.Unlock()

	if apiErr != nil {
		w.emit(ctx, activity.CreatedLocal, rec)
		return rec, &UnsyncedError{Record: rec, Err: apiErr}
	}
	w.emit(ctx, activity.Created, rec)
	return rec, nil
}

// UploadImage sends a file to the API and appends the returned URL to the
// record. Local placeholders cannot take images.
func (w *Workspace) UploadImage(ctx context.Context, id int64, filename string, r io.Reader) (Record, error) {
	w.mu.Lock()
	rec, ok := w.list.find(id)
	switch {
	case !ok:
		w.mu.Unlock()
		return Record{}, ErrNotFound
	case rec.Sync == Local:
		w.mu.Unlock()
		return rec, ErrLocalOnly
	case w.busy[id]:
		w.mu.Unlock()
		return rec, ErrBusy
	}
	w.busy[id] = true
	w.mu.Unlock()

	img, err := w.api.UploadProductImage(ctx, id, filename, r)

	w.mu.Lock()
	delete(w.busy, id)
	if err != nil {
		w.mu.Unlock()
		return rec, err
	}
	if cur, ok := w.list.find(id); ok {
		cur.Images = append(append([]string(nil), cur.Images...), img.URL)
		w.list.replace(id, cur)
		rec = cur
	}
	w.mu.Unlock()

	w.emit(ctx, activity.ImageUploaded, rec)
	return rec, nil
}

func (w *Workspace) emit(ctx context.Context, kind activity.Kind, r Record) {
	w.events.Emit(ctx, activity.Event{
		Kind:      kind,
		Seller:    w.seller,
		ProductID: r.ID,
		Title:     r.Title,
		Sync:      string(r.Sync),
		Error:     r.SyncError,
		At:        w.now(),
	})
}
