package catalog

import (
	"strings"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

const DefaultLimit = 50

// PageSizes offered in the limit selector.
var PageSizes = []int{10, 20, 50, 100}

// Filter is the list query state. Changing the text, the status set or the
// page size moves back to the first page.
type Filter struct {
	q        string
	statuses []sellerapi.Status
	limit    int
	offset   int
}

func NewFilter() Filter {
	return Filter{limit: DefaultLimit}
}

func (f Filter) Q() string   { return f.q }
func (f Filter) Limit() int  { return f.limit }
func (f Filter) Offset() int { return f.offset }

func (f Filter) Statuses() []sellerapi.Status {
	return append([]sellerapi.Status(nil), f.statuses...)
}

func (f Filter) HasStatus(s sellerapi.Status) bool {
	return f.indexOf(s) >= 0
}

func (f *Filter) SetQ(q string) {
	if q == f.q {
		return
	}
	f.q = q
	f.offset = 0
}

func (f *Filter) SetLimit(n int) {
	if n <= 0 {
		n = DefaultLimit
	}
	if n == f.limit {
		return
	}
	f.limit = n
	f.offset = 0
}

// ToggleStatus adds s at the end of the set or removes it. An empty set
// means no status filtering at all.
func (f *Filter) ToggleStatus(s sellerapi.Status) {
	if i := f.indexOf(s); i >= 0 {
		f.statuses = append(f.statuses[:i:i], f.statuses[i+1:]...)
	} else {
		f.statuses = append(f.statuses, s)
	}
	f.offset = 0
}

// SetStatuses replaces the set, dropping blanks and duplicates. The page
// resets only if membership changed.
func (f *Filter) SetStatuses(list []sellerapi.Status) {
	var next []sellerapi.Status
	seen := map[sellerapi.Status]bool{}
	for _, s := range list {
		s = sellerapi.Status(strings.TrimSpace(string(s)))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		next = append(next, s)
	}
	if sameMembers(next, f.statuses) {
		return
	}
	f.statuses = next
	f.offset = 0
}

func (f *Filter) Next() { f.offset += f.limit }

func (f *Filter) Prev() { f.offset = max(0, f.offset-f.limit) }

func (f Filter) Query() sellerapi.Query {
	return sellerapi.Query{
		Q:        strings.TrimSpace(f.q),
		Statuses: f.Statuses(),
		Limit:    sellerapi.IntPtr(f.limit),
		Offset:   sellerapi.IntPtr(f.offset),
	}
}

func (f Filter) indexOf(s sellerapi.Status) int {
	for i, v := range f.statuses {
		if v == s {
			return i
		}
	}
	return -1
}

func sameMembers(a, b []sellerapi.Status) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[sellerapi.Status]bool, len(a))
	for _, s := range a {
		in[s] = true
	}
	for _, s := range b {
		if !in[s] {
			return false
		}
	}
	return true
}
