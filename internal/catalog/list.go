package catalog

import (
	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Loaded  State = "loaded"
	Errored State = "error"
)

// Ticket identifies one fetch. Only the newest ticket may change the list.
type Ticket struct {
	seq   uint64
	limit int
}

// List is the visible result set. Server rows are replaced wholesale on each
// applied fetch; local placeholders are pinned above them and survive
// refetches.
type List struct {
	state     State
	err       string
	server    []Record
	local     []Record
	seq       uint64
	pageLimit int
	pageLen   int
}

func (l *List) State() State { return l.state }
func (l *List) Err() string  { return l.err }

func (l *List) Begin(limit int) Ticket {
	l.seq++
	l.state = Loading
	return Ticket{seq: l.seq, limit: limit}
}

// Resolve applies a fetch result and reports whether it was applied. A
// response for a ticket older than the latest Begin is dropped.
func (l *List) Resolve(t Ticket, items []sellerapi.Product, err error) bool {
	if t.seq != l.seq {
		return false
	}
	l.pageLimit = t.limit
	if err != nil {
		l.state = Errored
		l.err = describe(err)
		l.server = nil
		l.pageLen = 0
		return true
	}
	l.server = make([]Record, 0, len(items))
	for _, p := range items {
		l.server = append(l.server, Record{Product: p, Sync: Synced})
	}
	l.pageLen = len(items)
	l.state = Loaded
	l.err = ""
	return true
}

// HasNext guesses: a page exactly as long as the limit may have more rows
// behind it. A full last page looks the same, so this can be wrong.
func (l *List) HasNext() bool {
	return l.state == Loaded && l.pageLimit > 0 && l.pageLen == l.pageLimit
}

func (l *List) Items() []Record {
	out := make([]Record, 0, len(l.local)+len(l.server))
	out = append(out, l.local...)
	return append(out, l.server...)
}

func (l *List) find(id int64) (Record, bool) {
	for _, set := range [][]Record{l.local, l.server} {
		for _, r := range set {
			if r.ID == id {
				return r, true
			}
		}
	}
	return Record{}, false
}

func (l *List) replace(id int64, rec Record) bool {
	for _, set := range [][]Record{l.local, l.server} {
		for i := range set {
			if set[i].ID == id {
				set[i] = rec
				return true
			}
		}
	}
	return false
}

func (l *List) prepend(rec Record) {
	l.server = append([]Record{rec}, l.server...)
}

func (l *List) pin(rec Record) {
	l.local = append([]Record{rec}, l.local...)
}
