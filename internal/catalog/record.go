package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/penababayev/zakaz-zenan-zahmeti/internal/sellerapi"
)

// SyncState tells whether the panel's copy of a record matches the API.
type SyncState string

const (
	Synced SyncState = "synced"
	// Pending: optimistic value applied, request in flight.
	Pending SyncState = "pending"
	// Failed: the request failed and the optimistic value was kept.
	Failed SyncState = "failed"
	// Local: placeholder made up while the API was unreachable. It was
	// never persisted.
	Local SyncState = "local"
)

type Record struct {
	sellerapi.Product
	Sync      SyncState
	SyncError string
}

func (r Record) Unsynced() bool { return r.Sync == Failed || r.Sync == Local }

var (
	ErrNotFound   = errors.New("catalog: product not in workspace")
	ErrBusy       = errors.New("catalog: a request for this product is already in flight")
	ErrNotEditing = errors.New("catalog: product is not open for editing")
	ErrLocalOnly  = errors.New("catalog: product exists only in this session")
)

// UnsyncedError reports a mutation that the API did not confirm. The
// optimistic (or placeholder) record was kept and is carried here.
type UnsyncedError struct {
	Record Record
	Err    error
}

func (e *UnsyncedError) Error() string {
	return fmt.Sprintf("catalog: product %d kept locally: %v", e.Record.ID, e.Err)
}

func (e *UnsyncedError) Unwrap() error { return e.Err }

func describe(err error) string {
	var ae *sellerapi.Error
	if errors.As(err, &ae) && strings.TrimSpace(ae.Body) != "" {
		return ae.Body
	}
	return err.Error()
}
