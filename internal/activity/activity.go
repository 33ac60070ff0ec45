// Package activity records the outcome of every catalog mutation so that
// records left unsynced can be found later.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	Created       Kind = "created"
	CreatedLocal  Kind = "created_local"
	Patched       Kind = "patched"
	PatchFailed   Kind = "patch_failed"
	Replaced      Kind = "replaced"
	ReplaceFailed Kind = "replace_failed"
	ImageUploaded Kind = "image_uploaded"
)

type Event struct {
	Kind      Kind      `json:"kind"`
	Seller    string    `json:"seller"`
	ProductID int64     `json:"product_id"`
	Title     string    `json:"title"`
	Sync      string    `json:"sync"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Sink is best effort: a failing sink never fails the mutation.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

type LogSink struct {
	l *slog.Logger
}

func NewLogSink(l *slog.Logger) *LogSink { return &LogSink{l: l} }

func (s *LogSink) Emit(ctx context.Context, e Event) {
	level := slog.LevelInfo
	if e.Error != "" {
		level = slog.LevelWarn
	}
	s.l.LogAttrs(ctx, level, "catalog_activity",
		slog.String("kind", string(e.Kind)),
		slog.String("seller", e.Seller),
		slog.Int64("product_id", e.ProductID),
		slog.String("title", e.Title),
		slog.String("sync", e.Sync),
		slog.String("error", e.Error),
	)
}

type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

// Recorder keeps events in memory; tests use it.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Kind, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Kind)
	}
	return out
}
