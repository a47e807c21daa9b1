package store

import (
	"context"
	"sync"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Writer serializes read-modify-write spans against a Store within this
// process. Every component that mutates the document goes through the same
// Writer; cross-process safety comes from the store's own version check.
type Writer struct {
	Store
	mu sync.Mutex
}

func NewWriter(s Store) *Writer {
	return &Writer{Store: s}
}

func (w *Writer) Lock()   { w.mu.Lock() }
func (w *Writer) Unlock() { w.mu.Unlock() }

// Update reads the document, applies fn and writes the result. Nothing is
// written when fn fails.
func (w *Writer) Update(ctx context.Context, fn func(*domain.Snapshot) error) error {
	w.Lock()
	defer w.Unlock()

	snap, err := w.Read(ctx)
	if err != nil {
		return err
	}

	if err := fn(snap); err != nil {
		return err
	}

	return w.Write(ctx, snap)
}
