// Package store persists the storefront document. Every write replaces the
// whole document; there are no partial updates.
package store

import (
	"context"
	"errors"

	"github.com/joao-fontenele/storefront/internal/domain"
)

var (
	ErrUnavailable     = errors.New("store unavailable")
	ErrVersionConflict = errors.New("document was modified concurrently")
)

type Store interface {
	// Read loads the latest document. Each call returns a snapshot the caller
	// owns and may mutate freely.
	Read(ctx context.Context) (*domain.Snapshot, error)
	// Write persists snap in full, replacing prior content.
	Write(ctx context.Context, snap *domain.Snapshot) error
}

// normalize fills in absent collections. Users is left nil when the document
// has no user collection, so callers can tell a damaged document from an
// empty one.
func normalize(snap *domain.Snapshot) *domain.Snapshot {
	if snap.Products == nil {
		snap.Products = []domain.Product{}
	}
	if snap.DiscountCodes == nil {
		snap.DiscountCodes = []domain.DiscountCode{}
	}
	for i := range snap.Users {
		if snap.Users[i].Orders == nil {
			snap.Users[i].Orders = []domain.Order{}
		}
	}
	return snap
}
