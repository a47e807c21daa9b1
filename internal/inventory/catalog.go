package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

type Catalog struct {
	writer *store.Writer
}

func NewCatalog(writer *store.Writer) *Catalog {
	return &Catalog{writer: writer}
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	snap, err := c.writer.Read(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Products, nil
}

// Get returns nil without error when the product does not exist.
func (c *Catalog) Get(ctx context.Context, productID string) (*domain.Product, error) {
	snap, err := c.writer.Read(ctx)
	if err != nil {
		return nil, err
	}
	return FindProduct(snap, productID), nil
}

func (c *Catalog) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	p.ProductID = uuid.New().String()
	p.Name = strings.TrimSpace(p.Name)
	if err := validate(p); err != nil {
		return nil, err
	}

	err := c.writer.Update(ctx, func(snap *domain.Snapshot) error {
		snap.Products = append(snap.Products, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (c *Catalog) Update(ctx context.Context, productID string, patch domain.ProductPatch) (*domain.Product, error) {
	var updated domain.Product

	err := c.writer.Update(ctx, func(snap *domain.Snapshot) error {
		current := FindProduct(snap, productID)
		if current == nil {
			return ErrProductNotFound
		}

		updated = apply(*current, patch)
		if err := validate(updated); err != nil {
			return err
		}

		ReplaceProducts(snap, []domain.Product{updated})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (c *Catalog) Delete(ctx context.Context, productID string) (*domain.Product, error) {
	var removed *domain.Product

	err := c.writer.Update(ctx, func(snap *domain.Snapshot) error {
		for i := range snap.Products {
			if snap.Products[i].ProductID == productID {
				p := snap.Products[i]
				removed = &p
				snap.Products = append(snap.Products[:i], snap.Products[i+1:]...)
				return nil
			}
		}
		return ErrProductNotFound
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

func apply(p domain.Product, patch domain.ProductPatch) domain.Product {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	return p
}

func validate(p domain.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	case p.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}
