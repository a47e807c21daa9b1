package inventory

import "github.com/joao-fontenele/storefront/internal/domain"

// FindProduct looks productID up in snap and returns a copy. Callers that
// change the copy must write it back themselves.
func FindProduct(snap *domain.Snapshot, productID string) *domain.Product {
	for i := range snap.Products {
		if snap.Products[i].ProductID == productID {
			p := snap.Products[i]
			return &p
		}
	}
	return nil
}

// ReplaceProducts swaps in updated versions of products, matched by id.
// Updates without a matching product are ignored.
func ReplaceProducts(snap *domain.Snapshot, updated []domain.Product) {
	byID := make(map[string]domain.Product, len(updated))
	for _, p := range updated {
		byID[p.ProductID] = p
	}
	for i := range snap.Products {
		if p, ok := byID[snap.Products[i].ProductID]; ok {
			snap.Products[i] = p
		}
	}
}
