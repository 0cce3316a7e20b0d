package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	"gymbios/internal/domain/lineitem"
	"gymbios/internal/domain/product"
)

// ProductStoreForStock defines the store interface needed to price lines and move stock.
type ProductStoreForStock interface {
	GetByID(ctx context.Context, id string) (product.Product, error)
	// ApplyMovements adjusts every product atomically; stock never goes negative.
	ApplyMovements(ctx context.Context, deltas map[string]int) error
}

// fillItems completes linked lines from the catalogue: the product name when
// missing, and the unit price from priceOf when the line carries none.
// PRE: items have not been normalized yet
// POST: every linked line names an existing product
func fillItems(ctx context.Context, products ProductStoreForStock, items []lineitem.Item, priceOf func(product.Product) decimal.Decimal) ([]lineitem.Item, error) {
	out := make([]lineitem.Item, len(items))
	for idx, it := range items {
		if it.ProductID != "" {
			p, err := products.GetByID(ctx, it.ProductID)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return nil, invalid(fmt.Errorf("item %d: unknown product %s", idx+1, it.ProductID))
				}
				return nil, err
			}
			if it.ProductName == "" {
				it.ProductName = p.Name
			}
			if it.UnitPrice.IsZero() && priceOf != nil {
				it.UnitPrice = priceOf(p)
			}
		}
		out[idx] = it
	}
	return out, nil
}

func costPrice(p product.Product) decimal.Decimal { return p.CostPrice }

func salePrice(p product.Product) decimal.Decimal { return p.SalePrice }

// stockDeltas turns line quantities into signed stock movements.
func stockDeltas(items []lineitem.Item, sign int) map[string]int {
	deltas := lineitem.Quantities(items)
	for id, q := range deltas {
		deltas[id] = q * sign
	}
	return deltas
}

// moveStock applies deltas. A shortfall surfaces as product.ErrInsufficientStock.
func moveStock(ctx context.Context, products ProductStoreForStock, deltas map[string]int) error {
	if len(deltas) == 0 {
		return nil
	}
	if err := products.ApplyMovements(ctx, deltas); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return invalid(err)
		}
		return err
	}
	return nil
}

// revertStock undoes a movement whose record could not be saved.
func revertStock(ctx context.Context, products ProductStoreForStock, deltas map[string]int) {
	if len(deltas) == 0 {
		return
	}
	undo := make(map[string]int, len(deltas))
	for id, d := range deltas {
		undo[id] = -d
	}
	if err := products.ApplyMovements(ctx, undo); err != nil {
		slog.Error("stock_revert_failed", "products", len(undo), "error", err.Error())
	}
}
