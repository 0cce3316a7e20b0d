package lineitem

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNoItems         = errors.New("at least one item is required")
	ErrInvalidQuantity = errors.New("item quantity must be greater than zero")
	ErrNegativePrice   = errors.New("item unit price cannot be negative")
	ErrMissingProduct  = errors.New("item must reference a product or carry a name")
)

// Item is a single product line on a purchase, purchase order, voucher or sale.
type Item struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Validate checks a single line.
// PRE: none
// POST: Returns nil if the line can be priced
func (i *Item) Validate() error {
	if strings.TrimSpace(i.ProductID) == "" && strings.TrimSpace(i.ProductName) == "" {
		return ErrMissingProduct
	}
	if i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Validate checks every line and requires at least one.
func Validate(items []Item) error {
	if len(items) == 0 {
		return ErrNoItems
	}
	for idx := range items {
		if err := items[idx].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx+1, err)
		}
	}
	return nil
}

// Normalize recomputes every subtotal as quantity x unit price.
// Client-supplied subtotals are discarded.
// POST: items[i].Subtotal == Quantity * UnitPrice, rounded to 2 places
func Normalize(items []Item) []Item {
	out := make([]Item, len(items))
	for idx, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.ProductName = strings.TrimSpace(it.ProductName)
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
		out[idx] = it
	}
	return out
}

// Total sums the subtotals.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// Quantities returns the total quantity per product ID, skipping unlinked lines.
func Quantities(items []Item) map[string]int {
	q := make(map[string]int)
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		q[it.ProductID] += it.Quantity
	}
	return q
}

// Encode serializes items for the items_json column.
func Encode(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses the items_json column. An empty column decodes to no items.
func Decode(s string) ([]Item, error) {
	if strings.TrimSpace(s) == "" {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
