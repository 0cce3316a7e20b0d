package projections

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	productStore "gymbios/internal/adapters/storage/product"
	"gymbios/internal/domain/product"
)

// StockLine is one product in the stock report.
type StockLine struct {
	Product      product.Product `json:"product"`
	CategoryName string          `json:"category_name"`
	Value        decimal.Decimal `json:"value"`
	LowStock     bool            `json:"low_stock"`
}

// StockReport values inventory at cost.
type StockReport struct {
	Lines         []StockLine     `json:"lines"`
	TotalUnits    int             `json:"total_units"`
	TotalValue    decimal.Decimal `json:"total_value"`
	LowStockCount int             `json:"low_stock_count"`
}

// StockReportDeps holds dependencies for QueryStockReport.
type StockReportDeps struct {
	ProductStore  ProductStore
	CategoryStore CategoryStore
}

// QueryStockReport lists every product with its stock value and reorder flag.
// PRE: deps stores are non-nil
// POST: TotalValue = sum of stock * cost price
func QueryStockReport(ctx context.Context, categoryID string, deps StockReportDeps) (StockReport, error) {
	products, err := deps.ProductStore.List(ctx, productStore.ListFilter{CategoryID: categoryID, Limit: storage.NoLimit})
	if err != nil {
		return StockReport{}, fmt.Errorf("list products: %w", err)
	}
	categories, err := deps.CategoryStore.List(ctx)
	if err != nil {
		return StockReport{}, fmt.Errorf("list categories: %w", err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	report := StockReport{Lines: make([]StockLine, 0, len(products)), TotalValue: decimal.Zero}
	for _, p := range products {
		line := StockLine{
			Product:      p,
			CategoryName: names[p.CategoryID],
			Value:        p.StockValue(),
			LowStock:     p.IsLowStock(),
		}
		report.Lines = append(report.Lines, line)
		report.TotalUnits += p.Stock
		report.TotalValue = report.TotalValue.Add(line.Value)
		if line.LowStock {
			report.LowStockCount++
		}
	}
	return report, nil
}
