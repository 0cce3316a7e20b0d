package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/pos"
)

// SaleStoreForCreate defines the store interface needed by CreateSale.
type SaleStoreForCreate interface {
	Save(ctx context.Context, s pos.Sale) error
}

// MemberLookup resolves a member by ID.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// CreateSaleInput carries a counter sale.
type CreateSaleInput struct {
	Sale  pos.Sale
	Actor Actor
}

// CreateSaleDeps holds dependencies for CreateSale.
type CreateSaleDeps struct {
	SaleStore    SaleStoreForCreate
	ProductStore ProductStoreForStock
	MemberStore  MemberLookup
	Audit        AuditRecorder
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateSale records a counter sale and removes the sold quantities from stock.
// Lines without a price are charged the product's sale price.
// PRE: at least one line, every line linked to a product
// POST: stock decremented, or product.ErrInsufficientStock with nothing written
func ExecuteCreateSale(ctx context.Context, input CreateSaleInput, deps CreateSaleDeps) (pos.Sale, error) {
	now := deps.Now()
	s := input.Sale
	s.ID = deps.GenerateID()
	s.SoldAt = now
	s.ReceiptNo = documentNumber("RCP", now, s.ID)
	s.CustomerName = strings.TrimSpace(s.CustomerName)
	if s.PaymentMode == "" {
		s.PaymentMode = pos.ModeCash
	}

	if s.MemberID != "" && deps.MemberStore != nil {
		m, err := deps.MemberStore.GetByID(ctx, s.MemberID)
		if err != nil {
			return pos.Sale{}, invalid(fmt.Errorf("member %s: %w", s.MemberID, err))
		}
		if s.CustomerName == "" {
			s.CustomerName = m.Name
		}
	}
	if s.CustomerName == "" {
		s.CustomerName = "Walk-in"
	}

	items, err := fillItems(ctx, deps.ProductStore, s.Items, salePrice)
	if err != nil {
		return pos.Sale{}, err
	}
	s.Items = items
	s.ComputeTotals()
	if err := s.Validate(); err != nil {
		return pos.Sale{}, invalid(err)
	}

	deltas := stockDeltas(s.Items, -1)
	if err := moveStock(ctx, deps.ProductStore, deltas); err != nil {
		return pos.Sale{}, err
	}
	if err := deps.SaleStore.Save(ctx, s); err != nil {
		revertStock(ctx, deps.ProductStore, deltas)
		return pos.Sale{}, fmt.Errorf("save sale: %w", err)
	}

	slog.Info("pos_event", "event", "sale_recorded", "sale_id", s.ID, "total", s.Total.String(), "mode", s.PaymentMode)
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       audit.ActionCreate,
		ResourceType: "sale",
		ResourceID:   s.ID,
		Description:  s.ReceiptNo + " " + s.Total.StringFixed(2),
	})
	return s, nil
}
