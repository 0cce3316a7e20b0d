package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/purchase"
	"gymbios/internal/domain/purchaseorder"
	"gymbios/internal/domain/wastage"
)

// --- Purchases ---

// PurchaseStoreForCreate defines the store interface needed by CreatePurchase.
type PurchaseStoreForCreate interface {
	Save(ctx context.Context, p purchase.Purchase) error
}

// CreatePurchaseInput carries input for recording a completed purchase.
type CreatePurchaseInput struct {
	Purchase purchase.Purchase
	Actor    Actor
}

// CreatePurchaseDeps holds dependencies for CreatePurchase.
type CreatePurchaseDeps struct {
	PurchaseStore PurchaseStoreForCreate
	ProductStore  ProductStoreForStock
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteCreatePurchase records a purchase and adds its quantities to stock.
// PRE: at least one line; supplier set
// POST: totals derived server-side; stock incremented for every linked line
// INVARIANT: the purchase exists iff its stock movement was applied
func ExecuteCreatePurchase(ctx context.Context, input CreatePurchaseInput, deps CreatePurchaseDeps) (purchase.Purchase, error) {
	now := deps.Now()
	p := input.Purchase
	p.ID = deps.GenerateID()
	p.CreatedAt = now
	p.Supplier = strings.TrimSpace(p.Supplier)
	if strings.TrimSpace(p.InvoiceNo) == "" {
		p.InvoiceNo = documentNumber("PUR", now, p.ID)
	}
	if p.PurchaseDate == "" {
		p.PurchaseDate = dates.Today(now)
	} else if d := dates.Normalize(p.PurchaseDate); d != "" {
		p.PurchaseDate = d
	}

	items, err := fillItems(ctx, deps.ProductStore, p.Items, costPrice)
	if err != nil {
		return purchase.Purchase{}, err
	}
	p.Items = items
	p.ComputeTotals()
	if err := p.Validate(); err != nil {
		return purchase.Purchase{}, invalid(err)
	}

	deltas := stockDeltas(p.Items, 1)
	if err := moveStock(ctx, deps.ProductStore, deltas); err != nil {
		return purchase.Purchase{}, err
	}
	if err := deps.PurchaseStore.Save(ctx, p); err != nil {
		revertStock(ctx, deps.ProductStore, deltas)
		return purchase.Purchase{}, fmt.Errorf("save purchase: %w", err)
	}

	slog.Info("inventory_event", "event", "purchase_recorded", "purchase_id", p.ID, "lines", len(p.Items), "total", p.Total.String())
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       audit.ActionCreate,
		ResourceType: "purchase",
		ResourceID:   p.ID,
		Description:  p.InvoiceNo + " from " + p.Supplier,
	})
	return p, nil
}

// --- Purchase orders ---

// PurchaseOrderStore defines the store interface needed by the purchase order orchestrators.
type PurchaseOrderStore interface {
	GetByID(ctx context.Context, id string) (purchaseorder.PurchaseOrder, error)
	Save(ctx context.Context, po purchaseorder.PurchaseOrder) error
	ClaimReceipt(ctx context.Context, id, purchaseID string) error
	ReleaseReceipt(ctx context.Context, id, purchaseID, status string) error
}

// saveOrder maps a write lost to a concurrent close onto ErrConflict.
func saveOrder(ctx context.Context, store PurchaseOrderStore, po purchaseorder.PurchaseOrder) error {
	err := store.Save(ctx, po)
	if errors.Is(err, purchaseorder.ErrInvalidTransition) {
		return conflict(err)
	}
	if err != nil {
		return fmt.Errorf("save purchase order: %w", err)
	}
	return nil
}

// SavePurchaseOrderInput carries input for creating (empty ID) or editing an order.
type SavePurchaseOrderInput struct {
	Order purchaseorder.PurchaseOrder
	Actor Actor
}

// PurchaseOrderDeps holds dependencies shared by the purchase order orchestrators.
type PurchaseOrderDeps struct {
	OrderStore    PurchaseOrderStore
	PurchaseStore PurchaseStoreForCreate
	ProductStore  ProductStoreForStock
	Audit         AuditRecorder
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteSavePurchaseOrder creates a pending order or edits one that is still pending.
// POST: Total is the sum of line subtotals; status is unchanged on edit
func ExecuteSavePurchaseOrder(ctx context.Context, input SavePurchaseOrderInput, deps PurchaseOrderDeps) (purchaseorder.PurchaseOrder, error) {
	now := deps.Now()
	po := input.Order
	po.Supplier = strings.TrimSpace(po.Supplier)
	creating := po.ID == ""
	if creating {
		po.ID = deps.GenerateID()
		po.CreatedAt = now
		po.Status = purchaseorder.StatusPending
		po.PurchaseID = ""
		if strings.TrimSpace(po.PONumber) == "" {
			po.PONumber = documentNumber("PO", now, po.ID)
		}
	} else {
		existing, err := deps.OrderStore.GetByID(ctx, po.ID)
		if err != nil {
			return purchaseorder.PurchaseOrder{}, err
		}
		if !existing.IsEditable() {
			return purchaseorder.PurchaseOrder{}, conflict(purchaseorder.ErrNotEditable)
		}
		po.CreatedAt = existing.CreatedAt
		po.Status = existing.Status
		po.PurchaseID = existing.PurchaseID
		if strings.TrimSpace(po.PONumber) == "" {
			po.PONumber = existing.PONumber
		}
	}
	if po.OrderDate == "" {
		po.OrderDate = dates.Today(now)
	}

	items, err := fillItems(ctx, deps.ProductStore, po.Items, costPrice)
	if err != nil {
		return purchaseorder.PurchaseOrder{}, err
	}
	po.Items = items
	po.ComputeTotals()
	if err := po.Validate(); err != nil {
		return purchaseorder.PurchaseOrder{}, invalid(err)
	}
	if err := saveOrder(ctx, deps.OrderStore, po); err != nil {
		return purchaseorder.PurchaseOrder{}, err
	}
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       createOrUpdate(creating),
		ResourceType: "purchase_order",
		ResourceID:   po.ID,
		Description:  po.PONumber + " for " + po.Supplier,
	})
	return po, nil
}

// Purchase order transitions accepted by ExecuteTransitionPurchaseOrder.
const (
	TransitionApprove = "approve"
	TransitionCancel  = "cancel"
)

// TransitionPurchaseOrderInput names the order and the transition to apply.
type TransitionPurchaseOrderInput struct {
	OrderID    string
	Transition string
	Actor      Actor
}

// ExecuteTransitionPurchaseOrder approves or cancels an order.
// PRE: Transition is approve or cancel
// POST: Status changed, or ErrConflict when the order is not in a source state
func ExecuteTransitionPurchaseOrder(ctx context.Context, input TransitionPurchaseOrderInput, deps PurchaseOrderDeps) (purchaseorder.PurchaseOrder, error) {
	po, err := deps.OrderStore.GetByID(ctx, input.OrderID)
	if err != nil {
		return purchaseorder.PurchaseOrder{}, err
	}

	var action audit.Action
	switch input.Transition {
	case TransitionApprove:
		err, action = po.Approve(), audit.ActionApprove
	case TransitionCancel:
		err, action = po.Cancel(), audit.ActionCancel
	default:
		return purchaseorder.PurchaseOrder{}, invalid(fmt.Errorf("unknown transition %q", input.Transition))
	}
	if err != nil {
		return purchaseorder.PurchaseOrder{}, conflict(err)
	}
	if err := saveOrder(ctx, deps.OrderStore, po); err != nil {
		return purchaseorder.PurchaseOrder{}, err
	}
	slog.Info("inventory_event", "event", "purchase_order_"+input.Transition, "order_id", po.ID)
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     audit.CategoryInventory,
		Action:       action,
		ResourceType: "purchase_order",
		ResourceID:   po.ID,
		Description:  po.PONumber,
	})
	return po, nil
}

// ReceivePurchaseOrderInput carries the invoice details captured on receipt.
type ReceivePurchaseOrderInput struct {
	OrderID      string
	InvoiceNo    string
	PurchaseDate string
	TaxPercent   decimal.Decimal
	Discount     decimal.Decimal
	Actor        Actor
}

// ReceivePurchaseOrderResult pairs the received order with the purchase it produced.
type ReceivePurchaseOrderResult struct {
	Order    purchaseorder.PurchaseOrder `json:"order"`
	Purchase purchase.Purchase           `json:"purchase"`
}

// ExecuteReceivePurchaseOrder marks an order received and records the matching purchase,
// which adds the ordered quantities to stock. The order is claimed before any stock
// moves, so concurrent receipts of one order produce exactly one purchase.
// PRE: order is pending or approved
// POST: a Purchase linked to the order exists; order status is received
func ExecuteReceivePurchaseOrder(ctx context.Context, input ReceivePurchaseOrderInput, deps PurchaseOrderDeps) (ReceivePurchaseOrderResult, error) {
	po, err := deps.OrderStore.GetByID(ctx, input.OrderID)
	if err != nil {
		return ReceivePurchaseOrderResult{}, err
	}
	if po.Status != purchaseorder.StatusPending && po.Status != purchaseorder.StatusApproved {
		return ReceivePurchaseOrderResult{}, conflict(purchaseorder.ErrInvalidTransition)
	}

	purchaseID := deps.GenerateID()
	if err := deps.OrderStore.ClaimReceipt(ctx, po.ID, purchaseID); err != nil {
		if errors.Is(err, purchaseorder.ErrInvalidTransition) {
			return ReceivePurchaseOrderResult{}, conflict(err)
		}
		return ReceivePurchaseOrderResult{}, fmt.Errorf("claim purchase order: %w", err)
	}
	openStatus := po.Status

	p, err := ExecuteCreatePurchase(ctx, CreatePurchaseInput{
		Purchase: purchase.Purchase{
			InvoiceNo:       input.InvoiceNo,
			Supplier:        po.Supplier,
			PurchaseDate:    input.PurchaseDate,
			Items:           po.Items,
			TaxPercent:      input.TaxPercent,
			Discount:        input.Discount,
			PurchaseOrderID: po.ID,
			Notes:           "Received against " + po.PONumber,
		},
		Actor: input.Actor,
	}, CreatePurchaseDeps{
		PurchaseStore: deps.PurchaseStore,
		ProductStore:  deps.ProductStore,
		Audit:         deps.Audit,
		GenerateID:    func() string { return purchaseID },
		Now:           deps.Now,
	})
	if err != nil {
		if rerr := deps.OrderStore.ReleaseReceipt(ctx, po.ID, purchaseID, openStatus); rerr != nil {
			slog.Error("inventory_event", "event", "purchase_order_release_failed", "order_id", po.ID, "purchase_id", purchaseID, "error", rerr.Error())
		}
		return ReceivePurchaseOrderResult{}, err
	}

	if err := po.Receive(p.ID); err != nil {
		return ReceivePurchaseOrderResult{}, conflict(err)
	}
	slog.Info("inventory_event", "event", "purchase_order_received", "order_id", po.ID, "purchase_id", p.ID)
	recordAudit(ctx, deps.Audit, input.Actor, deps.Now(), auditEntry{
		Category:     audit.CategoryInventory,
		Action:       audit.ActionReceive,
		ResourceType: "purchase_order",
		ResourceID:   po.ID,
		Description:  po.PONumber + " received as " + p.InvoiceNo,
	})
	return ReceivePurchaseOrderResult{Order: po, Purchase: p}, nil
}

// --- Wastage and return vouchers ---

// VoucherStoreForCreate defines the store interface needed by CreateVoucher.
type VoucherStoreForCreate interface {
	Save(ctx context.Context, v wastage.Voucher) error
}

// CreateVoucherInput carries input for writing off or returning stock.
type CreateVoucherInput struct {
	Voucher wastage.Voucher
	Actor   Actor
}

// CreateVoucherDeps holds dependencies for CreateVoucher.
type CreateVoucherDeps struct {
	VoucherStore VoucherStoreForCreate
	ProductStore ProductStoreForStock
	Audit        AuditRecorder
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateVoucher records a wastage or return voucher and removes its quantities from stock.
// PRE: reason set; at least one line
// POST: stock decremented for every linked line, or product.ErrInsufficientStock with nothing written
func ExecuteCreateVoucher(ctx context.Context, input CreateVoucherInput, deps CreateVoucherDeps) (wastage.Voucher, error) {
	now := deps.Now()
	v := input.Voucher
	v.ID = deps.GenerateID()
	v.CreatedAt = now
	v.Reason = strings.TrimSpace(v.Reason)
	if v.Type == "" {
		v.Type = wastage.TypeWastage
	}
	if strings.TrimSpace(v.VoucherNo) == "" {
		prefix := "WST"
		if v.Type == wastage.TypeReturn {
			prefix = "RTN"
		}
		v.VoucherNo = documentNumber(prefix, now, v.ID)
	}
	if v.VoucherDate == "" {
		v.VoucherDate = dates.Today(now)
	}

	items, err := fillItems(ctx, deps.ProductStore, v.Items, costPrice)
	if err != nil {
		return wastage.Voucher{}, err
	}
	v.Items = items
	v.ComputeTotals()
	if err := v.Validate(); err != nil {
		return wastage.Voucher{}, invalid(err)
	}

	deltas := stockDeltas(v.Items, -1)
	if err := moveStock(ctx, deps.ProductStore, deltas); err != nil {
		return wastage.Voucher{}, err
	}
	if err := deps.VoucherStore.Save(ctx, v); err != nil {
		revertStock(ctx, deps.ProductStore, deltas)
		return wastage.Voucher{}, fmt.Errorf("save voucher: %w", err)
	}

	slog.Info("inventory_event", "event", "voucher_recorded", "voucher_id", v.ID, "type", v.Type, "lines", len(v.Items))
	recordAudit(ctx, deps.Audit, input.Actor, now, auditEntry{
		Category:     audit.CategoryInventory,
		Action:       audit.ActionCreate,
		ResourceType: "voucher",
		ResourceID:   v.ID,
		Description:  v.VoucherNo + ": " + v.Reason,
	})
	return v, nil
}
