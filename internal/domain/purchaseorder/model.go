package purchaseorder

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gymbios/internal/domain/dates"
	"gymbios/internal/domain/lineitem"
)

// Status constants for the purchase order lifecycle.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusReceived  = "received"
	StatusCancelled = "cancelled"
)

// Domain errors
var (
	ErrEmptySupplier     = errors.New("supplier cannot be empty")
	ErrInvalidOrderDate  = errors.New("order date must be YYYY-MM-DD")
	ErrInvalidExpected   = errors.New("expected date must be YYYY-MM-DD")
	ErrInvalidStatus     = errors.New("invalid purchase order status")
	ErrInvalidTransition = errors.New("invalid purchase order status transition")
	ErrNotEditable       = errors.New("only pending purchase orders can be edited")
)

// PurchaseOrder is a commitment to buy from a supplier, prior to a Purchase.
type PurchaseOrder struct {
	ID           string          `json:"id"`
	PONumber     string          `json:"po_number"`
	Supplier     string          `json:"supplier"`
	OrderDate    string          `json:"order_date"`
	ExpectedDate string          `json:"expected_date"`
	Status       string          `json:"status"`
	Items        []lineitem.Item `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
	PurchaseID   string          `json:"purchase_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Validate checks if the PurchaseOrder has valid data.
// PRE: PurchaseOrder struct is populated
// POST: Returns nil if valid, error otherwise
func (po *PurchaseOrder) Validate() error {
	if strings.TrimSpace(po.Supplier) == "" {
		return ErrEmptySupplier
	}
	if !dates.Valid(po.OrderDate) {
		return ErrInvalidOrderDate
	}
	if po.ExpectedDate != "" && !dates.Valid(po.ExpectedDate) {
		return ErrInvalidExpected
	}
	switch po.Status {
	case StatusPending, StatusApproved, StatusReceived, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	return lineitem.Validate(po.Items)
}

// ComputeTotals recomputes line subtotals and the order total.
// POST: Total == sum of Items subtotals
func (po *PurchaseOrder) ComputeTotals() {
	po.Items = lineitem.Normalize(po.Items)
	po.Total = lineitem.Total(po.Items)
}

// Approve moves a pending order to approved.
func (po *PurchaseOrder) Approve() error {
	if po.Status != StatusPending {
		return ErrInvalidTransition
	}
	po.Status = StatusApproved
	return nil
}

// Receive moves a pending or approved order to received and links the purchase.
// PRE: purchaseID identifies the purchase created for this order
func (po *PurchaseOrder) Receive(purchaseID string) error {
	if po.Status != StatusPending && po.Status != StatusApproved {
		return ErrInvalidTransition
	}
	po.Status = StatusReceived
	po.PurchaseID = purchaseID
	return nil
}

// Cancel moves a pending or approved order to cancelled.
func (po *PurchaseOrder) Cancel() error {
	if po.Status != StatusPending && po.Status != StatusApproved {
		return ErrInvalidTransition
	}
	po.Status = StatusCancelled
	return nil
}

// IsEditable reports whether lines and supplier may still change.
func (po *PurchaseOrder) IsEditable() bool {
	return po.Status == StatusPending
}
