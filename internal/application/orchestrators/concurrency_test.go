package orchestrators

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gymbios/internal/adapters/storage"
	billStore "gymbios/internal/adapters/storage/billing"
	productStore "gymbios/internal/adapters/storage/product"
	purchaseStore "gymbios/internal/adapters/storage/purchase"
	purchaseOrderStore "gymbios/internal/adapters/storage/purchaseorder"
	"gymbios/internal/adapters/storage/storagetest"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/lineitem"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/purchaseorder"
)

// gate holds the first n callers of wait until all n have arrived, so
// concurrent requests read the same state before any of them writes.
type gate struct {
	mu      sync.Mutex
	n       int
	release chan struct{}
}

func newGate(n int) *gate { return &gate{n: n, release: make(chan struct{})} }

func (g *gate) wait() {
	g.mu.Lock()
	if g.n == 0 {
		g.mu.Unlock()
		return
	}
	g.n--
	if g.n == 0 {
		close(g.release)
	}
	g.mu.Unlock()
	<-g.release
}

type gatedOrderStore struct {
	PurchaseOrderStore
	g *gate
}

func (s gatedOrderStore) GetByID(ctx context.Context, id string) (purchaseorder.PurchaseOrder, error) {
	po, err := s.PurchaseOrderStore.GetByID(ctx, id)
	s.g.wait()
	return po, err
}

type gatedBillStore struct {
	BillStore
	g *gate
}

func (s gatedBillStore) GetByID(ctx context.Context, id string) (billing.Bill, error) {
	b, err := s.BillStore.GetByID(ctx, id)
	s.g.wait()
	return b, err
}

// runTwice runs fn concurrently twice and returns both errors.
func runTwice(fn func(i int) error) [2]error {
	var errs [2]error
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(i)
		}()
	}
	wg.Wait()
	return errs
}

func TestExecuteReceivePurchaseOrder_ConcurrentReceiptsAddStockOnce(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	products := productStore.NewSQLiteStore(db)
	if err := products.Save(ctx, product.Product{ID: "whey", Name: "Whey", CostPrice: d("1700"), SalePrice: d("2200"), CreatedAt: fixedTime}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	orders := purchaseOrderStore.NewSQLiteStore(db)
	purchases := purchaseStore.NewSQLiteStore(db)
	deps := PurchaseOrderDeps{
		OrderStore:    orders,
		PurchaseStore: purchases,
		ProductStore:  products,
		Audit:         &mockAudit{},
		GenerateID:    uuid.NewString,
		Now:           fixedNow,
	}

	po, err := ExecuteSavePurchaseOrder(ctx, SavePurchaseOrderInput{Order: purchaseorder.PurchaseOrder{
		Supplier: "NutriCo",
		Items:    []lineitem.Item{{ProductID: "whey", Quantity: 5, UnitPrice: d("1700")}},
	}}, deps)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	deps.OrderStore = gatedOrderStore{PurchaseOrderStore: orders, g: newGate(2)}
	invoices := [2]string{"INV-A", "INV-B"}
	errs := runTwice(func(i int) error {
		_, err := ExecuteReceivePurchaseOrder(ctx, ReceivePurchaseOrderInput{OrderID: po.ID, InvoiceNo: invoices[i]}, deps)
		return err
	})

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrConflict) && errors.Is(err, purchaseorder.ErrInvalidTransition):
			lost++
		default:
			t.Fatalf("unexpected receive error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("want one receipt and one conflict, got %d and %d", won, lost)
	}

	p, err := products.GetByID(ctx, "whey")
	if err != nil {
		t.Fatal(err)
	}
	if p.Stock != 5 {
		t.Errorf("stock = %d, want 5", p.Stock)
	}
	if n, err := purchases.Count(ctx, purchaseStore.ListFilter{}); err != nil || n != 1 {
		t.Errorf("purchases = %d, %v; want 1", n, err)
	}
	stored, err := orders.GetByID(ctx, po.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != purchaseorder.StatusReceived || stored.PurchaseID == "" {
		t.Errorf("stored order = %+v", stored)
	}
	if _, err := purchases.GetByID(ctx, stored.PurchaseID); err != nil {
		t.Errorf("order links to purchase %q: %v", stored.PurchaseID, err)
	}
}

func TestExecuteTransitionPurchaseOrder_CannotReopenReceivedOrder(t *testing.T) {
	db := storagetest.Open(t)
	ctx := context.Background()
	orders := purchaseOrderStore.NewSQLiteStore(db)
	deps := PurchaseOrderDeps{OrderStore: orders, Audit: &mockAudit{}, GenerateID: uuid.NewString, Now: fixedNow}

	po := purchaseorder.PurchaseOrder{
		ID: "po-1", PONumber: "PO-1", Supplier: "NutriCo", OrderDate: "2026-03-01",
		Status: purchaseorder.StatusPending, CreatedAt: fixedTime,
		Items: []lineitem.Item{{ProductName: "Bands", Quantity: 1, UnitPrice: d("10")}},
	}
	po.ComputeTotals()
	if err := orders.Save(ctx, po); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	// A cancel that read the order before it was received must not overwrite it.
	if err := orders.ClaimReceipt(ctx, po.ID, "pur-1"); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := po.Cancel(); err != nil {
		t.Fatal(err)
	}
	if err := saveOrder(ctx, deps.OrderStore, po); !errors.Is(err, ErrConflict) {
		t.Errorf("stale cancel err = %v, want conflict", err)
	}
	stored, err := orders.GetByID(ctx, po.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != purchaseorder.StatusReceived || stored.PurchaseID != "pur-1" {
		t.Errorf("stored order = %+v", stored)
	}
}

func seedBill(t *testing.T, bills *billStore.SQLiteStore, total string) {
	t.Helper()
	err := bills.Save(context.Background(), billing.Bill{
		ID: "b-1", BillNo: "BILL-1", MemberName: "Asha", Amount: d(total), Total: d(total),
		PaidAmount: d("0"), PaymentMode: billing.ModeCash, Status: billing.StatusPending,
		BillDate: "2026-03-01", CreatedAt: fixedTime,
	})
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
}

func TestExecuteRecordBillPayment_ConcurrentPaymentsBothLand(t *testing.T) {
	bills := billStore.NewSQLiteStore(storagetest.Open(t))
	seedBill(t, bills, "1000")
	deps, _ := newBillingDeps(newMockMemberStore())
	deps.BillStore = gatedBillStore{BillStore: bills, g: newGate(2)}
	ctx := context.Background()

	errs := runTwice(func(int) error {
		_, err := ExecuteRecordBillPayment(ctx, RecordBillPaymentInput{BillID: "b-1", Amount: d("300")}, deps)
		return err
	})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("payment: %v", err)
		}
	}

	b, err := bills.GetByID(ctx, "b-1")
	if err != nil {
		t.Fatal(err)
	}
	if !b.PaidAmount.Equal(d("600")) || b.Status != billing.StatusPartial {
		t.Errorf("paid = %s status = %s, want 600 partial", b.PaidAmount, b.Status)
	}
}

func TestExecuteRecordBillPayment_ConcurrentPaymentsCannotOverpay(t *testing.T) {
	bills := billStore.NewSQLiteStore(storagetest.Open(t))
	seedBill(t, bills, "1000")
	deps, _ := newBillingDeps(newMockMemberStore())
	deps.BillStore = gatedBillStore{BillStore: bills, g: newGate(2)}
	ctx := context.Background()

	errs := runTwice(func(int) error {
		_, err := ExecuteRecordBillPayment(ctx, RecordBillPaymentInput{BillID: "b-1", Amount: d("700")}, deps)
		return err
	})
	var overpaid int
	for _, err := range errs {
		if errors.Is(err, ErrConflict) && errors.Is(err, billing.ErrOverpaid) {
			overpaid++
		} else if err != nil {
			t.Fatalf("unexpected payment error: %v", err)
		}
	}
	if overpaid != 1 {
		t.Errorf("want exactly one overpay conflict, got %d (%v)", overpaid, errs)
	}

	b, err := bills.GetByID(ctx, "b-1")
	if err != nil {
		t.Fatal(err)
	}
	if !b.PaidAmount.Equal(d("700")) {
		t.Errorf("paid = %s, want 700", b.PaidAmount)
	}
}

type staleBillStore struct {
	*mockBillStore
	attempts int
}

func (s *staleBillStore) ApplyPayment(context.Context, billing.Bill, decimal.Decimal) error {
	s.attempts++
	return storage.ErrStale
}

func TestExecuteRecordBillPayment_GivesUpAfterRepeatedRaces(t *testing.T) {
	deps, bills := newBillingDeps(newMockMemberStore())
	bills.bills["b-1"] = billing.Bill{ID: "b-1", BillNo: "BILL-1", MemberName: "Asha", Total: d("100"), PaidAmount: d("0")}
	stale := &staleBillStore{mockBillStore: bills}
	deps.BillStore = stale

	_, err := ExecuteRecordBillPayment(context.Background(), RecordBillPaymentInput{BillID: "b-1", Amount: d("10")}, deps)
	if !errors.Is(err, ErrConflict) || !errors.Is(err, storage.ErrStale) {
		t.Errorf("err = %v, want stale conflict", err)
	}
	if stale.attempts != paymentAttempts {
		t.Errorf("attempts = %d, want %d", stale.attempts, paymentAttempts)
	}
}
