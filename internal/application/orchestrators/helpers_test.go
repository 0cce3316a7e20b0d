package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	emailAdapter "gymbios/internal/adapters/email"
	"gymbios/internal/adapters/storage"
	memberStore "gymbios/internal/adapters/storage/member"
	"gymbios/internal/domain/account"
	"gymbios/internal/domain/audit"
	"gymbios/internal/domain/billing"
	"gymbios/internal/domain/category"
	"gymbios/internal/domain/member"
	"gymbios/internal/domain/outbox"
	"gymbios/internal/domain/plan"
	"gymbios/internal/domain/pos"
	"gymbios/internal/domain/product"
	"gymbios/internal/domain/purchase"
	"gymbios/internal/domain/purchaseorder"
	"gymbios/internal/domain/referral"
	"gymbios/internal/domain/salary"
	"gymbios/internal/domain/staff"
	"gymbios/internal/domain/stream"
	"gymbios/internal/domain/wastage"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

// idSeq returns a generator yielding prefix-1, prefix-2, ...
func idSeq(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

var errBoom = errors.New("boom")

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, storage.ErrNotFound)
}

// --- accounts ---

type mockAccountStore struct {
	byID map[string]account.Account
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{byID: map[string]account.Account{}}
}

// GetByID implements the account lookups.
// PRE: id is non-empty
// POST: returns account or storage.ErrNotFound
func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.byID[id]
	if !ok {
		return account.Account{}, notFound("account")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, notFound("account")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.byID[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(context.Context) (int, error) { return len(m.byID), nil }

// --- members and plans ---

type mockMemberStore struct {
	members map[string]member.Member
	saveErr error
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: map[string]member.Member{}}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

// GetByID implements MemberLookup.
// PRE: id is non-empty
// POST: returns member or storage.ErrNotFound
func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	mm, ok := m.members[id]
	if !ok {
		return member.Member{}, notFound("member")
	}
	return mm, nil
}

// Save implements MemberStoreForSave.
// POST: member stored unless saveErr is set
func (m *mockMemberStore) Save(_ context.Context, mm member.Member) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.members[mm.ID] = mm
	return nil
}

// List implements MemberStoreForImport; Search matches name, email or phone substrings.
func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	var out []member.Member
	for _, mm := range m.members {
		if filter.Search != "" && !strings.Contains(mm.Name+" "+mm.Email+" "+mm.Phone, filter.Search) {
			continue
		}
		out = append(out, mm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type mockPlanStore struct {
	plans map[string]plan.Plan
}

func newMockPlanStore(ps ...plan.Plan) *mockPlanStore {
	s := &mockPlanStore{plans: map[string]plan.Plan{}}
	for _, p := range ps {
		s.plans[p.ID] = p
	}
	return s
}

func (m *mockPlanStore) GetByID(_ context.Context, id string) (plan.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return plan.Plan{}, notFound("plan")
	}
	return p, nil
}

func (m *mockPlanStore) Save(_ context.Context, p plan.Plan) error {
	m.plans[p.ID] = p
	return nil
}

func (m *mockPlanStore) List(_ context.Context, activeOnly bool) ([]plan.Plan, error) {
	var out []plan.Plan
	for _, p := range m.plans {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- catalogue ---

type mockCategoryStore struct {
	cats map[string]category.Category
}

func (m *mockCategoryStore) GetByID(_ context.Context, id string) (category.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return category.Category{}, notFound("category")
	}
	return c, nil
}

// Save implements CategoryStoreForSave.
// POST: storage.ErrDuplicate when another category has the same name
func (m *mockCategoryStore) Save(_ context.Context, c category.Category) error {
	for _, other := range m.cats {
		if other.ID != c.ID && member.NormalizedName(other.Name) == member.NormalizedName(c.Name) {
			return fmt.Errorf("category: %w", storage.ErrDuplicate)
		}
	}
	m.cats[c.ID] = c
	return nil
}

// mockProductStore moves stock all-or-nothing like the SQLite store.
type mockProductStore struct {
	mu       sync.Mutex
	products map[string]product.Product
	moves    int
}

func newMockProductStore(ps ...product.Product) *mockProductStore {
	s := &mockProductStore{products: map[string]product.Product{}}
	for _, p := range ps {
		s.products[p.ID] = p
	}
	return s
}

func (m *mockProductStore) GetByID(_ context.Context, id string) (product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return product.Product{}, notFound("product")
	}
	return p, nil
}

func (m *mockProductStore) Save(_ context.Context, p product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
	return nil
}

// ApplyMovements implements ProductStoreForStock.
// POST: every delta applied, or none when a product is missing or would go negative
func (m *mockProductStore) ApplyMovements(_ context.Context, deltas map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		p, ok := m.products[id]
		if !ok {
			return notFound("product")
		}
		if p.Stock+deltas[id] < 0 {
			return fmt.Errorf("product %s: %w", id, product.ErrInsufficientStock)
		}
	}
	for _, id := range ids {
		p := m.products[id]
		p.Stock += deltas[id]
		m.products[id] = p
	}
	m.moves++
	return nil
}

func (m *mockProductStore) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

// recordStore keeps saved records of any kind and can be told to fail.
type recordStore[T any] struct {
	saved   []T
	saveErr error
}

func (r *recordStore[T]) Save(_ context.Context, v T) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, v)
	return nil
}

type (
	mockPurchaseStore = recordStore[purchase.Purchase]
	mockVoucherStore  = recordStore[wastage.Voucher]
	mockSaleStore     = recordStore[pos.Sale]
)

type mockOrderStore struct {
	mu      sync.Mutex
	orders  map[string]purchaseorder.PurchaseOrder
	saveErr error
}

func (m *mockOrderStore) GetByID(_ context.Context, id string) (purchaseorder.PurchaseOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.orders[id]
	if !ok {
		return purchaseorder.PurchaseOrder{}, notFound("purchase order")
	}
	return po, nil
}

func openOrder(status string) bool {
	return status == purchaseorder.StatusPending || status == purchaseorder.StatusApproved
}

func (m *mockOrderStore) Save(_ context.Context, po purchaseorder.PurchaseOrder) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.orders[po.ID]; ok && !openOrder(old.Status) {
		return purchaseorder.ErrInvalidTransition
	}
	m.orders[po.ID] = po
	return nil
}

func (m *mockOrderStore) ClaimReceipt(_ context.Context, id, purchaseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.orders[id]
	if !ok {
		return notFound("purchase order")
	}
	if !openOrder(po.Status) {
		return purchaseorder.ErrInvalidTransition
	}
	po.Status, po.PurchaseID = purchaseorder.StatusReceived, purchaseID
	m.orders[id] = po
	return nil
}

func (m *mockOrderStore) ReleaseReceipt(_ context.Context, id, purchaseID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	po, ok := m.orders[id]
	if !ok || po.PurchaseID != purchaseID || po.Status != purchaseorder.StatusReceived {
		return notFound("purchase order receipt")
	}
	po.Status, po.PurchaseID = status, ""
	m.orders[id] = po
	return nil
}

// --- billing, staff, salary ---

type mockBillStore struct {
	mu    sync.Mutex
	bills map[string]billing.Bill
}

func (m *mockBillStore) GetByID(_ context.Context, id string) (billing.Bill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bills[id]
	if !ok {
		return billing.Bill{}, notFound("bill")
	}
	return b, nil
}

func (m *mockBillStore) Save(_ context.Context, b billing.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bills[b.ID] = b
	return nil
}

func (m *mockBillStore) ApplyPayment(_ context.Context, b billing.Bill, prevPaid decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bills[b.ID]
	if !ok {
		return notFound("bill")
	}
	if !cur.PaidAmount.Equal(prevPaid) {
		return storage.ErrStale
	}
	cur.PaidAmount, cur.PaymentMode, cur.Status = b.PaidAmount, b.PaymentMode, b.Status
	m.bills[b.ID] = cur
	return nil
}

type mockStaffStore struct {
	staff map[string]staff.Staff
}

func newMockStaffStore(ss ...staff.Staff) *mockStaffStore {
	s := &mockStaffStore{staff: map[string]staff.Staff{}}
	for _, st := range ss {
		s.staff[st.ID] = st
	}
	return s
}

func (m *mockStaffStore) GetByID(_ context.Context, id string) (staff.Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return staff.Staff{}, notFound("staff")
	}
	return s, nil
}

func (m *mockStaffStore) Save(_ context.Context, s staff.Staff) error {
	m.staff[s.ID] = s
	return nil
}

// mockSalaryStore enforces one payment per staff member per month.
type mockSalaryStore struct {
	payments []salary.Payment
}

func (m *mockSalaryStore) Save(_ context.Context, p salary.Payment) error {
	for _, existing := range m.payments {
		if existing.StaffID == p.StaffID && existing.Month == p.Month {
			return fmt.Errorf("salary payment: %w", storage.ErrDuplicate)
		}
	}
	m.payments = append(m.payments, p)
	return nil
}

// --- streams ---

type mockStreamStore struct {
	streams  map[string]stream.Stream
	bookings map[string]stream.Booking
}

func newMockStreamStore(ss ...stream.Stream) *mockStreamStore {
	m := &mockStreamStore{streams: map[string]stream.Stream{}, bookings: map[string]stream.Booking{}}
	for _, s := range ss {
		m.streams[s.ID] = s
	}
	return m
}

func (m *mockStreamStore) GetByID(_ context.Context, id string) (stream.Stream, error) {
	s, ok := m.streams[id]
	if !ok {
		return stream.Stream{}, notFound("stream")
	}
	return s, nil
}

func (m *mockStreamStore) Save(_ context.Context, s stream.Stream) error {
	m.streams[s.ID] = s
	return nil
}

func (m *mockStreamStore) GetBooking(_ context.Context, id string) (stream.Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return stream.Booking{}, notFound("booking")
	}
	return b, nil
}

func (m *mockStreamStore) SaveBooking(_ context.Context, b stream.Booking) error {
	m.bookings[b.ID] = b
	return nil
}

// BookSeat implements StreamStore.
// POST: stream.ErrAlreadyBooked or stream.ErrStreamFull with nothing written
func (m *mockStreamStore) BookSeat(_ context.Context, b stream.Booking, capacity int) error {
	active := 0
	for _, existing := range m.bookings {
		if existing.StreamID != b.StreamID || !existing.IsActive() {
			continue
		}
		if existing.MemberID == b.MemberID {
			return stream.ErrAlreadyBooked
		}
		active++
	}
	if capacity > 0 && active >= capacity {
		return stream.ErrStreamFull
	}
	m.bookings[b.ID] = b
	return nil
}

// --- referrals ---

type mockReferralStore struct {
	referrals map[string]referral.Referral
	rules     map[string]referral.RewardRule
}

func newMockReferralStore() *mockReferralStore {
	return &mockReferralStore{referrals: map[string]referral.Referral{}, rules: map[string]referral.RewardRule{}}
}

func (m *mockReferralStore) GetByID(_ context.Context, id string) (referral.Referral, error) {
	r, ok := m.referrals[id]
	if !ok {
		return referral.Referral{}, notFound("referral")
	}
	return r, nil
}

func (m *mockReferralStore) Save(_ context.Context, r referral.Referral) error {
	m.referrals[r.ID] = r
	return nil
}

func (m *mockReferralStore) CountConverted(_ context.Context, referrerID string) (int, error) {
	n := 0
	for _, r := range m.referrals {
		if r.ReferrerID == referrerID && r.IsConverted() {
			n++
		}
	}
	return n, nil
}

func (m *mockReferralStore) GetRule(_ context.Context, id string) (referral.RewardRule, error) {
	r, ok := m.rules[id]
	if !ok {
		return referral.RewardRule{}, notFound("reward rule")
	}
	return r, nil
}

func (m *mockReferralStore) SaveRule(_ context.Context, rule referral.RewardRule) error {
	m.rules[rule.ID] = rule
	return nil
}

func (m *mockReferralStore) ListRules(_ context.Context, activeOnly bool) ([]referral.RewardRule, error) {
	var out []referral.RewardRule
	for _, r := range m.rules {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- audit, outbox, email ---

type mockAudit struct {
	events []audit.Event
}

func (m *mockAudit) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAudit) last() audit.Event {
	if len(m.events) == 0 {
		return audit.Event{}
	}
	return m.events[len(m.events)-1]
}

type mockOutboxStore struct {
	entries map[string]outbox.Entry
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: map[string]outbox.Entry{}}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, notFound("outbox entry")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// stubSender records sends and fails while err is set.
type stubSender struct {
	sent []emailAdapter.SendRequest
	err  error
}

func (s *stubSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if s.err != nil {
		return emailAdapter.SendResult{}, s.err
	}
	s.sent = append(s.sent, req)
	return emailAdapter.SendResult{MessageID: fmt.Sprintf("msg-%d", len(s.sent)), SentAt: fixedTime}, nil
}
