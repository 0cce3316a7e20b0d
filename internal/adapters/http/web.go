// Package web serves the GymBios REST API, the dashboard pages and the
// admin tooling over net/http.
package web

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"gymbios/internal/adapters/email"
	"gymbios/internal/adapters/http/middleware"
	"gymbios/internal/adapters/http/perf"
	accountStore "gymbios/internal/adapters/storage/account"
	auditStore "gymbios/internal/adapters/storage/audit"
	billingStore "gymbios/internal/adapters/storage/billing"
	categoryStore "gymbios/internal/adapters/storage/category"
	interestStore "gymbios/internal/adapters/storage/interest"
	memberStore "gymbios/internal/adapters/storage/member"
	outboxStore "gymbios/internal/adapters/storage/outbox"
	planStore "gymbios/internal/adapters/storage/plan"
	posStore "gymbios/internal/adapters/storage/pos"
	productStore "gymbios/internal/adapters/storage/product"
	purchaseStore "gymbios/internal/adapters/storage/purchase"
	purchaseOrderStore "gymbios/internal/adapters/storage/purchaseorder"
	referralStore "gymbios/internal/adapters/storage/referral"
	salaryStore "gymbios/internal/adapters/storage/salary"
	staffStore "gymbios/internal/adapters/storage/staff"
	streamStore "gymbios/internal/adapters/storage/stream"
	wastageStore "gymbios/internal/adapters/storage/wastage"
	"gymbios/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore       accountStore.Store
	AuditStore         auditStore.Store
	MemberStore        memberStore.Store
	StaffStore         staffStore.Store
	PlanStore          planStore.Store
	CategoryStore      categoryStore.Store
	ProductStore       productStore.Store
	PurchaseOrderStore purchaseOrderStore.Store
	PurchaseStore      purchaseStore.Store
	WastageStore       wastageStore.Store
	BillStore          billingStore.Store
	StreamStore        streamStore.Store
	ReferralStore      referralStore.Store
	SalaryStore        salaryStore.Store
	InterestStore      interestStore.Store
	SaleStore          posStore.Store
	OutboxStore        outboxStore.Store
}

// Options configures NewMux. Zero values fall back to development defaults.
type Options struct {
	StaticDir      string
	CSRFKey        []byte // 32 bytes; a random key is generated when empty
	Production     bool
	SlowRequest    time.Duration
	TrustedOrigins []string
	Collector      *perf.Collector
	Sender         email.Sender // nil queues every email in the outbox
	Outbox         *orchestrators.OutboxProcessor
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// emailSender delivers transactional email; nil means queue-only.
var emailSender email.Sender

// outboxProcessor backs the admin retry endpoint.
var outboxProcessor *orchestrators.OutboxProcessor

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	perfCollector = opts.Collector
	emailSender = opts.Sender
	outboxProcessor = opts.Outbox
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Production

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	registerRoutes(mux)

	csrfKey := opts.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			panic("generate csrf key: " + err.Error())
		}
		slog.Warn("csrf_key_generated", "reason", "GYMBIOS_CSRF_KEY not set; form sessions will not survive a restart")
	}

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Outermost last: Recover -> Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, opts.TrustedOrigins...),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
		middleware.Recover,
	)
}
