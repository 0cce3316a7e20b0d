package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gymbios/internal/adapters/email"
	web "gymbios/internal/adapters/http"
	"gymbios/internal/adapters/http/perf"
	"gymbios/internal/adapters/storage"
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
	"gymbios/internal/config"
	"gymbios/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, int(cfg.SlowQuery.Milliseconds()))

	stores := &web.Stores{
		AccountStore:       accountStore.NewSQLiteStore(timedDB),
		AuditStore:         auditStore.NewSQLiteStore(timedDB),
		MemberStore:        memberStore.NewSQLiteStore(timedDB),
		StaffStore:         staffStore.NewSQLiteStore(timedDB),
		PlanStore:          planStore.NewSQLiteStore(timedDB),
		CategoryStore:      categoryStore.NewSQLiteStore(timedDB),
		ProductStore:       productStore.NewSQLiteStore(timedDB),
		PurchaseOrderStore: purchaseOrderStore.NewSQLiteStore(timedDB),
		PurchaseStore:      purchaseStore.NewSQLiteStore(timedDB),
		WastageStore:       wastageStore.NewSQLiteStore(timedDB),
		BillStore:          billingStore.NewSQLiteStore(timedDB),
		StreamStore:        streamStore.NewSQLiteStore(timedDB),
		ReferralStore:      referralStore.NewSQLiteStore(timedDB),
		SalaryStore:        salaryStore.NewSQLiteStore(timedDB),
		InterestStore:      interestStore.NewSQLiteStore(timedDB),
		SaleStore:          posStore.NewSQLiteStore(timedDB),
		OutboxStore:        outboxStore.NewSQLiteStore(timedDB),
	}

	if cfg.AdminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{
			AccountStore: stores.AccountStore,
			Audit:        stores.AuditStore,
			GenerateID:   uuid.NewString,
			Now:          time.Now,
		}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	} else {
		slog.Warn("config_event", "event", "admin_seed_skipped", "reason", "GYMBIOS_ADMIN_PASSWORD not set")
	}
	if cfg.SeedDemo && !cfg.IsProduction() {
		err := orchestrators.ExecuteSeedDemo(context.Background(), orchestrators.DemoSeedDeps{
			PlanStore:     stores.PlanStore,
			CategoryStore: stores.CategoryStore,
			ProductStore:  stores.ProductStore,
			StaffStore:    stores.StaffStore,
			MemberStore:   stores.MemberStore,
			GenerateID:    uuid.NewString,
			Now:           time.Now,
		})
		if err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.ResendFrom, cfg.ReplyTo)
		slog.Info("config_event", "event", "email_sender", "provider", "resend")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("config_event", "event", "email_disabled", "reason", "GYMBIOS_RESEND_KEY not set")
		} else {
			slog.Info("config_event", "event", "email_sender", "provider", "noop")
		}
	}

	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: sender},
	}, time.Now)
	outboxStopCh := make(chan struct{})
	orchestrators.StartBackgroundWorker(processor, cfg.OutboxInterval, outboxStopCh)

	handler := web.NewMux(stores, web.Options{
		StaticDir:   "static",
		CSRFKey:     cfg.CSRFKey,
		Production:  cfg.IsProduction(),
		SlowRequest: cfg.SlowRequest,
		Collector:   collector,
		Sender:      sender,
		Outbox:      processor,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env, "schema", storage.LatestSchemaVersion())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("server_stop", "reason", "signal")
	close(outboxStopCh)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
}
