package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; schema_version records how many have run.
// Append only: never edit a migration that has shipped.
var migrations = []string{
	// 1: core schema
	`
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		staff_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT,
		password_change_required INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS plan (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		duration_months INTEGER NOT NULL,
		price TEXT NOT NULL DEFAULT '0',
		description TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		plan_id TEXT NOT NULL DEFAULT '',
		membership_plan TEXT NOT NULL DEFAULT '',
		join_date TEXT NOT NULL,
		expiry_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		referral_code TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_member_name ON member(name);

	CREATE TABLE IF NOT EXISTS staff (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		salary TEXT NOT NULL DEFAULT '0',
		join_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS category (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE COLLATE NOCASE,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS product (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		sku TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		cost_price TEXT NOT NULL DEFAULT '0',
		sale_price TEXT NOT NULL DEFAULT '0',
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		reorder_level INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchase_order (
		id TEXT PRIMARY KEY,
		po_number TEXT NOT NULL UNIQUE,
		supplier TEXT NOT NULL,
		order_date TEXT NOT NULL,
		expected_date TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		items_json TEXT NOT NULL DEFAULT '[]',
		total TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		purchase_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS purchase (
		id TEXT PRIMARY KEY,
		invoice_no TEXT NOT NULL,
		supplier TEXT NOT NULL,
		purchase_date TEXT NOT NULL,
		items_json TEXT NOT NULL DEFAULT '[]',
		subtotal TEXT NOT NULL DEFAULT '0',
		tax_percent TEXT NOT NULL DEFAULT '0',
		tax TEXT NOT NULL DEFAULT '0',
		discount TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0',
		purchase_order_id TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wastage_voucher (
		id TEXT PRIMARY KEY,
		voucher_no TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL,
		reason TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		voucher_date TEXT NOT NULL,
		items_json TEXT NOT NULL DEFAULT '[]',
		total TEXT NOT NULL DEFAULT '0',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bill (
		id TEXT PRIMARY KEY,
		bill_no TEXT NOT NULL UNIQUE,
		member_id TEXT NOT NULL DEFAULT '',
		member_name TEXT NOT NULL DEFAULT '',
		plan_id TEXT NOT NULL DEFAULT '',
		plan_name TEXT NOT NULL DEFAULT '',
		amount TEXT NOT NULL DEFAULT '0',
		discount TEXT NOT NULL DEFAULT '0',
		tax_percent TEXT NOT NULL DEFAULT '0',
		tax TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0',
		paid_amount TEXT NOT NULL DEFAULT '0',
		payment_mode TEXT NOT NULL,
		status TEXT NOT NULL,
		bill_date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bill_member ON bill(member_id);

	CREATE TABLE IF NOT EXISTS stream (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		trainer_id TEXT NOT NULL DEFAULT '',
		trainer_name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		scheduled_at TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0,
		url TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS booking (
		id TEXT PRIMARY KEY,
		stream_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		member_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		booked_at TEXT NOT NULL,
		FOREIGN KEY (stream_id) REFERENCES stream(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_booking_stream ON booking(stream_id);

	CREATE TABLE IF NOT EXISTS referral (
		id TEXT PRIMARY KEY,
		referrer_id TEXT NOT NULL,
		referrer_name TEXT NOT NULL DEFAULT '',
		referee_name TEXT NOT NULL,
		referee_phone TEXT NOT NULL DEFAULT '',
		referee_email TEXT NOT NULL DEFAULT '',
		referee_member_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		reward_points INTEGER NOT NULL DEFAULT 0,
		reward_note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		converted_at TEXT
	);

	CREATE TABLE IF NOT EXISTS reward_rule (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		referrals_required INTEGER NOT NULL,
		reward_type TEXT NOT NULL,
		reward_value TEXT NOT NULL DEFAULT '0',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS salary_payment (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		staff_name TEXT NOT NULL DEFAULT '',
		month TEXT NOT NULL,
		base_salary TEXT NOT NULL DEFAULT '0',
		bonus TEXT NOT NULL DEFAULT '0',
		deductions TEXT NOT NULL DEFAULT '0',
		net_amount TEXT NOT NULL DEFAULT '0',
		payment_mode TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE (staff_id, month)
	);

	CREATE TABLE IF NOT EXISTS interest (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		interested_in TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		follow_up_date TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pos_sale (
		id TEXT PRIMARY KEY,
		receipt_no TEXT NOT NULL UNIQUE,
		member_id TEXT NOT NULL DEFAULT '',
		customer_name TEXT NOT NULL DEFAULT '',
		items_json TEXT NOT NULL DEFAULT '[]',
		subtotal TEXT NOT NULL DEFAULT '0',
		discount TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0',
		payment_mode TEXT NOT NULL,
		sold_at TEXT NOT NULL
	);
	`,
	// 2: audit trail and outbox
	`
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL,
		actor_id TEXT NOT NULL DEFAULT '',
		actor_email TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_event(timestamp);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`,
}

// LatestSchemaVersion is the version reached after all migrations.
func LatestSchemaVersion() int {
	return len(migrations)
}

// InitDB prepares the connection and applies pending migrations.
// PRE: db is a valid database connection
// POST: All tables exist, schema_version == LatestSchemaVersion()
func InitDB(db *sql.DB) error {
	ctx := context.Background()
	// WAL is not available for :memory: databases; the pragma is a no-op there.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for v := current; v < len(migrations); v++ {
		if err := applyMigration(ctx, db, v+1, migrations[v]); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

func applyMigration(ctx context.Context, db *sql.DB, version int, stmt string) error {
	return InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("migration %d: record version: %w", version, err)
		}
		return nil
	})
}
