package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/ratecard/internal/domain/model"
)

// Supported ledger drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const sqlitePragmas = "_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"

type dialect struct {
	schema []string
	insert string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS ledger_transactions (
	id              TEXT PRIMARY KEY,
	counterparty_id TEXT NOT NULL,
	creator_id      TEXT NOT NULL DEFAULT '',
	total_cents     INTEGER,
	cash_cents      INTEGER NOT NULL DEFAULT 0,
	in_kind_cents   INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL DEFAULT '',
	occurred_at     INTEGER NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_ledger_counterparty ON ledger_transactions (counterparty_id, occurred_at)`,
		},
		insert: "INSERT OR IGNORE INTO",
	},
	DriverMySQL: {
		schema: []string{
			`CREATE TABLE IF NOT EXISTS ledger_transactions (
	id              VARCHAR(128) NOT NULL PRIMARY KEY,
	counterparty_id VARCHAR(128) NOT NULL,
	creator_id      VARCHAR(128) NOT NULL DEFAULT '',
	total_cents     BIGINT NULL,
	cash_cents      BIGINT NOT NULL DEFAULT 0,
	in_kind_cents   BIGINT NOT NULL DEFAULT 0,
	status          VARCHAR(32) NOT NULL DEFAULT '',
	occurred_at     BIGINT NOT NULL,
	INDEX idx_ledger_counterparty (counterparty_id, occurred_at)
)`,
		},
		insert: "INSERT IGNORE INTO",
	},
}

// txRow is the storage form of a transaction. Dates are unix milliseconds
// in UTC so both drivers agree on the representation.
type txRow struct {
	ID             string        `db:"id"`
	CounterpartyID string        `db:"counterparty_id"`
	CreatorID      string        `db:"creator_id"`
	TotalCents     sql.NullInt64 `db:"total_cents"`
	CashCents      int64         `db:"cash_cents"`
	InKindCents    int64         `db:"in_kind_cents"`
	Status         string        `db:"status"`
	OccurredAt     int64         `db:"occurred_at"`
}

func toRow(tx model.Transaction) txRow {
	r := txRow{
		ID:             tx.ID,
		CounterpartyID: tx.CounterpartyID,
		CreatorID:      tx.CreatorID,
		CashCents:      tx.CashCents,
		InKindCents:    tx.InKindCents,
		Status:         string(tx.Status),
		OccurredAt:     tx.Date.UTC().UnixMilli(),
	}
	if tx.TotalCents != nil {
		r.TotalCents = sql.NullInt64{Int64: *tx.TotalCents, Valid: true}
	}
	return r
}

func (r txRow) model() model.Transaction {
	tx := model.Transaction{
		ID:             r.ID,
		CounterpartyID: r.CounterpartyID,
		CreatorID:      r.CreatorID,
		CashCents:      r.CashCents,
		InKindCents:    r.InKindCents,
		Status:         model.Status(r.Status),
		Date:           time.UnixMilli(r.OccurredAt).UTC(),
	}
	if r.TotalCents.Valid {
		total := r.TotalCents.Int64
		tx.TotalCents = &total
	}
	return tx
}

// SQLLedger implements Ledger on a SQL database through sqlx.
type SQLLedger struct {
	db           *sqlx.DB
	dialect      dialect
	maxOpenConns int
	migrate      bool
}

// NewSQLLedger opens the ledger on driver ("sqlite" or "mysql") and dsn.
// For sqlite the dsn is a file path; WAL and a busy timeout are enabled
// unless the dsn carries its own parameters.
func NewSQLLedger(ctx context.Context, driver, dsn string, opts ...Option) (*SQLLedger, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	s := &SQLLedger{dialect: d, maxOpenConns: 10, migrate: true}
	for _, opt := range opts {
		opt(s)
	}

	if driver == DriverSQLite {
		if !strings.Contains(dsn, "?") {
			dsn += "?" + sqlitePragmas
		}
		s.maxOpenConns = 1
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	s.db = db

	if s.migrate {
		for _, stmt := range d.schema {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("create schema: %w", err)
			}
		}
	}
	return s, nil
}

// Append implements Ledger.
func (s *SQLLedger) Append(ctx context.Context, tx model.Transaction) error {
	if err := validate(tx); err != nil {
		return err
	}
	q := s.dialect.insert + ` ledger_transactions
	(id, counterparty_id, creator_id, total_cents, cash_cents, in_kind_cents, status, occurred_at)
	VALUES (:id, :counterparty_id, :creator_id, :total_cents, :cash_cents, :in_kind_cents, :status, :occurred_at)`
	res, err := s.db.NamedExecContext(ctx, q, toRow(tx))
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

// ByCounterparty implements Ledger.
func (s *SQLLedger) ByCounterparty(ctx context.Context, counterpartyID string) ([]model.Transaction, error) {
	var rows []txRow
	q := s.db.Rebind(`SELECT id, counterparty_id, creator_id, total_cents, cash_cents, in_kind_cents, status, occurred_at
	FROM ledger_transactions WHERE counterparty_id = ? ORDER BY occurred_at, id`)
	if err := s.db.SelectContext(ctx, &rows, q, counterpartyID); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	out := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// Counterparties implements Ledger.
func (s *SQLLedger) Counterparties(ctx context.Context) ([]string, error) {
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT counterparty_id FROM ledger_transactions ORDER BY counterparty_id`); err != nil {
		return nil, fmt.Errorf("select counterparties: %w", err)
	}
	return ids, nil
}

// Count implements Ledger.
func (s *SQLLedger) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM ledger_transactions`); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// Close implements Ledger.
func (s *SQLLedger) Close() error {
	return s.db.Close()
}
