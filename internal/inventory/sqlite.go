package inventory

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
	"github.com/ginjaninja78/sample-reducer/internal/types"
	"github.com/ginjaninja78/sample-reducer/internal/units"
)

const samplesSchema = `
CREATE TABLE IF NOT EXISTS samples (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	quantity_type TEXT NOT NULL,
	amount        REAL NOT NULL CHECK (amount >= 0),
	unit          TEXT NOT NULL DEFAULT '',
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// OpenSQLite opens (creating if needed) an inventory database file.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open inventory db %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// SQLiteStore keeps inventory in a SQLite samples table.
type SQLiteStore struct {
	db *sql.DB
}

// Verify interface compliance
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open database. The caller owns db.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Migrate creates the samples table if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, samplesSchema); err != nil {
		return errors.Wrap(err, "create samples table")
	}
	return nil
}

// Upsert inserts or replaces records in one transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, records ...Record) error {
	for _, r := range records {
		if err := r.validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin upsert")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (id, name, quantity_type, amount, unit)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			quantity_type = excluded.quantity_type,
			amount = excluded.amount,
			unit = excluded.unit,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return errors.Wrap(err, "prepare upsert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Identity, r.Name, r.Kind.String(), r.Available, r.UnitName); err != nil {
			return errors.Wrapf(err, "upsert sample %s", r.Identity)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit upsert")
	}
	return nil
}

// List returns all records ordered by identity.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity_type, amount, unit FROM samples ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list samples")
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r    Record
			kind string
		)
		if err := rows.Scan(&r.Identity, &r.Name, &kind, &r.Available, &r.UnitName); err != nil {
			return nil, errors.Wrap(err, "scan sample")
		}
		if r.Kind, err = units.ParseKind(kind); err != nil {
			return nil, errors.Wrapf(err, "sample %s", r.Identity)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list samples")
	}
	return records, nil
}

// FetchQuantity implements Lookup.
func (s *SQLiteStore) FetchQuantity(ctx context.Context, identity string) (types.Snapshot, error) {
	var (
		snap types.Snapshot
		kind string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT quantity_type, amount, unit FROM samples WHERE id = ?`, identity,
	).Scan(&kind, &snap.Available, &snap.UnitName)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Snapshot{}, notFound(identity)
	}
	if err != nil {
		return types.Snapshot{}, errors.Wrapf(err, "fetch quantity for ID %s", identity)
	}

	if snap.Kind, err = units.ParseKind(kind); err != nil {
		return types.Snapshot{}, errors.Wrapf(err, "sample %s", identity)
	}
	return snap, nil
}

// SubtractQuantity implements Subtractor with a single conditional update,
// so the amount never goes below zero even with concurrent writers.
func (s *SQLiteStore) SubtractQuantity(ctx context.Context, identity string, amount float64) error {
	if amount < 0 {
		return errors.Newf("ID %s: amount to subtract cannot be negative, got %s", identity, units.FormatAmount(amount))
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE samples
		SET amount = ROUND(amount - ?, 6), updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND amount >= ?`,
		amount, identity, amount)
	if err != nil {
		return errors.Wrapf(err, "subtract quantity for ID %s", identity)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "subtract quantity for ID %s", identity)
	}
	if n > 0 {
		return nil
	}

	// Nothing updated: tell a missing sample from a short one.
	var available float64
	err = s.db.QueryRowContext(ctx, `SELECT amount FROM samples WHERE id = ?`, identity).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(identity)
	}
	if err != nil {
		return errors.Wrapf(err, "subtract quantity for ID %s", identity)
	}
	return insufficient(identity, available, amount)
}
