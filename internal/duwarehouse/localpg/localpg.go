// Package localpg is a debug-only ducontract.Sink backed by Postgres, for
// running the connector against a real database outside of the host
// ingestion platform (SPEC_FULL.md C11).
package localpg

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/pkg/errx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func marshalRow(row map[string]string) ([]byte, error) {
	return json.Marshal(row)
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS docusync_rows (
	table_name TEXT NOT NULL,
	row_key    TEXT NOT NULL,
	row_data   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (table_name, row_key)
);

CREATE TABLE IF NOT EXISTS docusync_state (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
`

var registry = errx.NewRegistry("DUWAREHOUSE")

var ErrUpsertFailed = registry.Register(
	"UPSERT_FAILED", errx.TypeInternal, 500, "failed to upsert row into local warehouse",
)

// Sink persists every table into one generic docusync_rows table, keyed by
// the table's declared primary-key columns (spec §6's upsert-sink contract).
type Sink struct {
	db *sqlx.DB
	pk map[string][]string
}

// Open connects to Postgres at dsn and ensures the backing tables exist.
// schema supplies each table's primary-key columns, the same list returned
// by docusync.Schema.
func Open(ctx context.Context, dsn string, schema []ducontract.TableSchema) (*Sink, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, registry.NewWithCause(ErrUpsertFailed, err).WithDetail("stage", "connect")
	}
	if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
		return nil, registry.NewWithCause(ErrUpsertFailed, err).WithDetail("stage", "migrate")
	}

	pk := make(map[string][]string, len(schema))
	for _, t := range schema {
		pk[t.Table] = t.PrimaryKey
	}
	return &Sink{db: db, pk: pk}, nil
}

// Close releases the underlying database connection.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Upsert stores row as a JSONB blob keyed by table name and the row's
// primary-key column values joined with "|".
func (s *Sink) Upsert(ctx context.Context, table string, row map[string]string) error {
	key := s.rowKey(table, row)

	data, err := marshalRow(row)
	if err != nil {
		return registry.NewWithCause(ErrUpsertFailed, err).WithDetail("table", table)
	}

	const query = `
		INSERT INTO docusync_rows (table_name, row_key, row_data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (table_name, row_key) DO UPDATE
		SET row_data = EXCLUDED.row_data, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, query, table, key, data, time.Now().UTC()); err != nil {
		return registry.NewWithCause(ErrUpsertFailed, err).
			WithDetail("table", table).WithDetail("row_key", key)
	}
	return nil
}

// Checkpoint persists the watermark state as key/value rows, overwriting any
// prior checkpoint atomically within one transaction.
func (s *Sink) Checkpoint(ctx context.Context, state map[string]string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return registry.NewWithCause(ErrUpsertFailed, err).WithDetail("stage", "checkpoint_begin")
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO docusync_state (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for key, value := range state {
		if _, err := tx.ExecContext(ctx, query, key, value, now); err != nil {
			return registry.NewWithCause(ErrUpsertFailed, err).WithDetail("stage", "checkpoint_write")
		}
	}

	if err := tx.Commit(); err != nil {
		return registry.NewWithCause(ErrUpsertFailed, err).WithDetail("stage", "checkpoint_commit")
	}
	return nil
}

// rowKey joins the table's declared PK column values; tables with no
// registered schema fall back to every column, sorted, so an unknown table
// still upserts deterministically instead of erroring.
func (s *Sink) rowKey(table string, row map[string]string) string {
	columns, ok := s.pk[table]
	if !ok {
		names := make([]string, 0, len(row))
		for c := range row {
			names = append(names, c)
		}
		sort.Strings(names)
		columns = names
	}

	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = row[c]
	}
	return strings.Join(parts, "|")
}
