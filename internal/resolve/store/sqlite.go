package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"msku-service/internal/resolve/model"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sku_mappings (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT    NOT NULL UNIQUE,
		sku         TEXT    NOT NULL,
		msku        TEXT    NOT NULL,
		marketplace TEXT    NOT NULL,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS sku_mappings_key ON sku_mappings (lower(sku), lower(marketplace))`,
}

type SQLite struct {
	db  *sqlx.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if needed) the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}
	db, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// один писатель, иначе SQLITE_BUSY
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: schema: %w", err)
		}
	}
	logger.Info().Str("path", path).Msg("sqlite store ready")
	return &SQLite{db: db, log: logger}, nil
}

func (s *SQLite) List(ctx context.Context) ([]model.Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(columns...).From(table).OrderBy("seq").Asc()
	query, args := sb.Build()

	var rows []mappingDAO
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (model.Record, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(columns...).From(table).Where(sb.Equal("id", id)).Limit(1)
	query, args := sb.Build()

	var row mappingDAO
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Record{}, ErrNotFound
		}
		return model.Record{}, fmt.Errorf("sqlite: get: %w", err)
	}
	return row.toModel(), nil
}

func (s *SQLite) Create(ctx context.Context, rec model.Record) error {
	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertInto(table).Cols(columns...).Values(
		rec.ID, rec.SKU, rec.MSKU, rec.Marketplace, rec.CreatedAt.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	query, args := ib.Build()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUnique(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("sqlite: create: %w", err)
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, rec model.Record) error {
	ub := sqlbuilder.SQLite.NewUpdateBuilder()
	ub.Update(table).Set(
		ub.Assign("sku", rec.SKU),
		ub.Assign("msku", rec.MSKU),
		ub.Assign("marketplace", rec.Marketplace),
		ub.Assign("updated_at", rec.UpdatedAt.UnixNano()),
	).Where(ub.Equal("id", rec.ID))
	query, args := ub.Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUnique(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("sqlite: update: %w", err)
	}
	return affected(res, "update")
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	db := sqlbuilder.SQLite.NewDeleteBuilder()
	db.DeleteFrom(table).Where(db.Equal("id", id))
	query, args := db.Build()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	return affected(res, "delete")
}

func (s *SQLite) Close() error { return s.db.Close() }

func affected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: %s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// extended codes (SQLITE_CONSTRAINT_UNIQUE) keep the primary code in the low byte
func isUnique(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
