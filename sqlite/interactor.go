// Package sqlite reads table records from SQLite. A Table maps a
// schema.TableDefinition onto one SQLite table: it can create and seed the table
// and load all of its rows as documents typed by the definition's columns.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/source"
)

// DriverName is the database/sql driver name registered by go-sqlite3.
const DriverName = "sqlite3"

// dbRunner abstracts the common methods of *sql.DB and *sql.Tx.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Table is a record source over one SQLite table.
type Table struct {
	db      *sql.DB
	def     *schema.TableDefinition
	columns map[string]schema.ColumnDefinition
	logger  *zap.Logger
	options *Options
}

// Ensure Table can feed a table engine.
var _ source.Source[schema.Document] = (*Table)(nil)

// Open opens a SQLite database. In-memory databases are limited to one
// connection, since every connection would otherwise see its own database.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewTable creates a Table for a definition. The definition is validated first.
func NewTable(db *sql.DB, def *schema.TableDefinition, logger *zap.Logger, options *Options) (*Table, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}
	if err := schema.NewValidator().Validate(def); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}

	columns := make(map[string]schema.ColumnDefinition, len(def.Columns))
	for _, col := range def.Columns {
		field := col.SourceField()
		if _, exists := columns[field]; !exists {
			columns[field] = col
		}
	}
	return &Table{
		db:      db,
		def:     def,
		columns: columns,
		logger:  logger.With(zap.String("table", def.Name)),
		options: options,
	}, nil
}

// Name returns the unquoted name of the SQLite table.
func (t *Table) Name() string {
	base := t.def.Name
	if t.options.TableName != "" {
		base = t.options.TableName
	}
	return t.options.TablePrefix + base
}

// Create creates the table, dropping it first when DropIfExists is set.
func (t *Table) Create(ctx context.Context) error {
	if t.options.DropIfExists {
		if err := t.Drop(ctx); err != nil {
			return err
		}
	}
	stmt := t.CreateTableSQL()
	if _, err := t.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
	}
	t.logger.Debug("Created table", zap.String("name", t.Name()))
	return nil
}

// Drop drops the table if it exists.
func (t *Table) Drop(ctx context.Context) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdentifier(t.Name()))
	if _, err := t.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", t.Name(), err)
	}
	return nil
}

// Exists reports whether the table exists.
func (t *Table) Exists(ctx context.Context) (bool, error) {
	var name string
	err := t.db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?;", t.Name()).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Insert writes documents in one transaction and returns the number of rows
// written. Keys that are not defined columns are ignored.
func (t *Table) Insert(ctx context.Context, docs []schema.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, t.insertSQL())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for i, doc := range docs {
		args, err := t.insertArgs(doc)
		if err != nil {
			return 0, fmt.Errorf("record %d: %w", i, err)
		}
		res, err := stmt.ExecContext(ctx, args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
		n, _ := res.RowsAffected()
		written += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	t.logger.Debug("Inserted records", zap.Int64("count", written))
	return written, nil
}

// Load reads every row of the table.
func (t *Table) Load(ctx context.Context) ([]schema.Document, error) {
	return t.load(ctx, t.db)
}

func (t *Table) load(ctx context.Context, runner dbRunner) ([]schema.Document, error) {
	rows, err := runner.QueryContext(ctx, t.selectSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", t.Name(), err)
	}
	defer rows.Close()

	docs, err := readRows(t.logger, t.columns, rows)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("Loaded records", zap.Int("count", len(docs)))
	return docs, nil
}

// readRows reads all rows into documents, converting stored values to the Go
// types of their column types.
func readRows(logger *zap.Logger, columns map[string]schema.ColumnDefinition, rows *sql.Rows) ([]schema.Document, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := make([]schema.Document, 0)
	for rows.Next() {
		row := make(schema.Document, len(names))
		values := make([]any, len(names))
		scanArgs := make([]any, len(names))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, name := range names {
			val := values[i]
			if val == nil {
				row[name] = nil
				continue
			}

			col, ok := columns[name]
			if !ok {
				logger.Warn("Column not found in definition, using raw value", zap.String("column", name))
				row[name] = val
				continue
			}
			row[name] = convertValue(logger, col, val)
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func convertValue(logger *zap.Logger, col schema.ColumnDefinition, val any) any {
	if b, isBytes := val.([]byte); isBytes {
		val = string(b)
	}

	switch col.Type {
	case schema.FieldTypeBoolean:
		if intVal, isInt := val.(int64); isInt {
			return intVal != 0
		}
	case schema.FieldTypeInteger:
		if floatVal, isFloat := val.(float64); isFloat {
			return int64(floatVal)
		}
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		if intVal, isInt := val.(int64); isInt {
			return float64(intVal)
		}
	case schema.FieldTypeDate:
		switch v := val.(type) {
		case time.Time:
			return v
		case string:
			ts, err := query.ParseTime(v)
			if err != nil {
				logger.Warn("Unreadable date, using raw value", zap.String("column", col.ID), zap.String("value", v))
				return v
			}
			return ts
		}
	}
	return val
}
