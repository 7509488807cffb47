package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
)

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// fields returns the distinct source fields of the definition in column order.
func (t *Table) fields() []string {
	out := make([]string, 0, len(t.def.Columns))
	seen := make(map[string]bool, len(t.def.Columns))
	for _, col := range t.def.Columns {
		field := col.SourceField()
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}

// selectSQL reads every defined field of every row. Rows come back in rowid
// order so repeated loads give the same input order.
func (t *Table) selectSQL() string {
	quoted := make([]string, 0, len(t.def.Columns))
	for _, field := range t.fields() {
		quoted = append(quoted, quoteIdentifier(field))
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid;", strings.Join(quoted, ", "), quoteIdentifier(t.Name()))
}

// insertSQL creates a single-row INSERT statement over the defined fields.
func (t *Table) insertSQL() string {
	fields := t.fields()
	quoted := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = quoteIdentifier(field)
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		quoteIdentifier(t.Name()), strings.Join(quoted, ", "), strings.Join(placeholders, ", "))
}

// insertArgs returns the parameters of insertSQL for one document.
func (t *Table) insertArgs(doc schema.Document) ([]any, error) {
	fields := t.fields()
	args := make([]any, len(fields))
	for i, field := range fields {
		col := t.columns[field]
		value, err := prepareValueForQuery(col, doc[field])
		if err != nil {
			return nil, fmt.Errorf("field '%s': %w", field, err)
		}
		args[i] = value
	}
	return args, nil
}

// prepareValueForQuery converts a document value to what is stored for its column.
func prepareValueForQuery(col schema.ColumnDefinition, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case schema.FieldTypeBoolean:
		b, ok := query.ToBool(value)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}
		if b {
			return 1, nil
		}
		return 0, nil
	case schema.FieldTypeDate:
		if ts, ok := query.ToTime(value); ok {
			return ts.UTC().Format(time.RFC3339Nano), nil
		}
		if s, ok := value.(string); ok {
			ts, err := query.ParseTime(s)
			if err != nil {
				return nil, err
			}
			return ts.UTC().Format(time.RFC3339Nano), nil
		}
		return nil, fmt.Errorf("expected date, got %T", value)
	case schema.FieldTypeString, schema.FieldTypeEnum:
		if s, ok := query.ToString(value); ok {
			return s, nil
		}
		return value, nil
	default:
		return value, nil
	}
}
