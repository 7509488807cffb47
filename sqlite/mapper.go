package sqlite

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-tabula/core/schema"
)

// Options configures how a Table maps a definition onto SQLite.
type Options struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE statements.
	IfNotExists bool

	// DropIfExists drops the table before creating it.
	DropIfExists bool

	// TablePrefix is prepended to the table name.
	TablePrefix string

	// TableName replaces the definition's name as the base table name.
	TableName string
}

// DefaultOptions returns options that create missing tables and leave existing
// ones alone.
func DefaultOptions() *Options {
	return &Options{
		IfNotExists: true,
	}
}

// CreateTableSQL generates the CREATE TABLE statement for the definition. Every
// column is nullable; enum columns get a CHECK constraint over their values.
func (t *Table) CreateTableSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if t.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(t.Name()) + " (\n")

	columns := make([]string, 0, len(t.def.Columns))
	seen := make(map[string]bool, len(t.def.Columns))
	for _, col := range t.def.Columns {
		field := col.SourceField()
		if seen[field] {
			continue
		}
		seen[field] = true
		columns = append(columns, "    "+buildColumnDefinition(col))
	}
	sb.WriteString(strings.Join(columns, ",\n"))
	sb.WriteString("\n);")
	return sb.String()
}

// buildColumnDefinition constructs the DDL of a single column.
func buildColumnDefinition(col schema.ColumnDefinition) string {
	name := quoteIdentifier(col.SourceField())
	parts := []string{name, GetColumnType(col.Type)}
	if col.Type == schema.FieldTypeEnum && len(col.Values) > 0 {
		checkValues := make([]string, 0, len(col.Values))
		for _, v := range col.Values {
			checkValues = append(checkValues, quoteLiteral(v))
		}
		parts = append(parts, fmt.Sprintf("CHECK(%s IN (%s))", name, strings.Join(checkValues, ", ")))
	}
	return strings.Join(parts, " ")
}

// GetColumnType maps a schema.FieldType to its SQLite column type. Dates are
// stored as RFC 3339 text.
func GetColumnType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum, schema.FieldTypeDate:
		return "TEXT"
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		return "REAL"
	case schema.FieldTypeInteger, schema.FieldTypeBoolean:
		return "INTEGER"
	default:
		return "BLOB"
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
