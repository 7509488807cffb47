// Package schema describes the shape of a table: which columns exist, what kind of
// value each column holds, and which columns take part in search, sorting and
// filtering. Definitions are plain data so they can be stored next to the screens
// that use them and loaded from JSON or YAML.
package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
	"sigs.k8s.io/yaml"
)

// FieldType represents the kind of value a column holds. It decides how values are
// compared when sorting and how filter constraints are interpreted.
type FieldType string

const (
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data
	FieldTypeInteger FieldType = "integer" // Numeric data
	FieldTypeDecimal FieldType = "decimal" // Numeric data
	FieldTypeBoolean FieldType = "boolean" // True/false values
	FieldTypeDate    FieldType = "date"    // Instants, compared by time
	FieldTypeEnum    FieldType = "enum"    // One out of a set of pre-defined items
)

// IsNumeric reports whether values of this type compare numerically.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeNumber || t == FieldTypeInteger || t == FieldTypeDecimal
}

// IsTextual reports whether values of this type compare as strings.
func (t FieldType) IsTextual() bool {
	return t == FieldTypeString || t == FieldTypeEnum
}

// Document is a schemaless row, keyed by field name.
type Document map[string]any

// SortDefinition is the sort a table starts with.
type SortDefinition struct {
	Column    string `json:"column" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=asc desc"`
}

// ColumnDefinition defines a single column of a table.
type ColumnDefinition struct {
	// ID identifies the column in filter and sort requests.
	ID string `json:"id" validate:"required"`
	// Field is the document key the column reads. Defaults to ID.
	Field string    `json:"field,omitempty"`
	Type  FieldType `json:"type" validate:"required,oneof=string number integer decimal boolean date enum"`
	// Label is the header shown by renderers. Defaults to ID.
	Label *string `json:"label,omitempty"`
	// Values lists the accepted values of an enum column.
	Values      []string `json:"values,omitempty"`
	Searchable  bool     `json:"searchable,omitempty"`
	Sortable    bool     `json:"sortable,omitempty"`
	Filterable  bool     `json:"filterable,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// SourceField returns the document key the column reads.
func (c ColumnDefinition) SourceField() string {
	if c.Field != "" {
		return c.Field
	}
	return c.ID
}

// Header returns the label shown for the column.
func (c ColumnDefinition) Header() string {
	if c.Label != nil && *c.Label != "" {
		return *c.Label
	}
	return c.ID
}

// TableDefinition is the complete configuration of one table instance. It is
// supplied once and is not changed while the table is in use.
type TableDefinition struct {
	Name        string             `json:"name" validate:"required"`
	Version     string             `json:"version,omitempty"`
	Description *string            `json:"description,omitempty"`
	PageSize    int                `json:"pageSize" validate:"gt=0"`
	DefaultSort *SortDefinition    `json:"defaultSort,omitempty"`
	Columns     []ColumnDefinition `json:"columns" validate:"required,min=1,dive"`
}

// Issue represents a validation or operational issue.
type Issue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path,omitempty"`
	Severity string `json:"severity,omitempty"` // e.g., "error", "warning"
}

// ValidationResult carries the outcome of validating a definition or document.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// ParseDefinition decodes a table definition from JSON or YAML. JSON is accepted
// as-is since it is a subset of YAML.
func ParseDefinition(data []byte) (*TableDefinition, error) {
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definition: %w", err)
	}

	var def TableDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to decode table definition: %w", err)
	}
	return &def, nil
}

// LoadDefinition parses and validates a definition in one step.
func LoadDefinition(data []byte) (*TableDefinition, error) {
	def, err := ParseDefinition(data)
	if err != nil {
		return nil, err
	}
	if err := NewValidator().Validate(def); err != nil {
		return nil, err
	}
	return def, nil
}
