package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCodes(issues []Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, issue := range issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

func validDefinition() *TableDefinition {
	return &TableDefinition{
		Name:     "payments",
		PageSize: 20,
		Columns: []ColumnDefinition{
			{ID: "reference", Type: FieldTypeString, Searchable: true, Sortable: true},
			{ID: "amount", Type: FieldTypeNumber, Sortable: true, Filterable: true},
			{ID: "status", Type: FieldTypeEnum, Values: []string{"PAID", "PENDING"}, Filterable: true},
			{ID: "dueDate", Type: FieldTypeDate, Sortable: true},
		},
	}
}

func TestValidator_Check(t *testing.T) {
	v := NewValidator()

	t.Run("Valid definition", func(t *testing.T) {
		result := v.Check(validDefinition())
		assert.True(t, result.Valid)
		assert.Empty(t, result.Issues)
		assert.NoError(t, v.Validate(validDefinition()))
	})

	t.Run("Nil definition", func(t *testing.T) {
		result := v.Check(nil)
		assert.False(t, result.Valid)
		assert.Equal(t, []string{"DEFINITION_MISSING"}, issueCodes(result.Issues))
	})

	t.Run("Non-positive page size", func(t *testing.T) {
		def := validDefinition()
		def.PageSize = 0
		result := v.Check(def)
		assert.False(t, result.Valid)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "OUT_OF_RANGE", result.Issues[0].Code)
		assert.Equal(t, "pageSize", result.Issues[0].Path)
	})

	t.Run("Unknown field type", func(t *testing.T) {
		def := validDefinition()
		def.Columns[1].Type = "money"
		result := v.Check(def)
		assert.False(t, result.Valid)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "INVALID_VALUE", result.Issues[0].Code)
		assert.Equal(t, "columns[1].type", result.Issues[0].Path)
	})

	t.Run("Missing column id", func(t *testing.T) {
		def := validDefinition()
		def.Columns[0].ID = ""
		result := v.Check(def)
		assert.Contains(t, issueCodes(result.Issues), "REQUIRED_FIELD_MISSING")
	})

	t.Run("Duplicate column", func(t *testing.T) {
		def := validDefinition()
		def.Columns = append(def.Columns, ColumnDefinition{ID: "amount", Type: FieldTypeNumber})
		result := v.Check(def)
		assert.Equal(t, []string{"DUPLICATE_COLUMN"}, issueCodes(result.Issues))
	})

	t.Run("Values on non-enum column", func(t *testing.T) {
		def := validDefinition()
		def.Columns[0].Values = []string{"a"}
		result := v.Check(def)
		assert.Equal(t, []string{"UNEXPECTED_VALUES"}, issueCodes(result.Issues))
	})

	t.Run("Default sort on unknown column", func(t *testing.T) {
		def := validDefinition()
		def.DefaultSort = &SortDefinition{Column: "nope", Direction: "asc"}
		result := v.Check(def)
		assert.Equal(t, []string{"UNKNOWN_COLUMN"}, issueCodes(result.Issues))
	})

	t.Run("Default sort on unsortable column", func(t *testing.T) {
		def := validDefinition()
		def.DefaultSort = &SortDefinition{Column: "status", Direction: "desc"}
		result := v.Check(def)
		assert.Equal(t, []string{"COLUMN_NOT_SORTABLE"}, issueCodes(result.Issues))
	})

	t.Run("Validate returns every issue", func(t *testing.T) {
		def := validDefinition()
		def.PageSize = -1
		def.Columns = append(def.Columns, ColumnDefinition{ID: "amount", Type: FieldTypeNumber})
		err := v.Validate(def)
		require.Error(t, err)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Issues, 2)
		assert.Contains(t, err.Error(), "pageSize")
	})
}

func TestValidator_ValidateDocument(t *testing.T) {
	v := NewValidator()
	def := validDefinition()

	tests := []struct {
		name  string
		doc   Document
		codes []string
	}{
		{
			name: "Matching document",
			doc:  Document{"reference": "INV-1", "amount": 10.5, "status": "PAID", "dueDate": time.Now()},
		},
		{
			name: "Missing and nil values",
			doc:  Document{"reference": nil},
		},
		{
			name:  "Number as string",
			doc:   Document{"amount": "10"},
			codes: []string{"TYPE_MISMATCH"},
		},
		{
			name:  "Unknown enum value",
			doc:   Document{"status": "VOID"},
			codes: []string{"INVALID_ENUM_VALUE"},
		},
		{
			name:  "Date as string",
			doc:   Document{"dueDate": "2024-01-01"},
			codes: []string{"TYPE_MISMATCH"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateDocument(def, tt.doc)
			assert.Equal(t, len(tt.codes) == 0, result.Valid)
			if len(tt.codes) > 0 {
				assert.Equal(t, tt.codes, issueCodes(result.Issues))
			}
		})
	}
}
