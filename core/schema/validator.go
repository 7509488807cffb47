package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when a definition does not pass validation. It keeps
// every issue found so callers can report them all at once.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Path != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
		} else {
			msgs = append(msgs, issue.Message)
		}
	}
	return "invalid table definition: " + strings.Join(msgs, "; ")
}

// Validator checks table definitions and the documents loaded for them. Struct
// level rules are declared as tags on the definition types; rules that span
// several fields are checked here.
type Validator struct {
	structs *validator.Validate
	issues  []Issue
}

// NewValidator creates a new Validator. It can be reused for multiple definitions.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{structs: v}
}

// Check validates a definition and returns every issue found.
func (v *Validator) Check(def *TableDefinition) ValidationResult {
	v.issues = make([]Issue, 0)
	if def == nil {
		v.addIssue("DEFINITION_MISSING", "table definition is nil", "")
		return ValidationResult{Valid: false, Issues: v.issues}
	}

	if err := v.structs.Struct(def); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				v.addIssue(tagIssueCode(fe.Tag()), describeFieldError(fe), trimNamespace(fe.Namespace()))
			}
		} else {
			v.addIssue("DEFINITION_INVALID", err.Error(), "")
		}
	}

	v.validateColumns(def)
	v.validateDefaultSort(def)

	return ValidationResult{Valid: len(v.issues) == 0, Issues: v.issues}
}

// Validate validates a definition and returns a *ValidationError when it fails.
func (v *Validator) Validate(def *TableDefinition) error {
	result := v.Check(def)
	if result.Valid {
		return nil
	}
	return &ValidationError{Issues: result.Issues}
}

// validateColumns checks rules that span more than one column.
func (v *Validator) validateColumns(def *TableDefinition) {
	seen := make(map[string]int, len(def.Columns))
	for i, col := range def.Columns {
		path := fmt.Sprintf("columns[%d]", i)
		if col.ID == "" {
			continue
		}
		if first, dup := seen[col.ID]; dup {
			v.addIssue("DUPLICATE_COLUMN", fmt.Sprintf("column '%s' is already defined at columns[%d]", col.ID, first), path+".id")
			continue
		}
		seen[col.ID] = i

		if len(col.Values) > 0 && col.Type != FieldTypeEnum {
			v.addIssue("UNEXPECTED_VALUES", fmt.Sprintf("column '%s' lists values but is of type %s", col.ID, col.Type), path+".values")
		}
		if col.Searchable && col.Type == FieldTypeBoolean {
			v.addIssue("UNSEARCHABLE_TYPE", fmt.Sprintf("column '%s' of type boolean cannot be searched", col.ID), path+".searchable")
		}
	}
}

// validateDefaultSort checks that the default sort names a sortable column.
func (v *Validator) validateDefaultSort(def *TableDefinition) {
	if def.DefaultSort == nil || def.DefaultSort.Column == "" {
		return
	}
	col := def.FindColumn(def.DefaultSort.Column)
	if col == nil {
		v.addIssue("UNKNOWN_COLUMN", fmt.Sprintf("default sort column '%s' is not defined", def.DefaultSort.Column), "defaultSort.column")
		return
	}
	if !col.Sortable {
		v.addIssue("COLUMN_NOT_SORTABLE", fmt.Sprintf("default sort column '%s' is not sortable", col.ID), "defaultSort.column")
	}
}

// ValidateDocument checks that the values of a document fit the column types of
// a definition. Missing and nil values are allowed.
func (v *Validator) ValidateDocument(def *TableDefinition, doc Document) ValidationResult {
	v.issues = make([]Issue, 0)
	for _, col := range def.Columns {
		value, ok := doc[col.SourceField()]
		if !ok || value == nil {
			continue
		}
		if !valueFitsType(value, col.Type) {
			v.addIssue("TYPE_MISMATCH", fmt.Sprintf("value of type %T does not fit column '%s' of type %s", value, col.ID, col.Type), col.SourceField())
			continue
		}
		if col.Type == FieldTypeEnum && len(col.Values) > 0 {
			s := reflect.ValueOf(value).String()
			if !containsString(col.Values, s) {
				v.addIssue("INVALID_ENUM_VALUE", fmt.Sprintf("value '%s' is not one of %v", s, col.Values), col.SourceField())
			}
		}
	}
	return ValidationResult{Valid: len(v.issues) == 0, Issues: v.issues}
}

// valueFitsType reports whether a Go value can be compared as the given type.
func valueFitsType(value any, t FieldType) bool {
	rv := reflect.ValueOf(value)
	switch {
	case t.IsNumeric():
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	case t.IsTextual():
		return rv.Kind() == reflect.String
	case t == FieldTypeBoolean:
		return rv.Kind() == reflect.Bool
	case t == FieldTypeDate:
		switch value.(type) {
		case time.Time, *time.Time:
			return true
		}
		return false
	}
	return false
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// trimNamespace drops the root struct name from a validator namespace, turning
// "TableDefinition.columns[0].id" into "columns[0].id".
func trimNamespace(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func tagIssueCode(tag string) string {
	switch tag {
	case "required":
		return "REQUIRED_FIELD_MISSING"
	case "oneof":
		return "INVALID_VALUE"
	case "gt", "min":
		return "OUT_OF_RANGE"
	default:
		return "INVALID_FIELD"
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s], got '%v'", fe.Field(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("'%s' must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("'%s' must have at least %s item(s)", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("'%s' failed the '%s' rule", fe.Field(), fe.Tag())
	}
}

// addIssue adds a new validation issue to the validator's list of issues.
func (v *Validator) addIssue(code, message, path string) {
	v.issues = append(v.issues, Issue{
		Code:     code,
		Message:  message,
		Path:     path,
		Severity: "error",
	})
}
