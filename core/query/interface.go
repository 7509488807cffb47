package query

import (
	"github.com/asaidimu/go-tabula/core/schema"
)

// FieldAccessor extracts the value of a column from a record. Accessors must be
// pure with respect to the record; derived values such as "days late" may also
// read the current time.
type FieldAccessor[R any] func(record R) any

// Column describes how a table reads, searches, sorts and filters one value of
// its records.
type Column[R any] struct {
	ID         string
	Type       schema.FieldType
	Accessor   FieldAccessor[R]
	Searchable bool
	Sortable   bool
	Filterable bool
}

// DocumentField returns an accessor reading a key of a schema.Document.
func DocumentField(name string) FieldAccessor[schema.Document] {
	return func(doc schema.Document) any {
		return doc[name]
	}
}
