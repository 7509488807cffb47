// Package utils converts between typed rows and schemaless documents. Typed rows
// are what the dashboard works with; documents are what files and databases
// hand back.
package utils

import (
	"fmt"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/asaidimu/go-tabula/core/schema"
)

// StructToMap converts a struct, or a pointer to one, into a document. Fields
// are named by their json tags. Values take their JSON shape: numbers become
// float64, times become RFC 3339 strings and nested structs become maps.
//
// Example:
//
//	type Supplier struct {
//		Name   string  `json:"name"`
//		Rating float64 `json:"rating"`
//	}
//	doc, err := StructToMap(Supplier{Name: "Pwani Traders", Rating: 4.5})
//	// doc is schema.Document{"name": "Pwani Traders", "rating": 4.5}
func StructToMap[T any](record T) (schema.Document, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}
	var doc schema.Document
	if err := json.Unmarshal(jsonBytes, &doc); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to document: %w", err)
	}
	return doc, nil
}

// MapToStruct converts a document into a new T, the inverse of StructToMap.
// Values of type time.Time are accepted for time fields as well as strings.
func MapToStruct[T any](input schema.Document) (T, error) {
	var zero T
	if input == nil {
		return zero, fmt.Errorf("MapToStruct: input map cannot be nil")
	}

	typ := reflect.TypeOf(zero)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return zero, fmt.Errorf("MapToStruct: generic type T must be a struct type (or pointer to struct), got %s", typ.Kind())
	}

	jsonBytes, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to marshal input map to JSON: %w", err)
	}
	var result T
	if err := json.Unmarshal(jsonBytes, &result); err != nil {
		return zero, fmt.Errorf("MapToStruct: failed to unmarshal JSON to target struct: %w", err)
	}
	return result, nil
}

// StructsToMaps converts every record with StructToMap.
func StructsToMaps[T any](records []T) ([]schema.Document, error) {
	docs := make([]schema.Document, 0, len(records))
	for i, record := range records {
		doc, err := StructToMap(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// MapsToStructs converts every document with MapToStruct.
func MapsToStructs[T any](docs []schema.Document) ([]T, error) {
	records := make([]T, 0, len(docs))
	for i, doc := range docs {
		record, err := MapToStruct[T](doc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}
