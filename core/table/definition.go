package table

import (
	"fmt"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
)

// ColumnsFromDefinition builds document columns from a table definition. The
// definition is validated first.
func ColumnsFromDefinition(def *schema.TableDefinition) ([]query.Column[schema.Document], error) {
	if err := schema.NewValidator().Validate(def); err != nil {
		return nil, err
	}

	columns := make([]query.Column[schema.Document], 0, len(def.Columns))
	for _, col := range def.Columns {
		columns = append(columns, query.Column[schema.Document]{
			ID:         col.ID,
			Type:       col.Type,
			Accessor:   query.DocumentField(col.SourceField()),
			Searchable: col.Searchable,
			Sortable:   col.Sortable,
			Filterable: col.Filterable,
		})
	}
	return columns, nil
}

// NewFromDefinition creates an engine over documents configured by a table
// definition. The definition's name and default sort are applied unless options
// override them.
func NewFromDefinition(docs []schema.Document, def *schema.TableDefinition, opts ...Option) (*Engine[schema.Document], error) {
	columns, err := ColumnsFromDefinition(def)
	if err != nil {
		return nil, err
	}

	defaults := []Option{WithName(def.Name)}
	if def.DefaultSort != nil {
		defaults = append(defaults, WithInitialState(query.ViewState{
			Sort: &query.SortConfiguration{
				Column:    def.DefaultSort.Column,
				Direction: query.SortDirection(def.DefaultSort.Direction),
			},
		}))
	}

	engine, err := New(docs, Config[schema.Document]{
		Columns:  columns,
		PageSize: def.PageSize,
	}, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create table '%s': %w", def.Name, err)
	}
	return engine, nil
}
