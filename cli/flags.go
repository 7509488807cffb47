package cli

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
)

// ParseFilter parses a --filter flag of the form column=value, column=a,b,c or
// column=from..to. Either bound of a range may be left out. Values are parsed
// according to the column type in def.
func ParseFilter(def *schema.TableDefinition, flag string) (string, query.Constraint, error) {
	id, raw, ok := strings.Cut(flag, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return "", query.Constraint{}, fmt.Errorf("invalid filter '%s': expected column=value", flag)
	}
	col := def.FindColumn(id)
	if col == nil {
		return "", query.Constraint{}, fmt.Errorf("invalid filter '%s': unknown column '%s'", flag, id)
	}

	parse := func(s string) (any, error) {
		v, err := query.ParseValue(s, col.Type)
		if err != nil {
			return nil, fmt.Errorf("invalid filter '%s': %w", flag, err)
		}
		return v, nil
	}

	if from, to, isRange := strings.Cut(raw, ".."); isRange {
		var lo, hi any
		var err error
		if strings.TrimSpace(from) != "" {
			if lo, err = parse(from); err != nil {
				return "", query.Constraint{}, err
			}
		}
		if strings.TrimSpace(to) != "" {
			if hi, err = parse(to); err != nil {
				return "", query.Constraint{}, err
			}
		}
		return id, query.Between(lo, hi), nil
	}

	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		values := make([]query.FilterValue, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, err := parse(part)
			if err != nil {
				return "", query.Constraint{}, err
			}
			values = append(values, v)
		}
		return id, query.OneOf(values...), nil
	}

	v, err := parse(raw)
	if err != nil {
		return "", query.Constraint{}, err
	}
	return id, query.Exact(v), nil
}

// ParseSort parses a --sort flag of the form column, column:asc or column:desc.
// A bare column sorts descending, like the first click on a header.
func ParseSort(flag string) (*query.SortConfiguration, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return nil, nil
	}
	column, dir, hasDir := strings.Cut(flag, ":")
	if column == "" {
		return nil, fmt.Errorf("invalid sort '%s': missing column", flag)
	}
	direction := query.SortDirectionDesc
	if hasDir {
		switch query.SortDirection(strings.ToLower(dir)) {
		case query.SortDirectionAsc:
			direction = query.SortDirectionAsc
		case query.SortDirectionDesc:
		default:
			return nil, fmt.Errorf("invalid sort '%s': direction must be asc or desc", flag)
		}
	}
	return &query.SortConfiguration{Column: column, Direction: direction}, nil
}

// viewFlags holds the flags shared by the commands that build a view.
type viewFlags struct {
	definition string
	records    string
	sqlite     string
	table      string
	search     string
	filters    []string
	sort       string
	page       int
	pageSize   int
}

// state turns the flags into a view state for def. A zero page size keeps the
// size the table was created with.
func (f *viewFlags) state(def *schema.TableDefinition) (query.ViewState, error) {
	vb := query.NewViewBuilder().Search(f.search)
	for _, flag := range f.filters {
		id, c, err := ParseFilter(def, flag)
		if err != nil {
			return query.ViewState{}, err
		}
		vb.Where(id).Matches(c)
	}

	sort, err := ParseSort(f.sort)
	if err != nil {
		return query.ViewState{}, err
	}
	if sort != nil {
		vb.OrderBy(sort.Column, sort.Direction)
	} else if def.DefaultSort != nil {
		vb.OrderBy(def.DefaultSort.Column, query.SortDirection(def.DefaultSort.Direction))
	}

	if f.page < 1 {
		return query.ViewState{}, fmt.Errorf("invalid page %d: pages start at 1", f.page)
	}
	return vb.Page(f.page-1, f.pageSize).Build(), nil
}
