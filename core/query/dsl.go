// Package query defines the view-state language of a table: the global search
// string, per-column filter constraints, the active sort and the requested page.
// It also holds the pure stages that turn a record set and a view state into the
// rows a table shows.
package query

import (
	"slices"
)

// ConstraintKind identifies the variant held by a Constraint.
type ConstraintKind string

// Supported constraint kinds.
const (
	ConstraintExact ConstraintKind = "exact" // Value equals the field value.
	ConstraintSet   ConstraintKind = "set"   // The field value is one of Values.
	ConstraintRange ConstraintKind = "range" // From <= field value <= To, either bound optional.
)

// FilterValue is a value used in a filter constraint.
type FilterValue any

// Constraint is the accepted-value rule for one column. Only the fields that
// belong to Kind are read.
type Constraint struct {
	Kind   ConstraintKind `json:"kind"`
	Value  FilterValue    `json:"value,omitempty"`
	Values []FilterValue  `json:"values,omitempty"`
	From   FilterValue    `json:"from,omitempty"`
	To     FilterValue    `json:"to,omitempty"`
}

// Exact builds a constraint accepting a single value.
func Exact(value FilterValue) Constraint {
	return Constraint{Kind: ConstraintExact, Value: value}
}

// OneOf builds a constraint accepting any of the given values.
func OneOf(values ...FilterValue) Constraint {
	return Constraint{Kind: ConstraintSet, Values: values}
}

// Between builds an inclusive range constraint. A nil bound leaves that side open.
func Between(from, to FilterValue) Constraint {
	return Constraint{Kind: ConstraintRange, From: from, To: to}
}

// AtLeast builds a range constraint open at the top.
func AtLeast(from FilterValue) Constraint {
	return Between(from, nil)
}

// AtMost builds a range constraint open at the bottom.
func AtMost(to FilterValue) Constraint {
	return Between(nil, to)
}

// IsEmpty reports whether the constraint carries no restriction at all: an empty
// set or a range without bounds. Empty constraints clear the column filter.
func (c Constraint) IsEmpty() bool {
	switch c.Kind {
	case ConstraintSet:
		return len(c.Values) == 0
	case ConstraintRange:
		return c.From == nil && c.To == nil
	}
	return false
}

// Clone returns a copy that does not share its Values with the receiver.
func (c Constraint) Clone() Constraint {
	out := c
	out.Values = slices.Clone(c.Values)
	return out
}

// SortDirection specifies the direction for sorting.
type SortDirection string

// Supported sort directions.
const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// SortConfiguration defines the active sort of a table.
type SortConfiguration struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// PageSpec selects one page of the filtered and sorted rows.
type PageSpec struct {
	Index int `json:"index"`
	Size  int `json:"size"`
}

// Offset returns the position of the first row of the page.
func (p PageSpec) Offset() int {
	return p.Index * p.Size
}

// ViewState is the complete input, besides the records, that decides what a table
// shows.
type ViewState struct {
	Search  string                `json:"search,omitempty"`
	Filters map[string]Constraint `json:"filters,omitempty"`
	Sort    *SortConfiguration    `json:"sort,omitempty"`
	Page    PageSpec              `json:"page"`
}

// Clone returns a copy that shares no maps or pointers with the receiver.
func (s ViewState) Clone() ViewState {
	out := s
	if s.Filters != nil {
		out.Filters = make(map[string]Constraint, len(s.Filters))
		for id, c := range s.Filters {
			out.Filters[id] = c.Clone()
		}
	}
	if s.Sort != nil {
		sort := *s.Sort
		out.Sort = &sort
	}
	return out
}

// AggregationType specifies the type of aggregation to be performed.
type AggregationType string

// Supported aggregation types.
const (
	AggregationTypeCount AggregationType = "count"
	AggregationTypeSum   AggregationType = "sum"
	AggregationTypeAvg   AggregationType = "avg"
	AggregationTypeMin   AggregationType = "min"
	AggregationTypeMax   AggregationType = "max"
)

// AggregationConfiguration defines an aggregation over one column of the
// filtered rows.
type AggregationConfiguration struct {
	Type   AggregationType // The type of aggregation.
	Column string          // The column to aggregate. Ignored by count.
	Alias  string          // The key of the result. Defaults to "<type>_<column>".
}

// Key returns the name the aggregation result is stored under.
func (a AggregationConfiguration) Key() string {
	if a.Alias != "" {
		return a.Alias
	}
	if a.Column == "" {
		return string(a.Type)
	}
	return string(a.Type) + "_" + a.Column
}
