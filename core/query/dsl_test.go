package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstraint_IsEmpty(t *testing.T) {
	tests := []struct {
		name       string
		constraint Constraint
		expected   bool
	}{
		{"exact", Exact("PAID"), false},
		{"exact nil", Exact(nil), false},
		{"set", OneOf("PAID"), false},
		{"empty set", OneOf(), true},
		{"range", Between(1, 2), false},
		{"lower bound only", AtLeast(1), false},
		{"upper bound only", AtMost(2), false},
		{"unbounded range", Between(nil, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.constraint.IsEmpty())
		})
	}
}

func TestConstraintConstructors(t *testing.T) {
	assert.Equal(t, Constraint{Kind: ConstraintExact, Value: 5}, Exact(5))
	assert.Equal(t, Constraint{Kind: ConstraintSet, Values: []FilterValue{"a", "b"}}, OneOf("a", "b"))
	assert.Equal(t, Constraint{Kind: ConstraintRange, From: 1, To: 9}, Between(1, 9))
	assert.Equal(t, Constraint{Kind: ConstraintRange, From: 1}, AtLeast(1))
	assert.Equal(t, Constraint{Kind: ConstraintRange, To: 9}, AtMost(9))
}

func TestViewState_Clone(t *testing.T) {
	original := ViewState{
		Search:  "acme",
		Filters: map[string]Constraint{"status": Exact("PAID")},
		Sort:    &SortConfiguration{Column: "amount", Direction: SortDirectionDesc},
		Page:    PageSpec{Index: 1, Size: 10},
	}

	cloned := original.Clone()
	assert.Equal(t, original, cloned)

	cloned.Filters["amount"] = AtLeast(10)
	cloned.Sort.Direction = SortDirectionAsc
	cloned.Page.Index = 4

	assert.Len(t, original.Filters, 1)
	assert.Equal(t, SortDirectionDesc, original.Sort.Direction)
	assert.Equal(t, 1, original.Page.Index)

	empty := ViewState{}.Clone()
	assert.Nil(t, empty.Filters)
	assert.Nil(t, empty.Sort)
}

func TestAggregationConfiguration_Key(t *testing.T) {
	tests := []struct {
		agg      AggregationConfiguration
		expected string
	}{
		{AggregationConfiguration{Type: AggregationTypeCount}, "count"},
		{AggregationConfiguration{Type: AggregationTypeSum, Column: "amount"}, "sum_amount"},
		{AggregationConfiguration{Type: AggregationTypeAvg, Column: "amount", Alias: "mean"}, "mean"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.agg.Key())
		})
	}
}
