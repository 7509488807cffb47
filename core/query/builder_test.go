package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewViewBuilder(t *testing.T) {
	vb := NewViewBuilder()
	assert.NotNil(t, vb)
	assert.Empty(t, vb.state.Search)
	assert.Nil(t, vb.state.Filters)
	assert.Nil(t, vb.state.Sort)
	assert.Equal(t, PageSpec{}, vb.state.Page)
}

func TestViewBuilder_Build(t *testing.T) {
	vb := NewViewBuilder()
	assert.Equal(t, ViewState{}, vb.Build())

	vb.Limit(10)
	state := vb.Build()
	assert.Equal(t, 10, state.Page.Size)
	assert.Equal(t, 0, state.Page.Index)

	// Built states do not share maps with the builder.
	vb.Where("status").Eq("PAID")
	built := vb.Build()
	built.Filters["status"] = Exact("PENDING")
	assert.Equal(t, Exact("PAID"), vb.state.Filters["status"])
}

func TestViewBuilder_Clone(t *testing.T) {
	vb := NewViewBuilder().Limit(10).OrderByAsc("customer").Where("status").Eq("PAID")
	cloned := vb.Clone()

	assert.NotNil(t, cloned)
	assert.Equal(t, vb.state, cloned.state)

	cloned.Limit(20).OrderByDesc("amount").Where("status").Eq("PENDING")
	assert.Equal(t, 10, vb.state.Page.Size)
	assert.Equal(t, "customer", vb.state.Sort.Column)
	assert.Equal(t, Exact("PAID"), vb.state.Filters["status"])
	assert.Equal(t, 20, cloned.state.Page.Size)
	assert.Equal(t, "amount", cloned.state.Sort.Column)
}

func TestViewBuilder_Reset(t *testing.T) {
	vb := NewViewBuilder().Search("acme").Limit(10).OrderByAsc("customer").Where("status").Eq("PAID")
	assert.NotNil(t, vb.state.Sort)
	assert.NotEmpty(t, vb.state.Filters)

	vb.Reset()
	assert.Equal(t, ViewState{}, vb.state)
}

func TestViewBuilder_Search(t *testing.T) {
	state := NewViewBuilder().Search("crane").Build()
	assert.Equal(t, "crane", state.Search)
}

func TestViewBuilder_Where(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*ViewBuilder) *ViewBuilder
		expected Constraint
	}{
		{"Eq", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").Eq(100) }, Exact(100)},
		{"In", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").In(50, 100) }, OneOf(50, 100)},
		{"Between", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").Between(10, 20) }, Between(10, 20)},
		{"Gte", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").Gte(10) }, Between(10, nil)},
		{"Lte", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").Lte(20) }, Between(nil, 20)},
		{"Matches", func(vb *ViewBuilder) *ViewBuilder { return vb.Where("amount").Matches(OneOf(1)) }, OneOf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.build(NewViewBuilder()).Build()
			assert.Len(t, state.Filters, 1)
			assert.Equal(t, tt.expected, state.Filters["amount"])
		})
	}

	t.Run("Later constraint replaces earlier", func(t *testing.T) {
		state := NewViewBuilder().Where("status").Eq("PAID").Where("status").In("PENDING").Build()
		assert.Equal(t, OneOf("PENDING"), state.Filters["status"])
	})
}

func TestViewBuilder_Without(t *testing.T) {
	state := NewViewBuilder().
		Where("status").Eq("PAID").
		Where("amount").Gte(10).
		Without("status").
		Build()
	assert.Len(t, state.Filters, 1)
	assert.Contains(t, state.Filters, "amount")

	// Removing from an empty builder is a no-op.
	assert.NotPanics(t, func() { NewViewBuilder().Without("status") })
}

func TestViewBuilder_OrderBy(t *testing.T) {
	state := NewViewBuilder().OrderBy("amount", SortDirectionDesc).Build()
	assert.Equal(t, &SortConfiguration{Column: "amount", Direction: SortDirectionDesc}, state.Sort)

	state = NewViewBuilder().OrderByDesc("amount").OrderByAsc("customer").Build()
	assert.Equal(t, &SortConfiguration{Column: "customer", Direction: SortDirectionAsc}, state.Sort)

	state = NewViewBuilder().OrderByAsc("customer").Unsorted().Build()
	assert.Nil(t, state.Sort)
}

func TestViewBuilder_Page(t *testing.T) {
	state := NewViewBuilder().Page(3, 25).Build()
	assert.Equal(t, PageSpec{Index: 3, Size: 25}, state.Page)
	assert.Equal(t, 75, state.Page.Offset())

	state = NewViewBuilder().Page(3, 25).Limit(10).Build()
	assert.Equal(t, PageSpec{Index: 3, Size: 10}, state.Page)
}
