package query

// The builder is how saved views, default views and request handlers describe
// what a table should show without touching an engine directly.

// ViewBuilder provides a fluent API for building ViewState values.
type ViewBuilder struct {
	state ViewState
}

// NewViewBuilder creates a new, empty view builder instance.
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

// Build returns a copy of the constructed ViewState.
func (vb *ViewBuilder) Build() ViewState {
	return vb.state.Clone()
}

// Clone creates a copy of the builder that can be changed independently.
func (vb *ViewBuilder) Clone() *ViewBuilder {
	return &ViewBuilder{state: vb.state.Clone()}
}

// Reset clears all configuration, returning the builder to its initial state.
func (vb *ViewBuilder) Reset() *ViewBuilder {
	vb.state = ViewState{}
	return vb
}

// Search sets the global search string.
func (vb *ViewBuilder) Search(query string) *ViewBuilder {
	vb.state.Search = query
	return vb
}

// Where begins a constraint on a column. A later constraint on the same column
// replaces the earlier one.
func (vb *ViewBuilder) Where(column string) *ConstraintBuilder {
	return &ConstraintBuilder{parent: vb, column: column}
}

// Without removes the constraint on a column.
func (vb *ViewBuilder) Without(column string) *ViewBuilder {
	delete(vb.state.Filters, column)
	return vb
}

// OrderBy sets the active sort.
func (vb *ViewBuilder) OrderBy(column string, direction SortDirection) *ViewBuilder {
	vb.state.Sort = &SortConfiguration{Column: column, Direction: direction}
	return vb
}

// OrderByAsc sorts by a column in ascending order.
func (vb *ViewBuilder) OrderByAsc(column string) *ViewBuilder {
	return vb.OrderBy(column, SortDirectionAsc)
}

// OrderByDesc sorts by a column in descending order.
func (vb *ViewBuilder) OrderByDesc(column string) *ViewBuilder {
	return vb.OrderBy(column, SortDirectionDesc)
}

// Unsorted clears the active sort.
func (vb *ViewBuilder) Unsorted() *ViewBuilder {
	vb.state.Sort = nil
	return vb
}

// Limit sets the page size.
func (vb *ViewBuilder) Limit(size int) *ViewBuilder {
	vb.state.Page.Size = size
	return vb
}

// Page selects a page and its size.
func (vb *ViewBuilder) Page(index, size int) *ViewBuilder {
	vb.state.Page = PageSpec{Index: index, Size: size}
	return vb
}

// ConstraintBuilder is used to build the constraint of one column.
type ConstraintBuilder struct {
	parent *ViewBuilder
	column string
}

// Eq accepts a single value.
func (cb *ConstraintBuilder) Eq(value FilterValue) *ViewBuilder {
	return cb.set(Exact(value))
}

// In accepts any of the given values.
func (cb *ConstraintBuilder) In(values ...FilterValue) *ViewBuilder {
	return cb.set(OneOf(values...))
}

// Between accepts values in an inclusive range. A nil bound leaves that side open.
func (cb *ConstraintBuilder) Between(from, to FilterValue) *ViewBuilder {
	return cb.set(Between(from, to))
}

// Gte accepts values greater than or equal to from.
func (cb *ConstraintBuilder) Gte(from FilterValue) *ViewBuilder {
	return cb.set(AtLeast(from))
}

// Lte accepts values less than or equal to to.
func (cb *ConstraintBuilder) Lte(to FilterValue) *ViewBuilder {
	return cb.set(AtMost(to))
}

// Matches sets a prepared constraint.
func (cb *ConstraintBuilder) Matches(c Constraint) *ViewBuilder {
	return cb.set(c)
}

func (cb *ConstraintBuilder) set(c Constraint) *ViewBuilder {
	if cb.parent.state.Filters == nil {
		cb.parent.state.Filters = make(map[string]Constraint)
	}
	cb.parent.state.Filters[cb.column] = c
	return cb.parent
}
