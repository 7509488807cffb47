// Package table implements the view engine shared by every table of the
// dashboard. An Engine owns one view over an immutable record set: a global
// search string, per-column filters, an optional sort and the current page. The
// filtered and sorted rows are kept until one of their inputs changes, so moving
// between pages never filters or sorts again.
//
// An Engine is meant to be owned by a single caller. It performs no locking; give
// each surface that needs an independent view its own Engine.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/asaidimu/go-events"
	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
)

var (
	ErrInvalidPageSize      = errors.New("page size must be greater than zero")
	ErrUnknownColumn        = errors.New("unknown column")
	ErrDuplicateColumn      = errors.New("duplicate column")
	ErrEmptyColumnID        = errors.New("column id must not be empty")
	ErrMissingAccessor      = errors.New("column has no accessor")
	ErrColumnNotSortable    = errors.New("column is not sortable")
	ErrColumnNotFilterable  = errors.New("column is not filterable")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// Config is the fixed configuration of an engine.
type Config[R any] struct {
	Columns  []query.Column[R]
	PageSize int
}

type options struct {
	name    string
	logger  *zap.Logger
	initial *query.ViewState
}

// Option configures optional engine behavior.
type Option func(*options)

// WithLogger sets the logger used by the engine and its processor.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithName names the table. The name is attached to logs and events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithInitialState applies a view state right after construction, for example a
// default sort or a saved view. An invalid state fails construction.
func WithInitialState(state query.ViewState) Option {
	return func(o *options) {
		s := state.Clone()
		o.initial = &s
	}
}

// Engine computes the visible rows of one table view.
type Engine[R any] struct {
	name      string
	records   []R
	processor *query.Processor[R]
	logger    *zap.Logger

	search   string
	filters  map[string]query.Constraint
	sort     *query.SortConfiguration
	page     int
	pageSize int

	// view holds the filtered and sorted rows while dirty is false.
	view       []R
	dirty      bool
	recomputes int

	bus           *events.TypedEventBus[ViewEvent]
	subscriptions map[string]*SubscriptionInfo
	subMu         sync.RWMutex
}

// New creates an engine over records. The records are never modified; callers
// must not modify them either while the engine uses them, or must call
// Invalidate afterwards.
func New[R any](records []R, cfg Config[R], opts ...Option) (*Engine[R], error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	logger := o.logger
	if o.name != "" {
		logger = logger.With(zap.String("table", o.name))
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageSize, cfg.PageSize)
	}

	columns := make([]query.Column[R], 0, len(cfg.Columns))
	seen := make(map[string]struct{}, len(cfg.Columns))
	for i, col := range cfg.Columns {
		if col.ID == "" {
			return nil, fmt.Errorf("%w: column at index %d", ErrEmptyColumnID, i)
		}
		if _, exists := seen[col.ID]; exists {
			return nil, fmt.Errorf("%w: '%s'", ErrDuplicateColumn, col.ID)
		}
		if col.Accessor == nil {
			return nil, fmt.Errorf("%w: '%s'", ErrMissingAccessor, col.ID)
		}
		if col.Type == "" {
			col.Type = schema.FieldTypeString
		}
		seen[col.ID] = struct{}{}
		columns = append(columns, col)
	}

	e := &Engine[R]{
		name:          o.name,
		records:       records,
		processor:     query.NewProcessor(columns, logger),
		logger:        logger,
		filters:       make(map[string]query.Constraint),
		pageSize:      cfg.PageSize,
		dirty:         true,
		subscriptions: make(map[string]*SubscriptionInfo),
	}

	if o.initial != nil {
		if err := e.Apply(*o.initial); err != nil {
			return nil, fmt.Errorf("invalid initial state: %w", err)
		}
	}

	logger.Debug("Table engine created",
		zap.Int("records", len(records)),
		zap.Int("columns", len(columns)),
		zap.Int("pageSize", cfg.PageSize))
	return e, nil
}

// Name returns the table name, if one was configured.
func (e *Engine[R]) Name() string {
	return e.name
}

// Columns returns the configured columns in order.
func (e *Engine[R]) Columns() []query.Column[R] {
	return e.processor.Columns()
}

// SetRecords replaces the record set.
func (e *Engine[R]) SetRecords(records []R) {
	e.records = records
	e.invalidate()
	e.emit(ViewRecordsChanged, "set_records", map[string]any{"count": len(records)})
}

// Invalidate discards the computed view. Use it when accessors read values that
// change outside the engine, such as the current time.
func (e *Engine[R]) Invalidate() {
	e.invalidate()
}

func (e *Engine[R]) invalidate() {
	e.dirty = true
	e.view = nil
}

// SetGlobalFilter sets the search text. Surrounding whitespace is ignored and an
// empty string disables the search.
func (e *Engine[R]) SetGlobalFilter(q string) {
	q = strings.TrimSpace(q)
	if q == e.search {
		return
	}
	e.search = q
	e.invalidate()
	e.emit(ViewSearchChanged, "set_global_filter", q)
}

// SetColumnFilter sets the constraint of a column. A nil or empty constraint
// removes the column's filter. All column filters must hold for a row to pass.
func (e *Engine[R]) SetColumnFilter(id string, c *query.Constraint) error {
	if err := e.checkFilterable(id); err != nil {
		return err
	}

	var input any
	if c == nil || c.IsEmpty() {
		if _, active := e.filters[id]; !active {
			return nil
		}
		delete(e.filters, id)
	} else {
		e.filters[id] = c.Clone()
		input = c.Clone()
	}
	e.invalidate()
	e.emit(ViewFilterChanged, "set_column_filter", map[string]any{"column": id, "constraint": input})
	return nil
}

func (e *Engine[R]) checkFilterable(id string) error {
	col, ok := e.processor.Column(id)
	if !ok {
		return fmt.Errorf("cannot filter by '%s': %w", id, ErrUnknownColumn)
	}
	if !col.Filterable {
		return fmt.Errorf("cannot filter by '%s': %w", id, ErrColumnNotFilterable)
	}
	return nil
}

// ResetAllFilters clears the search text and every column filter. The sort and
// the current page are kept.
func (e *Engine[R]) ResetAllFilters() {
	if e.search == "" && len(e.filters) == 0 {
		return
	}
	e.search = ""
	clear(e.filters)
	e.invalidate()
	e.emit(ViewFiltersReset, "reset_all_filters", nil)
}

// SetSort advances the sort of a column through unsorted, descending and
// ascending, back to unsorted. Sorting by a different column starts over at
// descending on that column.
func (e *Engine[R]) SetSort(id string) error {
	if err := e.checkSortable(id); err != nil {
		return err
	}

	switch {
	case e.sort == nil || e.sort.Column != id:
		e.sort = &query.SortConfiguration{Column: id, Direction: query.SortDirectionDesc}
	case e.sort.Direction == query.SortDirectionDesc:
		e.sort = &query.SortConfiguration{Column: id, Direction: query.SortDirectionAsc}
	default:
		e.sort = nil
	}
	e.invalidate()
	e.emit(ViewSortChanged, "set_sort", e.Sort())
	return nil
}

// SetSortSpec sets the sort directly. A nil spec removes the sort.
func (e *Engine[R]) SetSortSpec(spec *query.SortConfiguration) error {
	if spec != nil {
		if err := e.checkSort(*spec); err != nil {
			return err
		}
		s := *spec
		e.sort = &s
	} else {
		e.sort = nil
	}
	e.invalidate()
	e.emit(ViewSortChanged, "set_sort_spec", e.Sort())
	return nil
}

func (e *Engine[R]) checkSortable(id string) error {
	col, ok := e.processor.Column(id)
	if !ok {
		return fmt.Errorf("cannot sort by '%s': %w", id, ErrUnknownColumn)
	}
	if !col.Sortable {
		return fmt.Errorf("cannot sort by '%s': %w", id, ErrColumnNotSortable)
	}
	return nil
}

func (e *Engine[R]) checkSort(spec query.SortConfiguration) error {
	if err := e.checkSortable(spec.Column); err != nil {
		return err
	}
	if spec.Direction != query.SortDirectionAsc && spec.Direction != query.SortDirectionDesc {
		return fmt.Errorf("%w: '%s'", ErrInvalidSortDirection, spec.Direction)
	}
	return nil
}

// SetPage selects the current page. Any index is accepted; pages outside the
// range reported by PageCount are empty.
func (e *Engine[R]) SetPage(index int) {
	if index == e.page {
		return
	}
	e.page = index
	e.emit(ViewPageChanged, "set_page", e.Page())
}

// SetPageSize changes the number of rows per page. The page index is kept.
func (e *Engine[R]) SetPageSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, size)
	}
	if size == e.pageSize {
		return nil
	}
	e.pageSize = size
	e.emit(ViewPageChanged, "set_page_size", e.Page())
	return nil
}

// Apply replaces the whole view state at once. The state is checked before
// anything changes, so a rejected state leaves the engine untouched. A page size
// of zero keeps the current size.
func (e *Engine[R]) Apply(state query.ViewState) error {
	if state.Page.Size < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, state.Page.Size)
	}
	for id := range state.Filters {
		if err := e.checkFilterable(id); err != nil {
			return err
		}
	}
	if state.Sort != nil {
		if err := e.checkSort(*state.Sort); err != nil {
			return err
		}
	}

	e.search = strings.TrimSpace(state.Search)
	e.filters = make(map[string]query.Constraint, len(state.Filters))
	for id, c := range state.Filters {
		if !c.IsEmpty() {
			e.filters[id] = c.Clone()
		}
	}
	e.sort = nil
	if state.Sort != nil {
		s := *state.Sort
		e.sort = &s
	}
	e.page = state.Page.Index
	if state.Page.Size > 0 {
		e.pageSize = state.Page.Size
	}
	e.invalidate()
	e.emit(ViewStateApplied, "apply", nil)
	return nil
}

// State returns a copy of the current view state.
func (e *Engine[R]) State() query.ViewState {
	return query.ViewState{
		Search:  e.search,
		Filters: e.filters,
		Sort:    e.sort,
		Page:    e.Page(),
	}.Clone()
}

// GlobalFilter returns the active search text.
func (e *Engine[R]) GlobalFilter() string {
	return e.search
}

// ColumnFilter returns the constraint of a column, if one is set.
func (e *Engine[R]) ColumnFilter(id string) (query.Constraint, bool) {
	c, ok := e.filters[id]
	return c.Clone(), ok
}

// Sort returns a copy of the active sort, or nil.
func (e *Engine[R]) Sort() *query.SortConfiguration {
	if e.sort == nil {
		return nil
	}
	s := *e.sort
	return &s
}

// Page returns the current page index and size.
func (e *Engine[R]) Page() query.PageSpec {
	return query.PageSpec{Index: e.page, Size: e.pageSize}
}

// compute returns the filtered and sorted rows, computing them if an input has
// changed since the last call.
func (e *Engine[R]) compute() []R {
	if !e.dirty {
		return e.view
	}
	state := query.ViewState{Search: e.search, Filters: e.filters}
	e.view = e.processor.Sort(e.processor.Filter(e.records, state), e.sort)
	e.dirty = false
	e.recomputes++
	e.logger.Debug("Recomputed table view",
		zap.Int("records", len(e.records)),
		zap.Int("filtered", len(e.view)))
	return e.view
}

// VisibleRows returns the rows of the current page.
func (e *Engine[R]) VisibleRows() []R {
	return e.processor.Paginate(e.compute(), e.Page())
}

// TotalFilteredCount returns the number of rows passing the search and filters.
func (e *Engine[R]) TotalFilteredCount() int {
	return len(e.compute())
}

// PageCount returns the number of pages, never less than one.
func (e *Engine[R]) PageCount() int {
	return query.PageCount(e.TotalFilteredCount(), e.pageSize)
}

// Window returns the 1-based positions of the first and last visible row and the
// total filtered count, as used by "showing X-Y of Z" labels. An empty page
// reports 0 for both positions.
func (e *Engine[R]) Window() (from, to, total int) {
	total = e.TotalFilteredCount()
	visible := len(e.VisibleRows())
	if visible == 0 {
		return 0, 0, total
	}
	offset := e.Page().Offset()
	return offset + 1, offset + visible, total
}

// FilteredRows returns every row passing the search and filters, in sort order.
func (e *Engine[R]) FilteredRows() []R {
	return slices.Clone(e.compute())
}

// Aggregate computes aggregations over the filtered rows.
func (e *Engine[R]) Aggregate(aggregations ...query.AggregationConfiguration) (map[string]any, error) {
	for _, agg := range aggregations {
		if agg.Column == "" {
			continue
		}
		if _, ok := e.processor.Column(agg.Column); !ok {
			return nil, fmt.Errorf("cannot aggregate '%s': %w", agg.Column, ErrUnknownColumn)
		}
	}
	return e.processor.Aggregate(e.compute(), aggregations)
}

// CountBy counts the filtered rows per value of a column.
func (e *Engine[R]) CountBy(column string) ([]query.GroupCount, error) {
	if _, ok := e.processor.Column(column); !ok {
		return nil, fmt.Errorf("cannot group by '%s': %w", column, ErrUnknownColumn)
	}
	return e.processor.CountBy(e.compute(), column)
}

// SumBy groups the filtered rows by a column and totals a numeric column per group.
func (e *Engine[R]) SumBy(by, sum string) ([]query.GroupSum, error) {
	for _, id := range []string{by, sum} {
		if _, ok := e.processor.Column(id); !ok {
			return nil, fmt.Errorf("cannot total '%s' by '%s': %w", sum, by, ErrUnknownColumn)
		}
	}
	return e.processor.SumBy(e.compute(), by, sum)
}
