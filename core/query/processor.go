package query

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/asaidimu/go-tabula/core/schema"
)

// Processor applies the stages of a view to a record set: filter, sort and
// paginate. Each stage reads its input and returns a new slice; records are
// never modified or reordered in place.
type Processor[R any] struct {
	columns    map[string]Column[R]
	order      []string
	searchable []Column[R]
	logger     *zap.Logger
}

// NewProcessor creates a Processor over the given columns. Columns are expected
// to have unique ids and non-nil accessors; later duplicates replace earlier ones.
func NewProcessor[R any](columns []Column[R], logger *zap.Logger) *Processor[R] {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor[R]{
		columns: make(map[string]Column[R], len(columns)),
		order:   make([]string, 0, len(columns)),
		logger:  logger,
	}
	for _, col := range columns {
		if _, exists := p.columns[col.ID]; !exists {
			p.order = append(p.order, col.ID)
		}
		p.columns[col.ID] = col
	}
	for _, id := range p.order {
		if col := p.columns[id]; col.Searchable {
			p.searchable = append(p.searchable, col)
		}
	}
	return p
}

// Column returns the column with the given id.
func (p *Processor[R]) Column(id string) (Column[R], bool) {
	col, ok := p.columns[id]
	return col, ok
}

// Columns returns the columns in the order they were configured.
func (p *Processor[R]) Columns() []Column[R] {
	out := make([]Column[R], 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.columns[id])
	}
	return out
}

// Process runs the full pipeline and returns the requested page together with
// the number of records that passed the filter stage.
func (p *Processor[R]) Process(records []R, state ViewState) ([]R, int) {
	filtered := p.Filter(records, state)
	sorted := p.Sort(filtered, state.Sort)
	return p.Paginate(sorted, state.Page), len(filtered)
}

// Filter keeps the records matching both the global search and every column
// filter of the state.
func (p *Processor[R]) Filter(records []R, state ViewState) []R {
	search := newSearchMatcher(state.Search)

	type activeFilter struct {
		column     Column[R]
		constraint Constraint
		known      bool
	}
	active := make([]activeFilter, 0, len(state.Filters))
	for id, c := range state.Filters {
		col, ok := p.columns[id]
		active = append(active, activeFilter{column: col, constraint: c, known: ok})
	}

	filtered := make([]R, 0, len(records))
	for _, record := range records {
		if search != nil && !p.matchesSearch(record, search) {
			continue
		}
		passes := true
		for _, f := range active {
			// Filters on columns this processor does not know match nothing.
			if !f.known || !MatchesConstraint(f.column.Accessor(record), f.constraint, f.column.Type) {
				passes = false
				break
			}
		}
		if passes {
			filtered = append(filtered, record)
		}
	}

	p.logger.Debug("Rows remaining after filters",
		zap.Int("input", len(records)),
		zap.Int("count", len(filtered)),
		zap.Int("filters", len(active)),
		zap.Bool("search", search != nil))
	return filtered
}

// MatchesSearch reports whether any searchable column of the record contains the
// query, ignoring case. An empty query matches every record.
func (p *Processor[R]) MatchesSearch(record R, query string) bool {
	search := newSearchMatcher(query)
	if search == nil {
		return true
	}
	return p.matchesSearch(record, search)
}

func (p *Processor[R]) matchesSearch(record R, search *searchMatcher) bool {
	for _, col := range p.searchable {
		text, ok := SearchText(col.Accessor(record))
		if ok && search.matches(text) {
			return true
		}
	}
	return false
}

// searchMatcher holds a case-folded query. Folding follows Unicode rules, so it
// works for scripts beyond ASCII.
type searchMatcher struct {
	folder cases.Caser
	query  string
}

func newSearchMatcher(query string) *searchMatcher {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	folder := cases.Fold()
	return &searchMatcher{folder: folder, query: folder.String(query)}
}

func (m *searchMatcher) matches(text string) bool {
	return strings.Contains(m.folder.String(text), m.query)
}

// MatchesConstraint reports whether a field value satisfies a constraint for a
// column of the given type. Values or bounds that cannot be read as the column
// type match nothing.
func MatchesConstraint(value any, c Constraint, t schema.FieldType) bool {
	v, ok := Normalize(value, t)
	if !ok {
		return false
	}

	switch c.Kind {
	case ConstraintExact:
		return equals(v, c.Value, t)
	case ConstraintSet:
		for _, candidate := range c.Values {
			if equals(v, candidate, t) {
				return true
			}
		}
		return false
	case ConstraintRange:
		if c.From != nil {
			from, ok := Normalize(c.From, t)
			if !ok || compareNormalized(v, from) < 0 {
				return false
			}
		}
		if c.To != nil {
			to, ok := Normalize(c.To, t)
			if !ok || compareNormalized(v, to) > 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equals(normalized any, candidate FilterValue, t schema.FieldType) bool {
	nc, ok := Normalize(candidate, t)
	return ok && compareNormalized(normalized, nc) == 0
}

// sortEntry pairs a record with its sort key, read once per sort so derived
// accessors see a consistent value.
type sortEntry[R any] struct {
	record R
	key    any
	valid  bool
}

// Sort orders records by the configured column. The sort is stable: records with
// equal keys keep their input order in both directions. Records whose key is nil
// or of the wrong kind go after all others. A nil configuration, or one naming an
// unknown column, returns the records in input order.
func (p *Processor[R]) Sort(records []R, sort *SortConfiguration) []R {
	if sort == nil {
		return slices.Clone(records)
	}
	col, ok := p.columns[sort.Column]
	if !ok {
		p.logger.Warn("Ignoring sort on unknown column", zap.String("column", sort.Column))
		return slices.Clone(records)
	}

	entries := make([]sortEntry[R], len(records))
	for i, record := range records {
		key, valid := Normalize(col.Accessor(record), col.Type)
		entries[i] = sortEntry[R]{record: record, key: key, valid: valid}
	}

	desc := sort.Direction == SortDirectionDesc
	slices.SortStableFunc(entries, func(a, b sortEntry[R]) int {
		switch {
		case a.valid && !b.valid:
			return -1
		case !a.valid && b.valid:
			return 1
		case !a.valid && !b.valid:
			return 0
		}
		c := compareNormalized(a.key, b.key)
		if desc {
			return -c
		}
		return c
	})

	sorted := make([]R, len(entries))
	for i, e := range entries {
		sorted[i] = e.record
	}
	return sorted
}

// Paginate returns the rows of one page. Pages outside the available range, and
// pages with a non-positive size, are empty.
func (p *Processor[R]) Paginate(records []R, page PageSpec) []R {
	if page.Size <= 0 || page.Index < 0 || page.Index >= PageCount(len(records), page.Size) {
		return []R{}
	}
	start := page.Offset()
	if start >= len(records) {
		return []R{}
	}
	end := min(start+page.Size, len(records))
	return slices.Clone(records[start:end])
}

// PageCount returns the number of pages needed for total rows, never less than one.
func PageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Aggregate computes the given aggregations over records. Results are keyed by
// AggregationConfiguration.Key. Min and max of an empty or all-nil column are nil.
func (p *Processor[R]) Aggregate(records []R, aggregations []AggregationConfiguration) (map[string]any, error) {
	results := make(map[string]any, len(aggregations))
	for _, agg := range aggregations {
		if agg.Type == AggregationTypeCount && agg.Column == "" {
			results[agg.Key()] = len(records)
			continue
		}

		col, ok := p.columns[agg.Column]
		if !ok {
			return nil, fmt.Errorf("cannot aggregate unknown column '%s'", agg.Column)
		}

		switch agg.Type {
		case AggregationTypeCount:
			count := 0
			for _, record := range records {
				if _, ok := Normalize(col.Accessor(record), col.Type); ok {
					count++
				}
			}
			results[agg.Key()] = count
		case AggregationTypeSum, AggregationTypeAvg:
			if !col.Type.IsNumeric() {
				return nil, fmt.Errorf("cannot compute %s of column '%s' of type %s", agg.Type, col.ID, col.Type)
			}
			sum, n := 0.0, 0
			for _, record := range records {
				if f, ok := ToFloat64(col.Accessor(record)); ok {
					sum += f
					n++
				}
			}
			if agg.Type == AggregationTypeSum {
				results[agg.Key()] = sum
			} else if n > 0 {
				results[agg.Key()] = sum / float64(n)
			} else {
				results[agg.Key()] = nil
			}
		case AggregationTypeMin, AggregationTypeMax:
			var best any
			for _, record := range records {
				v, ok := Normalize(col.Accessor(record), col.Type)
				if !ok {
					continue
				}
				c := 0
				if best != nil {
					c = compareNormalized(v, best)
				}
				if best == nil || (agg.Type == AggregationTypeMin && c < 0) || (agg.Type == AggregationTypeMax && c > 0) {
					best = v
				}
			}
			results[agg.Key()] = best
		default:
			return nil, fmt.Errorf("unsupported aggregation type: %s", agg.Type)
		}
	}
	return results, nil
}

// GroupCount is the number of records sharing one value of a column.
type GroupCount struct {
	Value string
	Count int
}

// CountBy counts records per value of a column, in order of first appearance.
// Records with a nil or unreadable value are counted under the empty string.
func (p *Processor[R]) CountBy(records []R, column string) ([]GroupCount, error) {
	col, ok := p.columns[column]
	if !ok {
		return nil, fmt.Errorf("cannot group by unknown column '%s'", column)
	}

	index := make(map[string]int)
	groups := make([]GroupCount, 0)
	for _, record := range records {
		value, _ := SearchText(col.Accessor(record))
		i, seen := index[value]
		if !seen {
			i = len(groups)
			index[value] = i
			groups = append(groups, GroupCount{Value: value})
		}
		groups[i].Count++
	}
	return groups, nil
}

// GroupSum is the number of records sharing one value of a column and the total
// of a numeric column over those records.
type GroupSum struct {
	Value string
	Count int
	Sum   float64
}

// SumBy groups records the way CountBy does and totals the sum column in each
// group. Nil values of the sum column count towards the group but add nothing.
func (p *Processor[R]) SumBy(records []R, by, sum string) ([]GroupSum, error) {
	byCol, ok := p.columns[by]
	if !ok {
		return nil, fmt.Errorf("cannot group by unknown column '%s'", by)
	}
	sumCol, ok := p.columns[sum]
	if !ok {
		return nil, fmt.Errorf("cannot total unknown column '%s'", sum)
	}
	if !sumCol.Type.IsNumeric() {
		return nil, fmt.Errorf("cannot total column '%s' of type %s", sum, sumCol.Type)
	}

	index := make(map[string]int)
	groups := make([]GroupSum, 0)
	for _, record := range records {
		value, _ := SearchText(byCol.Accessor(record))
		i, seen := index[value]
		if !seen {
			i = len(groups)
			index[value] = i
			groups = append(groups, GroupSum{Value: value})
		}
		groups[i].Count++
		if f, ok := ToFloat64(sumCol.Accessor(record)); ok {
			groups[i].Sum += f
		}
	}
	return groups, nil
}
