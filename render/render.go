// Package render draws the current page of a table for a terminal.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/table"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

const (
	minColumnWidth = 4
	maxColumnWidth = 30
)

// Options controls how a page is drawn.
type Options struct {
	// Title is printed above the table. Defaults to the table name.
	Title string
	// Headers maps column ids to header labels. Columns without an entry use their id.
	Headers map[string]string
	// MaxColumnWidth caps the width of a column; longer cells are cut.
	MaxColumnWidth int
}

// Page renders the visible rows of the engine, its active search and filters and
// a "showing X-Y of Z" line.
func Page[R any](e *table.Engine[R], opts Options) string {
	title := opts.Title
	if title == "" {
		title = e.Name()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(" " + title))
	b.WriteString("\n")

	if q := e.GlobalFilter(); q != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" search: %q", q)))
		b.WriteString("\n")
	}
	for _, f := range Filters(e) {
		b.WriteString(dimStyle.Render(" filter: " + f))
		b.WriteString("\n")
	}

	b.WriteString(Rows(e.Columns(), e.VisibleRows(), e.Sort(), opts))

	from, to, total := e.Window()
	b.WriteString(statusStyle.Render(" " + Summary(from, to, total, e.Page().Index, e.PageCount())))
	b.WriteString("\n")
	return b.String()
}

// Rows renders a header, a separator and one line per row.
func Rows[R any](columns []query.Column[R], rows []R, sort *query.SortConfiguration, opts Options) string {
	var b strings.Builder
	if len(columns) == 0 {
		b.WriteString(dimStyle.Render(" (no columns)"))
		b.WriteString("\n")
		return b.String()
	}

	cells := make([][]string, len(rows))
	for ri, row := range rows {
		cells[ri] = make([]string, len(columns))
		for ci, col := range columns {
			cells[ri][ci] = FormatCell(col.Accessor(row), col.Type)
		}
	}

	headers := make([]string, len(columns))
	for ci, col := range columns {
		headers[ci] = header(col.ID, opts.Headers, sort)
	}
	widths := columnWidths(headers, cells, opts.MaxColumnWidth)

	var hdr strings.Builder
	for ci := range columns {
		hdr.WriteString(headerStyle.Render(fmt.Sprintf(" %s ", AlignCell(headers[ci], schema.FieldTypeString, widths[ci]))))
		if ci < len(columns)-1 {
			hdr.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString(hdr.String())
	b.WriteString("\n")

	var sep strings.Builder
	for ci := range columns {
		sep.WriteString(strings.Repeat("─", widths[ci]+2))
		if ci < len(columns)-1 {
			sep.WriteString("┼")
		}
	}
	b.WriteString(dimStyle.Render(sep.String()))
	b.WriteString("\n")

	if len(rows) == 0 {
		b.WriteString(dimStyle.Render(" (no matching rows)"))
		b.WriteString("\n")
		return b.String()
	}

	for ri := range rows {
		for ci, col := range columns {
			b.WriteString(" ")
			b.WriteString(AlignCell(cells[ri][ci], col.Type, widths[ci]))
			b.WriteString(" ")
			if ci < len(columns)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Summary returns the pagination label, such as "showing 11-20 of 42 · page 2 of 5".
// pageIndex is zero-based.
func Summary(from, to, total, pageIndex, pageCount int) string {
	if from == 0 {
		return fmt.Sprintf("showing 0 of %d · page %d of %d", total, pageIndex+1, pageCount)
	}
	return fmt.Sprintf("showing %d-%d of %d · page %d of %d", from, to, total, pageIndex+1, pageCount)
}

// Filters describes the active column filters of the engine, one per column, in
// column order.
func Filters[R any](e *table.Engine[R]) []string {
	var out []string
	for _, col := range e.Columns() {
		c, ok := e.ColumnFilter(col.ID)
		if !ok {
			continue
		}
		out = append(out, col.ID+" "+DescribeConstraint(c, col.Type))
	}
	return out
}

// DescribeConstraint renders a constraint the way a user would type it.
func DescribeConstraint(c query.Constraint, t schema.FieldType) string {
	switch c.Kind {
	case query.ConstraintExact:
		return "= " + FormatCell(c.Value, t)
	case query.ConstraintSet:
		values := make([]string, 0, len(c.Values))
		for _, v := range c.Values {
			values = append(values, FormatCell(v, t))
		}
		return "in " + strings.Join(values, ", ")
	case query.ConstraintRange:
		switch {
		case c.From != nil && c.To != nil:
			return fmt.Sprintf("between %s and %s", FormatCell(c.From, t), FormatCell(c.To, t))
		case c.From != nil:
			return ">= " + FormatCell(c.From, t)
		case c.To != nil:
			return "<= " + FormatCell(c.To, t)
		}
	}
	return "(any)"
}

// FormatCell renders a value for display according to its column type.
func FormatCell(val any, t schema.FieldType) string {
	if val == nil {
		return ""
	}
	switch t {
	case schema.FieldTypeDecimal:
		if f, ok := query.ToFloat64(val); ok {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
	case schema.FieldTypeInteger:
		if f, ok := query.ToFloat64(val); ok {
			return strconv.FormatInt(int64(f), 10)
		}
	case schema.FieldTypeNumber:
		if f, ok := query.ToFloat64(val); ok {
			if f == math.Trunc(f) && math.Abs(f) < 1e15 {
				return strconv.FormatInt(int64(f), 10)
			}
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	case schema.FieldTypeBoolean:
		if v, ok := query.ToBool(val); ok {
			if v {
				return "[x]"
			}
			return "[ ]"
		}
	case schema.FieldTypeDate:
		if ts, ok := query.ToTime(val); ok {
			if ts.Equal(ts.Truncate(24 * time.Hour)) {
				return ts.UTC().Format(time.DateOnly)
			}
			return ts.UTC().Format("2006-01-02 15:04")
		}
	}
	if s, ok := query.SearchText(val); ok {
		return s
	}
	return fmt.Sprintf("%v", val)
}

// AlignCell pads or cuts s to width. Numbers are right aligned.
func AlignCell(s string, t schema.FieldType, width int) string {
	if lipgloss.Width(s) > width {
		return truncate(s, width)
	}
	pad := strings.Repeat(" ", width-lipgloss.Width(s))
	if t.IsNumeric() {
		return pad + s
	}
	return s + pad
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "."
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "."
	return out + strings.Repeat(" ", width-lipgloss.Width(out))
}

func header(id string, labels map[string]string, sort *query.SortConfiguration) string {
	label := id
	if l, ok := labels[id]; ok && l != "" {
		label = l
	}
	if sort == nil || sort.Column != id {
		return label
	}
	if sort.Direction == query.SortDirectionAsc {
		return label + " ▲"
	}
	return label + " ▼"
}

func columnWidths(headers []string, cells [][]string, limit int) []int {
	if limit <= 0 {
		limit = maxColumnWidth
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(lipgloss.Width(h), minColumnWidth)
	}
	for _, row := range cells {
		for i, s := range row {
			widths[i] = max(widths[i], lipgloss.Width(s))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], max(limit, minColumnWidth))
	}
	return widths
}
