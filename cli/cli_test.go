package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/table"
)

const paymentsDefinition = `
name: payments
pageSize: 2
defaultSort:
  column: amount
  direction: desc
columns:
  - id: invoice
    type: string
    searchable: true
    sortable: true
  - id: customer
    type: string
    label: Customer
    searchable: true
  - id: amount
    type: decimal
    sortable: true
    filterable: true
  - id: status
    type: enum
    values: [PENDING, OVERDUE, PAID]
    filterable: true
  - id: due
    type: date
    sortable: true
    filterable: true
`

const paymentsRecords = `[
  {"invoice": "INV-1", "customer": "Savanna Foods", "amount": 1200, "status": "OVERDUE", "due": "2024-06-01"},
  {"invoice": "INV-2", "customer": "Lakeside Hotel", "amount": 800, "status": "PENDING", "due": "2024-06-20"},
  {"invoice": "INV-3", "customer": "Rift Motors", "amount": 450, "status": "PAID", "due": "2024-05-05"},
  {"invoice": "INV-4", "customer": "Savanna Foods", "amount": 2000, "status": "OVERDUE", "due": "2024-05-15"}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func paymentsDef(t *testing.T) *schema.TableDefinition {
	t.Helper()
	def, err := schema.LoadDefinition([]byte(paymentsDefinition))
	require.NoError(t, err)
	return def
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func decodePage(t *testing.T, out string) (PageOutput, []string) {
	t.Helper()
	var page PageOutput
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	invoices := make([]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		invoices = append(invoices, row["invoice"].(string))
	}
	return page, invoices
}

func TestParseFilter(t *testing.T) {
	def := paymentsDef(t)
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		flag     string
		column   string
		expected query.Constraint
		wantErr  bool
	}{
		{"exact enum", "status=OVERDUE", "status", query.Exact("OVERDUE"), false},
		{"set", "status=OVERDUE,PENDING", "status", query.OneOf("OVERDUE", "PENDING"), false},
		{"set skips blanks", "status=PAID,", "status", query.OneOf("PAID"), false},
		{"range", "amount=100..1000", "amount", query.Between(100.0, 1000.0), false},
		{"open top", "amount=500..", "amount", query.AtLeast(500.0), false},
		{"open bottom", "amount=..500", "amount", query.AtMost(500.0), false},
		{"date", "due=2024-06-01", "due", query.Exact(due), false},
		{"spaces around column", " amount =12", "amount", query.Exact(12.0), false},
		{"missing value", "amount", "", query.Constraint{}, true},
		{"missing column", "=3", "", query.Constraint{}, true},
		{"unknown column", "region=north", "", query.Constraint{}, true},
		{"bad number", "amount=lots", "", query.Constraint{}, true},
		{"bad range bound", "amount=1..x", "", query.Constraint{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			column, c, err := ParseFilter(def, tt.flag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.column, column)
			assert.Equal(t, tt.expected, c)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		flag     string
		expected *query.SortConfiguration
		wantErr  bool
	}{
		{"", nil, false},
		{"amount", &query.SortConfiguration{Column: "amount", Direction: query.SortDirectionDesc}, false},
		{"amount:asc", &query.SortConfiguration{Column: "amount", Direction: query.SortDirectionAsc}, false},
		{"amount:DESC", &query.SortConfiguration{Column: "amount", Direction: query.SortDirectionDesc}, false},
		{"amount:up", nil, true},
		{":asc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			sort, err := ParseSort(tt.flag)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sort)
		})
	}
}

func TestViewFlagsState(t *testing.T) {
	def := paymentsDef(t)

	f := &viewFlags{search: "savanna", filters: []string{"status=OVERDUE"}, page: 2, pageSize: 5}
	state, err := f.state(def)
	require.NoError(t, err)
	assert.Equal(t, query.NewViewBuilder().
		Search("savanna").
		Where("status").Eq("OVERDUE").
		OrderByDesc("amount").
		Page(1, 5).
		Build(), state)

	f = &viewFlags{sort: "due:asc", page: 1}
	state, err = f.state(def)
	require.NoError(t, err)
	assert.Equal(t, &query.SortConfiguration{Column: "due", Direction: query.SortDirectionAsc}, state.Sort)

	_, err = (&viewFlags{page: 0}).state(def)
	assert.Error(t, err)
}

func TestViewCommand(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)
	base := []string{"view", "-d", defPath, "-r", recPath, "-o", "json"}

	tests := []struct {
		name      string
		args      []string
		invoices  []string
		total     int
		pageCount int
	}{
		{"default view", nil, []string{"INV-4", "INV-1"}, 4, 2},
		{"second page", []string{"--page", "2"}, []string{"INV-2", "INV-3"}, 4, 2},
		{"search and sort", []string{"--search", "savanna", "--sort", "due:asc"}, []string{"INV-4", "INV-1"}, 2, 1},
		{"filters", []string{"-f", "status=OVERDUE,PENDING", "-f", "amount=..1000"}, []string{"INV-2"}, 1, 1},
		{"page size", []string{"--page-size", "3", "--page", "2"}, []string{"INV-3"}, 4, 2},
		{"page past the end", []string{"--page", "9"}, []string{}, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append(base, tt.args...)...)
			require.NoError(t, err)
			page, invoices := decodePage(t, out)
			assert.Equal(t, tt.invoices, invoices)
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, tt.pageCount, page.PageCount)
			assert.Equal(t, "payments", page.Table)
		})
	}
}

func TestViewCommand_PageSizeFromEnvironment(t *testing.T) {
	t.Setenv("TABULA_PAGE_SIZE", "3")
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)

	out, err := run(t, "view", "-d", defPath, "-r", recPath, "-o", "json")
	require.NoError(t, err)
	page, invoices := decodePage(t, out)
	assert.Equal(t, 3, page.PageSize)
	assert.Equal(t, []string{"INV-4", "INV-1", "INV-2"}, invoices)
}

func TestViewCommand_Table(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)

	out, err := run(t, "view", "-d", defPath, "-r", recPath, "-f", "status=OVERDUE")
	require.NoError(t, err)
	assert.Contains(t, out, "Customer")
	assert.Contains(t, out, "Savanna Foods")
	assert.Contains(t, out, "2000.00")
	assert.Contains(t, out, "filter: status = OVERDUE")
	assert.Contains(t, out, "showing 1-2 of 2 · page 1 of 1")
}

func TestViewCommand_Errors(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{"no definition", []string{"view", "-r", recPath}, nil},
		{"no records", []string{"view", "-d", defPath}, nil},
		{"two sources", []string{"view", "-d", defPath, "-r", recPath, "--sqlite", ":memory:"}, nil},
		{"unsortable column", []string{"view", "-d", defPath, "-r", recPath, "--sort", "customer"}, table.ErrColumnNotSortable},
		{"unfilterable column", []string{"view", "-d", defPath, "-r", recPath, "-f", "invoice=INV-1"}, table.ErrColumnNotFilterable},
		{"bad output", []string{"view", "-d", defPath, "-r", recPath, "-o", "xml"}, nil},
		{"bad log level", []string{"view", "-d", defPath, "-r", recPath, "--log-level", "loud"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestStatsCommand(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)

	out, err := run(t, "stats", "-d", defPath, "-r", recPath, "--by", "status", "--sum", "amount")
	require.NoError(t, err)

	var overdue string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "OVERDUE") {
			overdue = line
		}
	}
	require.NotEmpty(t, overdue)
	assert.Contains(t, overdue, "3200")
	assert.Contains(t, out, "sum_amount")
	assert.Less(t, strings.Index(out, "OVERDUE"), strings.Index(out, "PENDING"))

	out, err = run(t, "stats", "-d", defPath, "-r", recPath, "--by", "status", "--search", "savanna")
	require.NoError(t, err)
	assert.Contains(t, out, "OVERDUE")
	assert.NotContains(t, out, "PAID")

	out, err = run(t, "stats", "-d", defPath, "-r", recPath, "--by", "due", "--sum", "amount")
	require.NoError(t, err)
	var mid string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "2024-05-15") {
			mid = line
		}
	}
	require.NotEmpty(t, mid)
	assert.Contains(t, mid, "2000")

	_, err = run(t, "stats", "-d", defPath, "-r", recPath)
	assert.Error(t, err)
	_, err = run(t, "stats", "-d", defPath, "-r", recPath, "--by", "status", "--sum", "customer")
	assert.Error(t, err)
	_, err = run(t, "stats", "-d", defPath, "-r", recPath, "--by", "region")
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestValidateCommand(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)

	out, err := run(t, "validate", defPath)
	require.NoError(t, err)
	assert.Contains(t, out, "payments: ok (5 columns)")

	out, err = run(t, "validate", defPath, "-r", recPath)
	require.NoError(t, err)
	assert.Contains(t, out, "payments: ok (5 columns, 4 records)")

	badRecords := writeFile(t, "bad.json", `[{"invoice": "INV-9", "status": "LOST"}]`)
	out, err = run(t, "validate", defPath, "-r", badRecords)
	assert.Error(t, err)
	assert.Contains(t, out, "INVALID_ENUM_VALUE")
	assert.Contains(t, out, "records[0].status")

	badDef := writeFile(t, "bad.yaml", `
name: broken
pageSize: 0
columns:
  - id: a
    type: string
  - id: a
    type: string
`)
	out, err = run(t, "validate", badDef)
	assert.Error(t, err)
	assert.Contains(t, out, "DUPLICATE_COLUMN")

	_, err = run(t, "validate")
	assert.Error(t, err)
}

func TestImportThenViewFromSQLite(t *testing.T) {
	defPath := writeFile(t, "payments.yaml", paymentsDefinition)
	recPath := writeFile(t, "payments.json", paymentsRecords)
	dbPath := filepath.Join(t.TempDir(), "dashboard.db")

	out, err := run(t, "import", "-d", defPath, "-r", recPath, "--sqlite", dbPath, "--table", "late_payments")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 records into late_payments")

	out, err = run(t, "view", "-d", defPath, "--sqlite", dbPath, "--table", "late_payments",
		"-f", "due=2024-05-01..2024-05-31", "-o", "json")
	require.NoError(t, err)
	page, invoices := decodePage(t, out)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"INV-4", "INV-3"}, invoices)

	out, err = run(t, "import", "-d", defPath, "-r", recPath, "--sqlite", dbPath, "--table", "late_payments", "--replace")
	require.NoError(t, err)
	out, err = run(t, "view", "-d", defPath, "--sqlite", dbPath, "--table", "late_payments", "-o", "json")
	require.NoError(t, err)
	page, _ = decodePage(t, out)
	assert.Equal(t, 4, page.Total, "replace drops the earlier rows")

	_, err = run(t, "import", "-d", defPath, "-r", recPath)
	assert.Error(t, err)
}
