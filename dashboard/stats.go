package dashboard

import (
	"fmt"

	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/table"
	"github.com/asaidimu/go-tabula/utils"
)

// StatusSummary is one stat card: how many filtered rows share a status and
// what they add up to.
type StatusSummary struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
}

// Summarize groups the filtered rows of a table by a status column. When
// amountColumn is set, each summary also carries the sum of that column.
func Summarize[R any](e *table.Engine[R], statusColumn, amountColumn string) ([]StatusSummary, error) {
	if amountColumn == "" {
		groups, err := e.CountBy(statusColumn)
		if err != nil {
			return nil, err
		}
		summaries := make([]StatusSummary, 0, len(groups))
		for _, g := range groups {
			summaries = append(summaries, StatusSummary{Status: g.Value, Count: g.Count})
		}
		return summaries, nil
	}

	groups, err := e.SumBy(statusColumn, amountColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to total '%s' by '%s': %w", amountColumn, statusColumn, err)
	}
	summaries := make([]StatusSummary, 0, len(groups))
	for _, g := range groups {
		summaries = append(summaries, StatusSummary{Status: g.Value, Count: g.Count, Total: g.Sum})
	}
	return summaries, nil
}

// LatePaymentDefinition is the stored shape of late payments, used to keep them
// in SQLite or files.
func LatePaymentDefinition() *schema.TableDefinition {
	return &schema.TableDefinition{
		Name:     "late_payments",
		Version:  "1.0.0",
		PageSize: DefaultPageSize,
		Columns: []schema.ColumnDefinition{
			{ID: "invoice", Type: schema.FieldTypeString, Searchable: true, Sortable: true},
			{ID: "customer", Type: schema.FieldTypeString, Searchable: true, Sortable: true},
			{ID: "amount", Type: schema.FieldTypeDecimal, Sortable: true, Filterable: true},
			{ID: "paid", Type: schema.FieldTypeDecimal, Sortable: true, Filterable: true},
			{ID: "due_date", Type: schema.FieldTypeDate, Sortable: true, Filterable: true},
			{ID: "status", Type: schema.FieldTypeEnum, Values: []string{
				string(PaymentPending), string(PaymentPartial), string(PaymentOverdue), string(PaymentPaid),
			}, Filterable: true},
		},
	}
}

// LatePaymentsToDocuments converts late payments for storage.
func LatePaymentsToDocuments(payments []LatePayment) ([]schema.Document, error) {
	return utils.StructsToMaps(payments)
}

// LatePaymentsFromDocuments converts stored documents back to late payments.
func LatePaymentsFromDocuments(docs []schema.Document) ([]LatePayment, error) {
	return utils.MapsToStructs[LatePayment](docs)
}
