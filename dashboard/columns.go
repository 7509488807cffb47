package dashboard

import (
	"time"

	"go.uber.org/zap"

	"github.com/asaidimu/go-tabula/core/query"
	"github.com/asaidimu/go-tabula/core/schema"
	"github.com/asaidimu/go-tabula/core/table"
)

// DefaultPageSize is the page size of every dashboard table.
const DefaultPageSize = 10

// Clock returns the current time. Derived columns read it so tests can fix it.
type Clock func() time.Time

// ContractColumns describes the contracts table.
func ContractColumns() []query.Column[Contract] {
	return []query.Column[Contract]{
		{ID: "number", Type: schema.FieldTypeString, Accessor: func(c Contract) any { return c.Number }, Searchable: true, Sortable: true},
		{ID: "customer", Type: schema.FieldTypeString, Accessor: func(c Contract) any { return c.Customer }, Searchable: true, Sortable: true},
		{ID: "kind", Type: schema.FieldTypeEnum, Accessor: func(c Contract) any { return c.Kind }, Filterable: true},
		{ID: "value", Type: schema.FieldTypeDecimal, Accessor: func(c Contract) any { return c.Value }, Sortable: true, Filterable: true},
		{ID: "status", Type: schema.FieldTypeEnum, Accessor: func(c Contract) any { return c.Status }, Filterable: true},
		{ID: "start_date", Type: schema.FieldTypeDate, Accessor: func(c Contract) any { return c.StartDate }, Sortable: true, Filterable: true},
		{ID: "end_date", Type: schema.FieldTypeDate, Accessor: func(c Contract) any {
			if c.EndDate == nil {
				return nil
			}
			return *c.EndDate
		}, Sortable: true, Filterable: true},
	}
}

// ClaimColumns describes the claims table.
func ClaimColumns() []query.Column[Claim] {
	return []query.Column[Claim]{
		{ID: "reference", Type: schema.FieldTypeString, Accessor: func(c Claim) any { return c.Reference }, Searchable: true, Sortable: true},
		{ID: "contract", Type: schema.FieldTypeString, Accessor: func(c Claim) any { return c.Contract }, Searchable: true, Filterable: true},
		{ID: "claimant", Type: schema.FieldTypeString, Accessor: func(c Claim) any { return c.Claimant }, Searchable: true, Sortable: true},
		{ID: "amount", Type: schema.FieldTypeDecimal, Accessor: func(c Claim) any { return c.Amount }, Sortable: true, Filterable: true},
		{ID: "status", Type: schema.FieldTypeEnum, Accessor: func(c Claim) any { return c.Status }, Filterable: true},
		{ID: "filed_at", Type: schema.FieldTypeDate, Accessor: func(c Claim) any { return c.FiledAt }, Sortable: true, Filterable: true},
	}
}

// CustomerColumns describes the customers table.
func CustomerColumns() []query.Column[Customer] {
	return []query.Column[Customer]{
		{ID: "id", Type: schema.FieldTypeString, Accessor: func(c Customer) any { return c.ID }, Searchable: true, Sortable: true},
		{ID: "name", Type: schema.FieldTypeString, Accessor: func(c Customer) any { return c.Name }, Searchable: true, Sortable: true},
		{ID: "email", Type: schema.FieldTypeString, Accessor: func(c Customer) any { return c.Email }, Searchable: true},
		{ID: "region", Type: schema.FieldTypeEnum, Accessor: func(c Customer) any { return c.Region }, Filterable: true, Sortable: true},
		{ID: "tier", Type: schema.FieldTypeEnum, Accessor: func(c Customer) any { return c.Tier }, Filterable: true},
		{ID: "balance", Type: schema.FieldTypeDecimal, Accessor: func(c Customer) any { return c.Balance }, Sortable: true, Filterable: true},
		{ID: "active", Type: schema.FieldTypeBoolean, Accessor: func(c Customer) any { return c.Active }, Filterable: true},
		{ID: "joined_at", Type: schema.FieldTypeDate, Accessor: func(c Customer) any { return c.JoinedAt }, Sortable: true, Filterable: true},
	}
}

// SupplierColumns describes the suppliers table.
func SupplierColumns() []query.Column[Supplier] {
	return []query.Column[Supplier]{
		{ID: "name", Type: schema.FieldTypeString, Accessor: func(s Supplier) any { return s.Name }, Searchable: true, Sortable: true},
		{ID: "category", Type: schema.FieldTypeEnum, Accessor: func(s Supplier) any { return s.Category }, Searchable: true, Filterable: true},
		{ID: "contact", Type: schema.FieldTypeString, Accessor: func(s Supplier) any { return s.Contact }, Searchable: true},
		{ID: "rating", Type: schema.FieldTypeDecimal, Accessor: func(s Supplier) any { return s.Rating }, Sortable: true, Filterable: true},
		{ID: "open_orders", Type: schema.FieldTypeInteger, Accessor: func(s Supplier) any { return s.OpenOrders }, Sortable: true, Filterable: true},
		{ID: "onboarded_at", Type: schema.FieldTypeDate, Accessor: func(s Supplier) any { return s.OnboardedAt }, Sortable: true},
	}
}

// LatePaymentColumns describes the late payments table. The days_late column is
// derived from the due date and the clock.
func LatePaymentColumns(clock Clock) []query.Column[LatePayment] {
	if clock == nil {
		clock = time.Now
	}
	return []query.Column[LatePayment]{
		{ID: "invoice", Type: schema.FieldTypeString, Accessor: func(p LatePayment) any { return p.Invoice }, Searchable: true, Sortable: true},
		{ID: "customer", Type: schema.FieldTypeString, Accessor: func(p LatePayment) any { return p.Customer }, Searchable: true, Sortable: true},
		{ID: "amount", Type: schema.FieldTypeDecimal, Accessor: func(p LatePayment) any { return p.Amount }, Sortable: true, Filterable: true},
		{ID: "outstanding", Type: schema.FieldTypeDecimal, Accessor: func(p LatePayment) any { return p.Outstanding() }, Sortable: true, Filterable: true},
		{ID: "due_date", Type: schema.FieldTypeDate, Accessor: func(p LatePayment) any { return p.DueDate }, Sortable: true, Filterable: true},
		{ID: "days_late", Type: schema.FieldTypeInteger, Accessor: func(p LatePayment) any { return DaysLate(p.DueDate, clock()) }, Sortable: true, Filterable: true},
		{ID: "status", Type: schema.FieldTypeEnum, Accessor: func(p LatePayment) any { return p.Status }, Filterable: true},
	}
}

func newTable[R any](name string, records []R, columns []query.Column[R], logger *zap.Logger, opts []table.Option) (*table.Engine[R], error) {
	base := []table.Option{table.WithName(name), table.WithLogger(logger)}
	return table.New(records, table.Config[R]{Columns: columns, PageSize: DefaultPageSize}, append(base, opts...)...)
}

// NewContractsTable creates the contracts table, newest contracts first.
func NewContractsTable(records []Contract, logger *zap.Logger, opts ...table.Option) (*table.Engine[Contract], error) {
	defaults := []table.Option{table.WithInitialState(query.NewViewBuilder().OrderByDesc("start_date").Build())}
	return newTable("contracts", records, ContractColumns(), logger, append(defaults, opts...))
}

// NewClaimsTable creates the claims table.
func NewClaimsTable(records []Claim, logger *zap.Logger, opts ...table.Option) (*table.Engine[Claim], error) {
	return newTable("claims", records, ClaimColumns(), logger, opts)
}

// NewCustomersTable creates the customers table.
func NewCustomersTable(records []Customer, logger *zap.Logger, opts ...table.Option) (*table.Engine[Customer], error) {
	return newTable("customers", records, CustomerColumns(), logger, opts)
}

// NewSuppliersTable creates the suppliers table.
func NewSuppliersTable(records []Supplier, logger *zap.Logger, opts ...table.Option) (*table.Engine[Supplier], error) {
	return newTable("suppliers", records, SupplierColumns(), logger, opts)
}

// NewLatePaymentsTable creates the late payments table, most overdue first.
func NewLatePaymentsTable(records []LatePayment, clock Clock, logger *zap.Logger, opts ...table.Option) (*table.Engine[LatePayment], error) {
	defaults := []table.Option{table.WithInitialState(query.NewViewBuilder().OrderByDesc("days_late").Build())}
	return newTable("late_payments", records, LatePaymentColumns(clock), logger, append(defaults, opts...))
}
