// Package dashboard holds the typed rows of the business dashboard's tables and
// the column sets that describe how each table searches, sorts and filters them.
package dashboard

import (
	"time"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft      ContractStatus = "DRAFT"
	ContractActive     ContractStatus = "ACTIVE"
	ContractExpired    ContractStatus = "EXPIRED"
	ContractTerminated ContractStatus = "TERMINATED"
)

// Contract is a rental or service agreement with a customer.
type Contract struct {
	Number    string         `json:"number"`
	Customer  string         `json:"customer"`
	Kind      string         `json:"kind"`
	Value     float64        `json:"value"`
	Status    ContractStatus `json:"status"`
	StartDate time.Time      `json:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty"`
}

// ClaimStatus is the review state of a claim.
type ClaimStatus string

const (
	ClaimOpen     ClaimStatus = "OPEN"
	ClaimApproved ClaimStatus = "APPROVED"
	ClaimRejected ClaimStatus = "REJECTED"
	ClaimSettled  ClaimStatus = "SETTLED"
)

// Claim is a damage or loss claim filed against a contract.
type Claim struct {
	Reference string      `json:"reference"`
	Contract  string      `json:"contract"`
	Claimant  string      `json:"claimant"`
	Amount    float64     `json:"amount"`
	Status    ClaimStatus `json:"status"`
	FiledAt   time.Time   `json:"filed_at"`
}

// Customer is an account the business bills.
type Customer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Region   string    `json:"region"`
	Tier     string    `json:"tier"`
	Balance  float64   `json:"balance"`
	Active   bool      `json:"active"`
	JoinedAt time.Time `json:"joined_at"`
}

// Supplier is a vendor the business buys from.
type Supplier struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Contact     string    `json:"contact"`
	Rating      float64   `json:"rating"`
	OpenOrders  int       `json:"open_orders"`
	OnboardedAt time.Time `json:"onboarded_at"`
}

// PaymentStatus is the collection state of an invoice.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentOverdue PaymentStatus = "OVERDUE"
	PaymentPaid    PaymentStatus = "PAID"
)

// LatePayment is an invoice past, or close to, its due date.
type LatePayment struct {
	Invoice  string        `json:"invoice"`
	Customer string        `json:"customer"`
	Amount   float64       `json:"amount"`
	Paid     float64       `json:"paid"`
	DueDate  time.Time     `json:"due_date"`
	Status   PaymentStatus `json:"status"`
}

// Outstanding returns the unpaid part of the invoice.
func (p LatePayment) Outstanding() float64 {
	return p.Amount - p.Paid
}

// DaysLate returns the number of whole days between due and now, or zero when
// due has not passed. Days are counted between calendar dates in UTC.
func DaysLate(due, now time.Time) int {
	d := civilDay(now).Sub(civilDay(due))
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
