// Package fraud implements heuristic fraud scoring for banking transactions.
//
// Every transaction is evaluated against an ordered table of additive rules:
// amount anomaly, new-account withdrawal, velocity, unusual hour, round
// amount, balance depletion, and failed logins. Each triggered rule adds a
// fixed point contribution and a human-readable reason. Scores at or above
// the fraud threshold flag the transaction for review before funds move.
package fraud

import (
	"context"
	"errors"
	"time"
)

// ErrAssessmentNotFound is returned when an assessment lookup misses.
var ErrAssessmentNotFound = errors.New("assessment not found")

// TransactionType classifies a transaction.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"
	TypePayment    TransactionType = "payment"
)

// TransactionStatus is the processing state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is the record under evaluation. Balance is the account balance
// after the transaction was applied.
type Transaction struct {
	ID          string            `json:"id"`
	AccountID   string            `json:"accountId"`
	Type        TransactionType   `json:"type"`
	Amount      float64           `json:"amount"`
	Date        time.Time         `json:"date"`
	Balance     float64           `json:"balance"`
	Description string            `json:"description"`
	Status      TransactionStatus `json:"status"`
}

// Customer is the owning account holder. FailedLoginAttempts is optional;
// zero means the signal is absent and the corresponding rule never fires.
type Customer struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	FullName            string    `json:"fullName"`
	Balance             float64   `json:"balance"`
	CreatedAt           time.Time `json:"createdAt"`
	Role                string    `json:"role"`
	Status              string    `json:"status"`
	FailedLoginAttempts int       `json:"failedLoginAttempts,omitempty"`
}

// Severity tiers for an assessment, monotonic in score.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Score boundaries between severity tiers. A score at or above
// FraudThreshold is both critical and flagged as fraud.
const (
	MediumThreshold = 30
	HighThreshold   = 50
	FraudThreshold  = 70
)

// SeverityForScore maps an accumulated score to its severity tier.
func SeverityForScore(score int) Severity {
	switch {
	case score >= FraudThreshold:
		return SeverityCritical
	case score >= HighThreshold:
		return SeverityHigh
	case score >= MediumThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Alert is the structured form of a triggered rule, rendered by the
// fraud-review dashboard without re-parsing reason strings.
type Alert struct {
	Rule     string   `json:"rule"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Points   int      `json:"points"`
	Message  string   `json:"message"`
}

// Assessment is the result of scoring a single transaction. Reasons and
// Alerts are never nil. EvaluatedAt is anchored to the transaction's own
// timestamp so identical inputs produce identical assessments; ID is
// assigned by the service when the assessment is recorded.
type Assessment struct {
	ID            string    `json:"id,omitempty"`
	TransactionID string    `json:"transactionId"`
	CustomerID    string    `json:"customerId"`
	Score         int       `json:"score"`
	IsFraud       bool      `json:"isFraud"`
	Severity      Severity  `json:"severity"`
	Reasons       []string  `json:"reasons"`
	Alerts        []Alert   `json:"alerts"`
	EvaluatedAt   time.Time `json:"evaluatedAt"`
}

// Store persists assessments for the review audit trail.
type Store interface {
	Record(ctx context.Context, assessment *Assessment) error
	GetByID(ctx context.Context, id string) (*Assessment, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Assessment, error)
}
