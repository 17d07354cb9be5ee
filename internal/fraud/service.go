package fraud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NOURDINED-MED/fraudscore/internal/idgen"
	"github.com/NOURDINED-MED/fraudscore/internal/logging"
	"github.com/NOURDINED-MED/fraudscore/internal/metrics"
	"github.com/NOURDINED-MED/fraudscore/internal/traces"
	otelcodes "go.opentelemetry.io/otel/codes"
)

// ErrInvalidTransaction is returned when a transaction fails validation.
var ErrInvalidTransaction = errors.New("invalid transaction")

// DefaultWindowLimit caps how many recent transactions feed one evaluation.
const DefaultWindowLimit = 50

// Ledger provides the customer and transaction-history reads the scorer
// needs, plus transaction persistence. Satisfied by bank.Store.
type Ledger interface {
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	RecordTransaction(ctx context.Context, customerID string, tx *Transaction) error
	ListRecentTransactions(ctx context.Context, customerID string, before time.Time, limit int) ([]Transaction, error)
}

// AlertEmitter pushes scored assessments to live subscribers.
type AlertEmitter interface {
	BroadcastAssessment(data map[string]interface{}, flagged bool)
}

// Service wires the scoring engine to the ledger and the assessment audit
// trail. Scoring itself stays a pure function; the service owns side effects:
// ID assignment, persistence, metrics, and alert fan-out.
type Service struct {
	store       Store
	ledger      Ledger
	emitter     AlertEmitter
	windowLimit int
}

// NewService creates a fraud scoring service.
func NewService(store Store, ledger Ledger) *Service {
	return &Service{
		store:       store,
		ledger:      ledger,
		windowLimit: DefaultWindowLimit,
	}
}

// WithAlertEmitter adds a realtime emitter for flagged assessments.
func (s *Service) WithAlertEmitter(e AlertEmitter) *Service {
	s.emitter = e
	return s
}

// WithWindowLimit overrides how many recent transactions feed each evaluation.
func (s *Service) WithWindowLimit(limit int) *Service {
	if limit > 0 {
		s.windowLimit = limit
	}
	return s
}

// Evaluate scores a transaction against explicit inputs without touching any
// store. It backs the stateless scoring endpoint used by batch review tools.
func (s *Service) Evaluate(ctx context.Context, tx *Transaction, customer *Customer, recent []Transaction) (*Assessment, error) {
	if err := validateTransaction(tx); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, fmt.Errorf("%w: customer is required", ErrInvalidTransaction)
	}

	_, span := traces.StartSpan(ctx, "fraud.Evaluate",
		traces.CustomerID(customer.ID),
		traces.TransactionID(tx.ID),
	)
	defer span.End()

	assessment := Score(tx, customer, recent)
	span.SetAttributes(traces.Score(assessment.Score), traces.Flagged(assessment.IsFraud))

	metrics.RecordAssessment(string(assessment.Severity), assessment.Score, assessment.IsFraud, ruleNames(assessment))
	return assessment, nil
}

// ScoreAndRecord records a transaction on the customer's ledger and scores it
// against the customer's recent history. The assessment is persisted for the
// audit trail and, when flagged, pushed to alert subscribers.
func (s *Service) ScoreAndRecord(ctx context.Context, customerID string, tx *Transaction) (_ *Assessment, retErr error) {
	ctx, span := traces.StartSpan(ctx, "fraud.ScoreAndRecord",
		traces.CustomerID(customerID),
	)
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(otelcodes.Error, retErr.Error())
		}
		span.End()
	}()

	if err := validateTransaction(tx); err != nil {
		return nil, err
	}

	customer, err := s.ledger.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if tx.ID == "" {
		tx.ID = idgen.WithPrefix("txn_")
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}
	if tx.Status == "" {
		tx.Status = StatusCompleted
	}
	tx.AccountID = customerID
	if tx.Balance == 0 {
		tx.Balance = postBalance(customer.Balance, tx)
	}

	// Score against history strictly before this transaction lands.
	recent, err := s.ledger.ListRecentTransactions(ctx, customerID, tx.Date, s.windowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	assessment := Score(tx, customer, recent)
	assessment.ID = idgen.WithPrefix("asmt_")
	span.SetAttributes(traces.TransactionID(tx.ID), traces.Score(assessment.Score), traces.Flagged(assessment.IsFraud))

	if err := s.ledger.RecordTransaction(ctx, customerID, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}
	metrics.TransactionsRecordedTotal.WithLabelValues(string(tx.Type)).Inc()

	if err := s.store.Record(ctx, assessment); err != nil {
		// The transaction is committed; losing the audit row is bad but not
		// worth failing the customer's transaction over.
		logging.L(ctx).Error("failed to persist assessment",
			"assessment", assessment.ID, "transaction", tx.ID, "error", err)
	}

	metrics.RecordAssessment(string(assessment.Severity), assessment.Score, assessment.IsFraud, ruleNames(assessment))

	if assessment.IsFraud {
		logging.L(ctx).Warn("transaction flagged as fraud",
			"transaction", tx.ID,
			"customer", customerID,
			"score", assessment.Score,
			"reasons", strings.Join(assessment.Reasons, "; "))
	}

	if s.emitter != nil {
		s.emitter.BroadcastAssessment(map[string]interface{}{
			"assessmentId":  assessment.ID,
			"transactionId": tx.ID,
			"customerId":    customerID,
			"score":         assessment.Score,
			"isFraud":       assessment.IsFraud,
			"severity":      string(assessment.Severity),
			"reasons":       assessment.Reasons,
			"amount":        tx.Amount,
			"type":          string(tx.Type),
		}, assessment.IsFraud)
	}

	return assessment, nil
}

// GetAssessment returns a stored assessment by ID.
func (s *Service) GetAssessment(ctx context.Context, id string) (*Assessment, error) {
	return s.store.GetByID(ctx, id)
}

// ListAssessments returns a customer's assessments, newest first.
func (s *Service) ListAssessments(ctx context.Context, customerID string, limit int) ([]*Assessment, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListByCustomer(ctx, customerID, limit)
}

func validateTransaction(tx *Transaction) error {
	if tx == nil {
		return fmt.Errorf("%w: transaction is required", ErrInvalidTransaction)
	}
	if tx.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	switch tx.Type {
	case TypeDeposit, TypeWithdrawal, TypeTransfer, TypePayment:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, tx.Type)
	}
	return nil
}

// postBalance derives the account balance after the transaction applies.
func postBalance(current float64, tx *Transaction) float64 {
	if tx.Type == TypeDeposit {
		return current + tx.Amount
	}
	return current - tx.Amount
}

func ruleNames(a *Assessment) []string {
	names := make([]string, 0, len(a.Alerts))
	for _, alert := range a.Alerts {
		names = append(names, alert.Rule)
	}
	return names
}
