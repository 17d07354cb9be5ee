// Package bank persists the customer and transaction records the fraud
// scorer evaluates. It is the back-office ledger: customers, their
// transaction history, and the failed-login counter that feeds the
// account-security scoring signal.
package bank

import (
	"context"
	"errors"
	"time"

	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
)

var (
	// ErrCustomerNotFound is returned when a customer lookup misses.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrCustomerExists is returned when creating a customer with a taken ID.
	ErrCustomerExists = errors.New("customer already exists")
)

// Store persists customers and transactions. ListRecentTransactions returns
// transactions dated at or before the given instant, newest first, capped at
// limit; it is the recent-window source for scoring.
type Store interface {
	CreateCustomer(ctx context.Context, customer *fraud.Customer) error
	GetCustomer(ctx context.Context, id string) (*fraud.Customer, error)
	ListCustomers(ctx context.Context, limit int) ([]*fraud.Customer, error)
	RecordFailedLogin(ctx context.Context, customerID string) error
	ResetFailedLogins(ctx context.Context, customerID string) error

	RecordTransaction(ctx context.Context, customerID string, tx *fraud.Transaction) error
	ListRecentTransactions(ctx context.Context, customerID string, before time.Time, limit int) ([]fraud.Transaction, error)
}
