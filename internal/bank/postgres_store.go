package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
)

// PostgresStore persists customers and transactions in PostgreSQL.
// Schema is managed by the goose migrations in migrations/.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed bank store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *fraud.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, email, full_name, balance, created_at, role, status, failed_login_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		customer.ID,
		customer.Email,
		customer.FullName,
		customer.Balance,
		customer.CreatedAt,
		customer.Role,
		customer.Status,
		customer.FailedLoginAttempts,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		return ErrCustomerExists
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*fraud.Customer, error) {
	var c fraud.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, balance, created_at, role, status, failed_login_attempts
		FROM customers
		WHERE id = $1
	`, id).Scan(
		&c.ID, &c.Email, &c.FullName, &c.Balance,
		&c.CreatedAt, &c.Role, &c.Status, &c.FailedLoginAttempts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context, limit int) ([]*fraud.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, full_name, balance, created_at, role, status, failed_login_attempts
		FROM customers
		ORDER BY id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*fraud.Customer
	for rows.Next() {
		var c fraud.Customer
		if err := rows.Scan(
			&c.ID, &c.Email, &c.FullName, &c.Balance,
			&c.CreatedAt, &c.Role, &c.Status, &c.FailedLoginAttempts,
		); err != nil {
			continue
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *PostgresStore) RecordFailedLogin(ctx context.Context, customerID string) error {
	return s.bumpFailedLogins(ctx, customerID, `
		UPDATE customers SET failed_login_attempts = failed_login_attempts + 1 WHERE id = $1
	`)
}

func (s *PostgresStore) ResetFailedLogins(ctx context.Context, customerID string) error {
	return s.bumpFailedLogins(ctx, customerID, `
		UPDATE customers SET failed_login_attempts = 0 WHERE id = $1
	`)
}

func (s *PostgresStore) bumpFailedLogins(ctx context.Context, customerID, query string) error {
	res, err := s.db.ExecContext(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("failed to update failed logins: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (s *PostgresStore) RecordTransaction(ctx context.Context, customerID string, tx *fraud.Transaction) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = dbTx.Rollback() }()

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, customer_id, account_id, type, amount, date, balance, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		tx.ID, customerID, tx.AccountID, string(tx.Type),
		tx.Amount, tx.Date, tx.Balance, tx.Description, string(tx.Status),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
		return ErrCustomerNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, `
		UPDATE customers SET balance = $2 WHERE id = $1
	`, customerID, tx.Balance); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecentTransactions(ctx context.Context, customerID string, before time.Time, limit int) ([]fraud.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, type, amount, date, balance, description, status
		FROM transactions
		WHERE customer_id = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT $3
	`, customerID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []fraud.Transaction
	for rows.Next() {
		var tx fraud.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.AccountID, &tx.Type, &tx.Amount,
			&tx.Date, &tx.Balance, &tx.Description, &tx.Status,
		); err != nil {
			continue
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}
