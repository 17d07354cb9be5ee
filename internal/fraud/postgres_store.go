package fraud

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists assessments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the fraud_assessments table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fraud_assessments (
			id             VARCHAR(64) PRIMARY KEY,
			transaction_id VARCHAR(64) NOT NULL,
			customer_id    VARCHAR(64) NOT NULL,
			score          INTEGER NOT NULL CHECK (score >= 0),
			is_fraud       BOOLEAN NOT NULL,
			severity       VARCHAR(10) NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
			reasons        JSONB NOT NULL DEFAULT '[]',
			alerts         JSONB NOT NULL DEFAULT '[]',
			evaluated_at   TIMESTAMPTZ NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_fraud_assessments_customer
			ON fraud_assessments (customer_id, evaluated_at DESC);

		CREATE INDEX IF NOT EXISTS idx_fraud_assessments_flagged
			ON fraud_assessments (evaluated_at DESC) WHERE is_fraud;
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, assessment *Assessment) error {
	reasonsJSON, err := json.Marshal(assessment.Reasons)
	if err != nil {
		return fmt.Errorf("failed to marshal reasons: %w", err)
	}
	alertsJSON, err := json.Marshal(assessment.Alerts)
	if err != nil {
		return fmt.Errorf("failed to marshal alerts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fraud_assessments
			(id, transaction_id, customer_id, score, is_fraud, severity, reasons, alerts, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		assessment.ID,
		assessment.TransactionID,
		assessment.CustomerID,
		assessment.Score,
		assessment.IsFraud,
		string(assessment.Severity),
		reasonsJSON,
		alertsJSON,
		assessment.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, customer_id, score, is_fraud, severity, reasons, alerts, evaluated_at
		FROM fraud_assessments
		WHERE id = $1
	`, id)

	a, err := scanAssessment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssessmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, customer_id, score, is_fraud, severity, reasons, alerts, evaluated_at
		FROM fraud_assessments
		WHERE customer_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			continue
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*Assessment, error) {
	var a Assessment
	var reasonsJSON, alertsJSON []byte

	if err := row.Scan(
		&a.ID, &a.TransactionID, &a.CustomerID,
		&a.Score, &a.IsFraud, &a.Severity,
		&reasonsJSON, &alertsJSON, &a.EvaluatedAt,
	); err != nil {
		return nil, err
	}

	a.Reasons = []string{}
	a.Alerts = []Alert{}
	_ = json.Unmarshal(reasonsJSON, &a.Reasons)
	_ = json.Unmarshal(alertsJSON, &a.Alerts)
	return &a, nil
}
