package fraud

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOURDINED-MED/fraudscore/internal/testutil"
)

func sampleAssessment(id, customerID string, at time.Time) *Assessment {
	return &Assessment{
		ID:            id,
		TransactionID: "txn_" + id,
		CustomerID:    customerID,
		Score:         55,
		IsFraud:       false,
		Severity:      SeverityHigh,
		Reasons:       []string{"Large withdrawal from new account (< 7 days old)"},
		Alerts: []Alert{{
			Rule:     "new_account_withdrawal",
			Category: "account_age",
			Severity: SeverityHigh,
			Points:   30,
			Message:  "Large withdrawal from new account (< 7 days old)",
		}},
		EvaluatedAt: at,
	}
}

func TestMemoryStore_RecordAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	at := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	a := sampleAssessment("asmt_1", "cust_1", at)
	require.NoError(t, store.Record(ctx, a))

	got, err := store.GetByID(ctx, "asmt_1")
	require.NoError(t, err)
	assert.Equal(t, a.Score, got.Score)
	assert.Equal(t, a.Reasons, got.Reasons)
	assert.Equal(t, a.Alerts, got.Alerts)

	// The store holds its own copy
	got.Reasons[0] = "mutated"
	again, err := store.GetByID(ctx, "asmt_1")
	require.NoError(t, err)
	assert.Equal(t, "Large withdrawal from new account (< 7 days old)", again.Reasons[0])
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetByID(context.Background(), "asmt_missing")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestMemoryStore_ListByCustomer(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"asmt_a", "asmt_b", "asmt_c"} {
		require.NoError(t, store.Record(ctx, sampleAssessment(id, "cust_1", base.Add(time.Duration(i)*time.Hour))))
	}
	require.NoError(t, store.Record(ctx, sampleAssessment("asmt_other", "cust_2", base)))

	list, err := store.ListByCustomer(ctx, "cust_1", 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "asmt_c", list[0].ID, "newest first")
	assert.Equal(t, "asmt_a", list[2].ID)

	limited, err := store.ListByCustomer(ctx, "cust_1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "asmt_c", limited[0].ID)

	empty, err := store.ListByCustomer(ctx, "cust_unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// ---------------------------------------------------------------------------
// PostgreSQL integration tests (skipped without POSTGRES_URL)
// ---------------------------------------------------------------------------

func TestPostgresStore_RoundTrip(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	at := time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC)
	a := sampleAssessment("asmt_pg1", "cust_pg", at)
	require.NoError(t, store.Record(ctx, a))

	got, err := store.GetByID(ctx, "asmt_pg1")
	require.NoError(t, err)
	assert.Equal(t, a.Score, got.Score)
	assert.Equal(t, a.Severity, got.Severity)
	assert.Equal(t, a.Reasons, got.Reasons)
	assert.Equal(t, a.Alerts, got.Alerts)
	assert.True(t, a.EvaluatedAt.Equal(got.EvaluatedAt))

	_, err = store.GetByID(ctx, "asmt_nope")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

func TestPostgresStore_ListByCustomer(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"asmt_pga", "asmt_pgb", "asmt_pgc"} {
		require.NoError(t, store.Record(ctx, sampleAssessment(id, "cust_pg", base.Add(time.Duration(i)*time.Hour))))
	}

	list, err := store.ListByCustomer(ctx, "cust_pg", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "asmt_pgc", list[0].ID, "newest first")
	assert.Equal(t, "asmt_pgb", list[1].ID)
}
