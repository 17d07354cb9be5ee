package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
)

// passthroughScorer records the transaction on the store and returns a
// canned assessment, standing in for the fraud service.
type passthroughScorer struct {
	store      Store
	assessment *fraud.Assessment
}

func (s *passthroughScorer) ScoreAndRecord(ctx context.Context, customerID string, tx *fraud.Transaction) (*fraud.Assessment, error) {
	customer, err := s.store.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if tx.Amount <= 0 {
		return nil, fraud.ErrInvalidTransaction
	}
	tx.ID = "txn_test"
	tx.AccountID = customerID
	tx.Balance = customer.Balance - tx.Amount
	if err := s.store.RecordTransaction(ctx, customerID, tx); err != nil {
		return nil, err
	}
	return s.assessment, nil
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	scorer := &passthroughScorer{
		store: store,
		assessment: &fraud.Assessment{
			ID:       "asmt_test",
			Score:    0,
			Severity: fraud.SeverityLow,
			Reasons:  []string{},
			Alerts:   []fraud.Alert{},
		},
	}
	r := gin.New()
	NewHandler(store, scorer).RegisterRoutes(r.Group("/v1"))
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateCustomerEndpoint(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRouter(store)

	w := doJSON(t, r, "POST", "/v1/customers", CreateCustomerRequest{
		Email:    "Alice@Example.com ",
		FullName: "Alice Doe",
		Balance:  5000,
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Customer fraud.Customer `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.NotEmpty(t, body.Customer.ID)
	assert.Equal(t, "alice@example.com", body.Customer.Email, "email should be normalized")
	assert.Equal(t, 5000.0, body.Customer.Balance)
	assert.Equal(t, "customer", body.Customer.Role)
	assert.Equal(t, "active", body.Customer.Status)

	stored, err := store.GetCustomer(context.Background(), body.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", stored.FullName)
}

func TestCreateCustomerEndpoint_Validation(t *testing.T) {
	r := newTestRouter(NewMemoryStore())

	// Missing required fields
	w := doJSON(t, r, "POST", "/v1/customers", map[string]interface{}{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Negative opening balance
	w = doJSON(t, r, "POST", "/v1/customers", CreateCustomerRequest{
		Email:    "a@b.com",
		FullName: "A B",
		Balance:  -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_balance")
}

func TestGetCustomerEndpoint(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateCustomer(context.Background(), sampleCustomer("cust_1")))
	r := newTestRouter(store)

	w := doJSON(t, r, "GET", "/v1/customers/cust_1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cust_1@example.com")

	w = doJSON(t, r, "GET", "/v1/customers/cust_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCustomersEndpoint(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateCustomer(ctx, sampleCustomer("cust_1")))
	require.NoError(t, store.CreateCustomer(ctx, sampleCustomer("cust_2")))
	r := newTestRouter(store)

	w := doJSON(t, r, "GET", "/v1/customers?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestFailedLoginEndpoints(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateCustomer(ctx, sampleCustomer("cust_1")))
	r := newTestRouter(store)

	w := doJSON(t, r, "POST", "/v1/customers/cust_1/failed-logins", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := store.GetCustomer(ctx, "cust_1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.FailedLoginAttempts)

	w = doJSON(t, r, "DELETE", "/v1/customers/cust_1/failed-logins", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got, err = store.GetCustomer(ctx, "cust_1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedLoginAttempts)

	w = doJSON(t, r, "POST", "/v1/customers/cust_missing/failed-logins", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordTransactionEndpoint(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.CreateCustomer(ctx, sampleCustomer("cust_1")))
	r := newTestRouter(store)

	w := doJSON(t, r, "POST", "/v1/transactions", RecordTransactionRequest{
		CustomerID: "cust_1",
		Type:       "payment",
		Amount:     75,
		Date:       time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Transaction fraud.Transaction `json:"transaction"`
		Assessment  fraud.Assessment  `json:"assessment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "txn_test", body.Transaction.ID)
	assert.Equal(t, 925.0, body.Transaction.Balance)
	assert.Equal(t, "asmt_test", body.Assessment.ID)

	// Transaction visible in the customer's history
	w = doJSON(t, r, "GET", "/v1/customers/cust_1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "txn_test")
}

func TestRecordTransactionEndpoint_Errors(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.CreateCustomer(context.Background(), sampleCustomer("cust_1")))
	r := newTestRouter(store)

	// Unknown customer
	w := doJSON(t, r, "POST", "/v1/transactions", RecordTransactionRequest{
		CustomerID: "cust_missing",
		Type:       "payment",
		Amount:     10,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Missing required fields
	w = doJSON(t, r, "POST", "/v1/transactions", map[string]interface{}{"customerId": "cust_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTransactionsEndpoint_UnknownCustomer(t *testing.T) {
	r := newTestRouter(NewMemoryStore())

	w := doJSON(t, r, "GET", "/v1/customers/cust_missing/transactions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
