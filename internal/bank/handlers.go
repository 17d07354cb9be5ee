package bank

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
	"github.com/NOURDINED-MED/fraudscore/internal/idgen"
	"github.com/NOURDINED-MED/fraudscore/internal/validation"
	"github.com/gin-gonic/gin"
)

// Scorer evaluates a transaction at the moment it is recorded.
type Scorer interface {
	ScoreAndRecord(ctx context.Context, customerID string, tx *fraud.Transaction) (*fraud.Assessment, error)
}

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	Email    string  `json:"email" binding:"required"`
	FullName string  `json:"fullName" binding:"required"`
	Balance  float64 `json:"balance"`
	Role     string  `json:"role"`
}

// RecordTransactionRequest is the payload for posting a transaction.
type RecordTransactionRequest struct {
	CustomerID  string    `json:"customerId" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	Amount      float64   `json:"amount" binding:"required"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Handler provides HTTP endpoints for the customer ledger.
type Handler struct {
	store  Store
	scorer Scorer
}

// NewHandler creates a new ledger handler.
func NewHandler(store Store, scorer Scorer) *Handler {
	return &Handler{store: store, scorer: scorer}
}

// RegisterRoutes sets up customer and transaction routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/customers", h.CreateCustomer)
	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/:id", h.GetCustomer)
	r.GET("/customers/:id/transactions", h.ListTransactions)
	r.POST("/customers/:id/failed-logins", h.RecordFailedLogin)
	r.DELETE("/customers/:id/failed-logins", h.ResetFailedLogins)
	r.POST("/transactions", h.RecordTransaction)
}

// CreateCustomer handles POST /v1/customers
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if errs := validation.Validate(
		validation.ValidEmail("email", email),
		validation.NonEmpty("fullName", req.FullName),
	); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": errs.Error(),
			"details": errs,
		})
		return
	}

	if req.Balance < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_balance",
			"message": "Opening balance cannot be negative",
		})
		return
	}

	role := req.Role
	if role == "" {
		role = "customer"
	}

	customer := &fraud.Customer{
		ID:        idgen.WithPrefix("cust_"),
		Email:     email,
		FullName:  validation.SanitizeString(req.FullName, 255),
		Balance:   req.Balance,
		CreatedAt: time.Now().UTC(),
		Role:      role,
		Status:    "active",
	}

	if err := h.store.CreateCustomer(c.Request.Context(), customer); err != nil {
		if errors.Is(err, ErrCustomerExists) {
			c.JSON(http.StatusConflict, gin.H{
				"error":   "customer_exists",
				"message": "A customer with this ID already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to create customer",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// GetCustomer handles GET /v1/customers/:id
func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.store.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// ListCustomers handles GET /v1/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	limit := parseLimit(c, 50, 200)

	customers, err := h.store.ListCustomers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"count":     len(customers),
	})
}

// ListTransactions handles GET /v1/customers/:id/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	customerID := c.Param("id")
	limit := parseLimit(c, 50, 200)

	if _, err := h.store.GetCustomer(c.Request.Context(), customerID); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	txs, err := h.store.ListRecentTransactions(c.Request.Context(), customerID, time.Now().UTC(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": txs,
		"count":        len(txs),
	})
}

// RecordFailedLogin handles POST /v1/customers/:id/failed-logins
func (h *Handler) RecordFailedLogin(c *gin.Context) {
	if err := h.store.RecordFailedLogin(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// ResetFailedLogins handles DELETE /v1/customers/:id/failed-logins
func (h *Handler) ResetFailedLogins(c *gin.Context) {
	if err := h.store.ResetFailedLogins(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// RecordTransaction handles POST /v1/transactions
//
// Every transaction posted through the ledger is scored inline; the response
// carries both the recorded transaction and its fraud assessment so callers
// can hold flagged transactions for review.
func (h *Handler) RecordTransaction(c *gin.Context) {
	var req RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	tx := &fraud.Transaction{
		AccountID:   req.CustomerID,
		Type:        fraud.TransactionType(req.Type),
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	}

	assessment, err := h.scorer.ScoreAndRecord(c.Request.Context(), req.CustomerID, tx)
	if err != nil {
		switch {
		case errors.Is(err, ErrCustomerNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Customer not found",
			})
		case errors.Is(err, fraud.ErrInvalidTransaction):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_transaction",
				"message": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": "Failed to record transaction",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transaction": tx,
		"assessment":  assessment,
	})
}

func parseLimit(c *gin.Context, def, max int) int {
	limit := def
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= max {
			limit = parsed
		}
	}
	return limit
}
