package fraud

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ScoreRequest is the stateless scoring payload: the transaction under
// evaluation plus the context the caller already holds.
type ScoreRequest struct {
	Transaction        *Transaction  `json:"transaction" binding:"required"`
	Customer           *Customer     `json:"customer" binding:"required"`
	RecentTransactions []Transaction `json:"recentTransactions"`
}

// Handler provides HTTP endpoints for fraud scoring and the assessment
// audit trail.
type Handler struct {
	service *Service
}

// NewHandler creates a new fraud handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up fraud scoring routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/score", h.ScoreTransaction)
	r.GET("/assessments/:id", h.GetAssessment)
	r.GET("/customers/:id/assessments", h.ListAssessments)
}

// ScoreTransaction handles POST /v1/score
//
// Stateless evaluation: everything the scorer needs travels in the request,
// nothing is recorded. Used by batch review tools and for replaying historical
// transactions against the current rule set.
func (h *Handler) ScoreTransaction(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request body",
		})
		return
	}

	assessment, err := h.service.Evaluate(c.Request.Context(), req.Transaction, req.Customer, req.RecentTransactions)
	if err != nil {
		if errors.Is(err, ErrInvalidTransaction) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_transaction",
				"message": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "scoring_failed",
			"message": "Failed to score transaction",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// GetAssessment handles GET /v1/assessments/:id
func (h *Handler) GetAssessment(c *gin.Context) {
	id := c.Param("id")

	assessment, err := h.service.GetAssessment(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAssessmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Assessment not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assessment": assessment})
}

// ListAssessments handles GET /v1/customers/:id/assessments
func (h *Handler) ListAssessments(c *gin.Context) {
	customerID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	assessments, err := h.service.ListAssessments(c.Request.Context(), customerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": assessments,
		"count":       len(assessments),
	})
}
