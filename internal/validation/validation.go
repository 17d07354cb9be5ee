// Package validation provides input validation for API requests.
package validation

import (
	"fmt"
	"net/http"
	"net/mail"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for string fields
const MaxStringLength = 10000

// idRegex validates resource IDs (prefix + hex, e.g. cust_a1b2...)
var idRegex = regexp.MustCompile(`^[a-z]+_[a-f0-9]{1,32}$`)

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// IsValidEmail checks if a string parses as an email address
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// IsValidID checks if a string looks like a generated resource ID
func IsValidID(id string) bool {
	return idRegex.MatchString(id)
}

// SanitizeString trims whitespace, strips control characters, and caps length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// FieldError describes a validation failure on a single field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is a collection of field errors
type Errors []FieldError

// Error implements the error interface
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(parts, "; ")
}

// Check is a single validation check
type Check func() *FieldError

// Validate runs all checks and collects failures
func Validate(checks ...Check) Errors {
	var errs Errors
	for _, check := range checks {
		if fe := check(); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return errs
}

// ValidEmail checks that a field holds a parseable email address
func ValidEmail(field, value string) Check {
	return func() *FieldError {
		if !IsValidEmail(value) {
			return &FieldError{Field: field, Message: "must be a valid email address"}
		}
		return nil
	}
}

// NonEmpty checks that a field is not blank
func NonEmpty(field, value string) Check {
	return func() *FieldError {
		if strings.TrimSpace(value) == "" {
			return &FieldError{Field: field, Message: "must not be empty"}
		}
		return nil
	}
}

// PositiveAmount checks that a monetary amount is positive
func PositiveAmount(field string, value float64) Check {
	return func() *FieldError {
		if value <= 0 {
			return &FieldError{Field: field, Message: "must be positive"}
		}
		return nil
	}
}
