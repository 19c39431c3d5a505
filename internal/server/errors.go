package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = apperror.New(apperror.KindUnauthenticated, "unauthorized")
	ErrNotFound     = apperror.New(apperror.KindNotFound, "not_found")
	ErrRateLimited  = apperror.New(apperror.KindRateLimited, "rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return apperror.Validation("request", "invalid_request")
}

func mapError(err error) (int, errorPayload) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		code := apperror.CodeOf(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{{
				Field:   apperror.FieldOf(err),
				Code:    code,
				Message: validationErrorMessage(code),
			}},
		}
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	case apperror.KindAccessDenied:
		return http.StatusForbidden, errorPayload{Type: "forbidden", Message: "forbidden"}
	case apperror.KindNotFound:
		return http.StatusNotFound, errorPayload{Type: "not_found", Message: "not found"}
	case apperror.KindConflict:
		return http.StatusConflict, errorPayload{Type: "conflict", Message: apperror.CodeOf(err)}
	case apperror.KindRateLimited:
		return http.StatusTooManyRequests, errorPayload{Type: "rate_limited", Message: "too many requests"}
	case apperror.KindPartialMutation:
		return http.StatusInternalServerError, errorPayload{
			Type:    "partial_mutation",
			Message: "outcome unknown, reconcile the customer balance",
		}
	default:
		return http.StatusInternalServerError, errorPayload{Type: "internal_error", Message: "internal server error"}
	}
}

// classifyErrorForLog feeds the request logger.
func classifyErrorForLog(err error) (string, string) {
	return string(apperror.KindOf(err)), apperror.CodeOf(err)
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
