package middleware

import (
	"errors"
	"net/http"

	"github.com/amirhossein-jamali/donation-auction/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/donation-auction/internal/domain/error"
	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// ErrorHandler recovers from panics and writes the last error a handler
// attached with c.Error as an ErrorResponse
func ErrorHandler(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("Panic recovered in API request", map[string]any{
					"error":      err,
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"client_ip":  c.ClientIP(),
					"request_id": c.GetHeader("X-Request-ID"),
					"user_agent": c.Request.UserAgent(),
				})

				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
					Code:    domainerr.ErrorCode(domainerr.ErrInternalServer),
					Kind:    string(domainerr.KindInternal),
					Message: "Internal server error",
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := ErrorResponseFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Request failed", map[string]any{
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
				"kind":   body.Kind,
				"error":  err.Error(),
			})
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// ErrorResponseFor maps an error to its HTTP status and response body
func ErrorResponseFor(err error) (int, dto.ErrorResponse) {
	kind := domainerr.KindOf(err)
	body := dto.ErrorResponse{
		Code:      domainerr.ErrorCode(err),
		Kind:      string(kind),
		Message:   err.Error(),
		Retryable: domainerr.IsRetryable(err),
	}

	var opErr *usecase.OperationError
	if errors.As(err, &opErr) {
		body.Kind = string(opErr.Kind)
		body.Message = opErr.Message
		body.Retryable = opErr.Retryable
		if opErr.MinimumAcceptable > 0 {
			body.MinimumAcceptableCents = opErr.MinimumAcceptable
			body.MinimumAcceptable = entity.AmountInCentsToString(opErr.MinimumAcceptable)
		}
		kind = opErr.Kind
	} else if kind == domainerr.KindInternal {
		body.Message = domainerr.ErrInternalServer.Error()
	}

	return StatusForKind(kind), body
}

// StatusForKind returns the HTTP status used for an error kind
func StatusForKind(kind domainerr.Kind) int {
	switch kind {
	case domainerr.KindNotFound:
		return http.StatusNotFound
	case domainerr.KindNotAuthorized:
		return http.StatusForbidden
	case domainerr.KindAuctionNotActive, domainerr.KindConcurrentModification:
		return http.StatusConflict
	case domainerr.KindBidTooLow, domainerr.KindIncrementTooSmall, domainerr.KindAmountOutOfRange:
		return http.StatusUnprocessableEntity
	case domainerr.KindTransientFailure:
		return http.StatusServiceUnavailable
	case domainerr.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
