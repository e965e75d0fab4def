package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifenotes-backend-go/internal/core"
)

// mapErrorToStatus maps errors from the core services to HTTP status codes and ErrorResponse.
func mapErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrReportLessonNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrReportLessonNotFound.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrLessonNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrLessonNotFound.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrPaymentNotVerified):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Payment not verified", Details: err.Error()}
	case errors.Is(err, core.ErrMissingIdentity):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Email not found in session", Details: err.Error()}
	case errors.Is(err, core.ErrProviderUnavailable):
		logger.Error("Payment provider failure", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "Payment provider request failed"}
	case errors.Is(err, core.ErrStoreUnavailable):
		logger.Error("Record store failure", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	default:
		logger.Error("Internal Server Error", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	_ = c.Error(err)
	c.JSON(statusCode, errResponse)
}

func badRequest(c *gin.Context, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
