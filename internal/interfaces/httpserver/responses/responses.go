package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"instareply/internal/utils/apperrors"
)

// ErrorResponse is the JSON error envelope for all API routes.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleError maps a domain error to an HTTP status and aborts the request.
func HandleError(reqCtx *gin.Context, err error, message string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		reqCtx.AbortWithStatusJSON(apperrors.TypeToHTTPStatus(appErr.Type), ErrorResponse{
			Error:   message,
			Details: appErr.Message,
		})
		return
	}
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: message,
	})
}

// HandleValidationError reports a malformed request.
func HandleValidationError(reqCtx *gin.Context, message string) {
	reqCtx.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}
