// Package handlers implements the HTTP endpoints of the engine.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/docsight/docsight/pkg/errors"
)

// errorResponse is the standard error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto its HTTP status.  Errors that
// are not AppErrors are masked as internal.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.New(apperrors.ErrCodeInternal, "internal server error")
	}
	c.JSON(appErr.Code.HTTPStatus(), errorResponse{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

// badRequest reports a malformed request body or parameter.
func badRequest(c *gin.Context, msg string) {
	respondError(c, apperrors.New(apperrors.ErrCodeBadRequest, msg))
}
