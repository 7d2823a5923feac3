package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-courier/pkg/apperrors"
)

func replyHTTPError(c *gin.Context, err error) {
	var app *apperrors.AppError
	if !errors.As(err, &app) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusBadRequest
	switch app.Code {
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeAlreadyExists:
		status = http.StatusConflict
	case apperrors.CodeResourceExhausted:
		status = http.StatusTooManyRequests
	case apperrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	case apperrors.CodeInternal:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": app.Message, "code": app.Code})
}
