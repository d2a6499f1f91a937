package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-service/internal/service"
)

// writeError maps service errors to a single user-facing JSON message.
// insertMsg is shown when the record write fails.
func writeError(c *gin.Context, err error, insertMsg string) {
	_ = c.Error(err)

	var verr *service.ValidationError
	var uerr *service.UploadError
	var ierr *service.InsertError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.As(err, &uerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": uerr.Error(), "file": uerr.File})
	case errors.As(err, &ierr):
		c.JSON(http.StatusBadGateway, gin.H{"error": insertMsg})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "request cancelled"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
