package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/billing_backend/models"
	"github.com/mmdatafocus/billing_backend/utils"
)

// writeError maps the error taxonomy onto a status code. Server-side
// failures are also attached to the gin context for customErrorLogger.
func writeError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var partialErr *utils.PartialWriteError
	var storeErr *utils.StoreError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Reason.Error(), "field": validationErr.Field})
	case errors.Is(err, utils.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &partialErr):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":       "partial write",
			"document":    partialErr.Document,
			"document_id": partialErr.DocumentId,
			"step":        partialErr.Step,
		})
	case errors.As(err, &storeErr) && errors.Is(err, models.ErrDuplicateKey):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.As(err, &storeErr):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable", "op": storeErr.Op})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bindJSON decodes the body into input. Enum fields reject bad values while
// decoding, so a ValidationError can surface here too.
func bindJSON(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		var validationErr *utils.ValidationError
		if errors.As(err, &validationErr) {
			writeError(c, err)
			return false
		}
		badRequest(c, "invalid request: "+err.Error())
		return false
	}
	return true
}
