package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"attendtrack/internal/apperr"
)

func respondData(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  ve.Fields,
		})
		return
	}

	var ae *apperr.AuthorizationError
	if errors.As(err, &ae) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": ae.Message})
		return
	}

	var nfe *apperr.NotFoundError
	if errors.As(err, &nfe) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": nfe.Error()})
		return
	}

	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": ce.Message})
		return
	}

	var se *apperr.StorageError
	if errors.As(err, &se) {
		log.Printf("storage error (ref %s): %v", se.CorrelationID, errors.Unwrap(se))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
			"ref":     se.CorrelationID,
		})
		return
	}

	log.Printf("unhandled error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
}
