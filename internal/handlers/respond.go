package handlers

import (
	"net/http"

	"stresscheck-go/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *gin.Context) uuid.UUID {
	value, _ := c.Get("userID")
	id, _ := value.(uuid.UUID)
	return id
}

// currentCompanyID reads the authenticated user's company id.
func currentCompanyID(c *gin.Context) uuid.UUID {
	value, _ := c.Get("companyID")
	id, _ := value.(uuid.UUID)
	return id
}

var statusByCode = map[services.ErrorCode]int{
	services.ErrorValidation:   http.StatusBadRequest,
	services.ErrorDuplicate:    http.StatusConflict,
	services.ErrorNotFound:     http.StatusNotFound,
	services.ErrorUnauthorized: http.StatusUnauthorized,
	services.ErrorForbidden:    http.StatusForbidden,
	services.ErrorUnavailable:  http.StatusInternalServerError,
}

// respondError maps a service error to its HTTP status. Internal causes are
// logged but never leak into the response body.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	se, ok := services.AsServiceError(err)
	if !ok {
		log.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status, ok := statusByCode[se.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": se.Message}
	if se.Field != "" {
		body["field"] = se.Field
	}
	c.JSON(status, body)
}
