package handler

import (
	"errors"
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/workflow"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps service errors onto HTTP status codes. Workflow rule
// violations are 422 with structured details so the UI can show every unmet
// requirement; losing a concurrent race is 409; a bad category graph is 400.
func respondError(c *gin.Context, err error) {
	var invalidTransition *workflow.InvalidTransitionError
	var notReady *workflow.WorkStatusNotReadyError
	var gateErr *workflow.GateNotSatisfiedError
	var statusErr *workflow.InvalidStatusChangeError
	var configErr *workflow.ConfigurationError

	switch {
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorWithDetails(http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"from": invalidTransition.From,
			"to":   invalidTransition.To,
		}))
	case errors.As(err, &notReady):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorWithDetails(http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"department":      notReady.Department,
			"required_status": notReady.RequiredStatus,
			"current_status":  notReady.CurrentStatus,
		}))
	case errors.As(err, &gateErr):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorWithDetails(http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"department": gateErr.Department,
			"missing":    gateErr.Missing,
		}))
	case errors.As(err, &statusErr):
		c.JSON(http.StatusUnprocessableEntity, response.ErrorWithDetails(http.StatusUnprocessableEntity, err.Error(), map[string]interface{}{
			"from": statusErr.From,
			"to":   statusErr.To,
		}))
	case errors.Is(err, workflow.ErrConcurrentModification):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.As(err, &configErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	}
}

// actorID extracts the authenticated user ID the auth middleware stored.
func actorID(c *gin.Context) string {
	id, _ := c.Get("userID")
	s, _ := id.(string)
	return s
}
