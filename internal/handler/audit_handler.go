package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/pagination"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", middleware.RequirePermission("audit.read"), h.GetAuditLogs)
}

// GetAuditLogs returns paginated audit records
// @Summary      List audit logs
// @Description  Retrieves audit records newest first, optionally filtered by action or entity ID
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action     query     string  false  "Filter by action"
// @Param        entity_id  query     string  false  "Filter by entity ID"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      500        {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.AuditFilter{
		Action:   c.Query("action"),
		EntityID: c.Query("entity_id"),
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	payload := params.Meta(total)
	payload["logs"] = logs
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}
