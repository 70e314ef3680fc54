package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/pagination"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approvals")
	{
		approvals.GET("", middleware.RequirePermission("approvals.read"), h.ListApprovals)
		approvals.PUT("/:id/decision", middleware.RequirePermission("approvals.decide"), h.SubmitDecision)
	}

	history := router.Group("/api/history")
	{
		history.POST("/:id/approvals", middleware.RequirePermission("approvals.request"), h.RequestApproval)
		history.GET("/:id/approvals", middleware.RequirePermission("approvals.read"), h.ListForEntry)
	}
}

// RequestApproval opens an approval request on a department visit
// @Summary      Request approval
// @Description  Creates a pending approval request on a history entry; at most one pending request per type per visit
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "History Entry ID"
// @Param        payload  body      service.RequestApprovalRequest  true  "Request Payload"
// @Success      201      {object}  response.Response{data=service.ApprovalResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/history/{id}/approvals [post]
func (h *ApprovalHandler) RequestApproval(c *gin.Context) {
	var req service.RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	approval, err := h.approvalService.RequestApproval(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, approval))
}

// SubmitDecision approves or rejects a pending approval request
// @Summary      Decide approval
// @Description  Records an APPROVED or REJECTED decision; client-approval decisions also drive the visit's work status
// @Tags         approvals
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Approval Request ID"
// @Param        payload  body      service.ApprovalDecisionRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=service.ApprovalResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/approvals/{id}/decision [put]
func (h *ApprovalHandler) SubmitDecision(c *gin.Context) {
	var req service.ApprovalDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	approval, err := h.approvalService.SubmitDecision(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// ListApprovals returns a paginated approvals list, optionally by status
// @Summary      List approvals
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.ApprovalFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	approvals, total, err := h.approvalService.ListApprovals(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	payload := params.Meta(total)
	payload["approvals"] = approvals
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}

// ListForEntry returns every approval request on one department visit
// @Summary      Approvals for history entry
// @Tags         approvals
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "History Entry ID"
// @Success      200  {object}  response.Response{data=[]service.ApprovalResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/history/{id}/approvals [get]
func (h *ApprovalHandler) ListForEntry(c *gin.Context) {
	approvals, err := h.approvalService.ListForEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}
