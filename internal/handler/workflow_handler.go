package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type WorkflowHandler struct {
	workflowService service.WorkflowService
}

func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflowService: workflowService}
}

func (h *WorkflowHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects")
	{
		projects.POST("/:id/move", middleware.RequirePermission("workflow.move"), h.MoveToDepartment)
		projects.GET("/:id/allowed-next", middleware.RequirePermission("projects.read"), h.GetAllowedNext)
		projects.GET("/:id/workflow-status", middleware.RequirePermission("projects.read"), h.GetWorkflowStatus)
		projects.GET("/:id/history", middleware.RequirePermission("projects.read"), h.GetHistory)
	}

	history := router.Group("/api/history")
	{
		history.PUT("/:id/status", middleware.RequirePermission("workflow.status"), h.UpdateWorkStatus)
	}
}

// MoveToDepartment advances a project to another department
// @Summary      Move project to department
// @Description  Validates the transition against the project's workflow graph and gates, closes the current department visit and opens a new one
// @Tags         workflow
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Project ID"
// @Param        payload  body      service.MoveToDepartmentRequest  true  "Move Payload"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/projects/{id}/move [post]
func (h *WorkflowHandler) MoveToDepartment(c *gin.Context) {
	var req service.MoveToDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.workflowService.MoveToDepartment(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// UpdateWorkStatus changes the work status of the current department visit
// @Summary      Update work status
// @Description  Applies a work-status machine step to the latest history entry of a project
// @Tags         workflow
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "History Entry ID"
// @Param        payload  body      service.UpdateWorkStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.HistoryEntryResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/history/{id}/status [put]
func (h *WorkflowHandler) UpdateWorkStatus(c *gin.Context) {
	var req service.UpdateWorkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.workflowService.UpdateWorkStatus(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// GetAllowedNext lists the departments a project may move to right now
// @Summary      Allowed next departments
// @Tags         workflow
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id}/allowed-next [get]
func (h *WorkflowHandler) GetAllowedNext(c *gin.Context) {
	departments, err := h.workflowService.GetAllowedNextDepartments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"allowed_next": departments,
	}))
}

// GetWorkflowStatus returns the full workflow validation view of a project
// @Summary      Workflow validation status
// @Description  Current department, work status, allowed moves, gate evaluation and project code in one payload
// @Tags         workflow
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.WorkflowStatusResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id}/workflow-status [get]
func (h *WorkflowHandler) GetWorkflowStatus(c *gin.Context) {
	status, err := h.workflowService.GetWorkflowValidationStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// GetHistory returns the append-only department history of a project
// @Summary      Project department history
// @Tags         workflow
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=[]service.HistoryEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/projects/{id}/history [get]
func (h *WorkflowHandler) GetHistory(c *gin.Context) {
	entries, err := h.workflowService.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
