package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct {
	departmentService service.DepartmentService
}

func NewDepartmentHandler(departmentService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/api/departments")
	{
		departments.GET("", middleware.RequirePermission("projects.read"), h.ListDepartments)
		departments.GET("/gates", middleware.RequirePermission("projects.read"), h.ListGates)
	}

	categories := router.Group("/api/categories")
	{
		categories.GET("", middleware.RequirePermission("projects.read"), h.ListCategories)
		categories.GET("/:id", middleware.RequirePermission("projects.read"), h.GetCategory)
		categories.POST("", middleware.RequirePermission("categories.write"), h.CreateCategory)
		categories.PUT("/:id/mappings", middleware.RequirePermission("categories.write"), h.ReplaceMappings)
	}
}

// ListDepartments returns the department catalog in workflow order
// @Summary      List departments
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.DepartmentResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/departments [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	departments, err := h.departmentService.ListDepartments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, departments))
}

// ListGates returns the approval gate configuration per department
// @Summary      List approval gates
// @Tags         departments
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.GateResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/departments/gates [get]
func (h *DepartmentHandler) ListGates(c *gin.Context) {
	gates, err := h.departmentService.ListGates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gates))
}

// ListCategories returns all project categories with their workflow mappings
// @Summary      List categories
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CategoryResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/categories [get]
func (h *DepartmentHandler) ListCategories(c *gin.Context) {
	categories, err := h.departmentService.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// GetCategory fetches one category and its workflow mappings
// @Summary      Get category
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Category ID"
// @Success      200  {object}  response.Response{data=service.CategoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/categories/{id} [get]
func (h *DepartmentHandler) GetCategory(c *gin.Context) {
	category, err := h.departmentService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// CreateCategory creates a project category
// @Summary      Create category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCategoryRequest  true  "Create Category Payload"
// @Success      201      {object}  response.Response{data=service.CategoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/categories [post]
func (h *DepartmentHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.departmentService.CreateCategory(c.Request.Context(), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// ReplaceMappings replaces a category's workflow sequence
// @Summary      Replace category mappings
// @Description  Validates the submitted department sequence as a workflow graph before persisting; malformed sequences are rejected with 400
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Category ID"
// @Param        payload  body      service.ReplaceMappingsRequest  true  "Mappings Payload"
// @Success      200      {object}  response.Response{data=service.CategoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/categories/{id}/mappings [put]
func (h *DepartmentHandler) ReplaceMappings(c *gin.Context) {
	var req service.ReplaceMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.departmentService.ReplaceCategoryMappings(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}
