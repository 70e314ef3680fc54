package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/pagination"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects")
	{
		projects.POST("/:id/comments", middleware.RequirePermission("comments.write"), h.CreateComment)
		projects.GET("/:id/comments", middleware.RequirePermission("comments.read"), h.ListComments)
	}

	router.DELETE("/api/comments/:id", middleware.RequirePermission("comments.write"), h.DeleteComment)
}

// CreateComment adds a comment to a project
// @Summary      Create comment
// @Tags         comments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Project ID"
// @Param        payload  body      service.CreateCommentRequest  true  "Comment Payload"
// @Success      201      {object}  response.Response{data=service.CommentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/projects/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req service.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, comment))
}

// ListComments returns the comments of a project
// @Summary      List project comments
// @Tags         comments
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      string  true   "Project ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/projects/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	params := pagination.Parse(c)

	comments, total, err := h.commentService.ListComments(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	payload := params.Meta(total)
	payload["comments"] = comments
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}

// DeleteComment removes a comment (author or admin only)
// @Summary      Delete comment
// @Tags         comments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Comment ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)

	if err := h.commentService.DeleteComment(c.Request.Context(), c.Param("id"), actorID(c), roleStr); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Comment deleted"))
}
