package handler

import (
	"net/http"

	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/pkg/response"

	"github.com/gin-gonic/gin"
)

type QAHandler struct {
	qaService service.QAService
}

func NewQAHandler(qaService service.QAService) *QAHandler {
	return &QAHandler{qaService: qaService}
}

func (h *QAHandler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/api/history")
	{
		history.POST("/:id/qa-rounds", middleware.RequirePermission("qa.write"), h.StartRound)
		history.GET("/:id/qa-rounds", middleware.RequirePermission("qa.read"), h.ListRoundsForEntry)
	}

	rounds := router.Group("/api/qa-rounds")
	{
		rounds.PUT("/:id/complete", middleware.RequirePermission("qa.write"), h.CompleteRound)
	}
}

// StartRound opens a QA testing round on a department visit
// @Summary      Start QA round
// @Description  Opens the next-numbered testing round on a history entry that is in a QA-eligible work status
// @Tags         qa
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "History Entry ID"
// @Param        payload  body      service.StartQARoundRequest  true  "Round Payload"
// @Success      201      {object}  response.Response{data=service.QARoundResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/history/{id}/qa-rounds [post]
func (h *QAHandler) StartRound(c *gin.Context) {
	var req service.StartQARoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	round, err := h.qaService.StartRound(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, round))
}

// CompleteRound closes a QA round with a pass or fail outcome
// @Summary      Complete QA round
// @Description  Records the round outcome, files reported bugs and drives the visit's work status accordingly
// @Tags         qa
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "QA Round ID"
// @Param        payload  body      service.CompleteQARoundRequest  true  "Outcome Payload"
// @Success      200      {object}  response.Response{data=service.QARoundResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/qa-rounds/{id}/complete [put]
func (h *QAHandler) CompleteRound(c *gin.Context) {
	var req service.CompleteQARoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	round, err := h.qaService.CompleteRound(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, round))
}

// ListRoundsForEntry returns the QA rounds of one department visit
// @Summary      QA rounds for history entry
// @Tags         qa
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "History Entry ID"
// @Success      200  {object}  response.Response{data=[]service.QARoundResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/history/{id}/qa-rounds [get]
func (h *QAHandler) ListRoundsForEntry(c *gin.Context) {
	rounds, err := h.qaService.ListRoundsForEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rounds))
}
