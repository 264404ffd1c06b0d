package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type GeneratePlanRequest struct {
	UserID string `json:"userId"`
}

type ToggleTaskRequest struct {
	Completed *bool  `json:"completed" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
}

type PlanIDRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type planTransition func(ctx context.Context, actorID, planID primitive.ObjectID) (*domain.Plan, error)

// GetToday handles GET /plans/today?userId=
func (h *PlanHandler) GetToday(c *gin.Context) {
	userID, ok := resolveUserID(c, c.Query("userId"))
	if !ok {
		return
	}

	plan, err := h.planService.GetToday(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			abortWithError(c, http.StatusNotFound, "No plan found for today")
			return
		}
		respondError(c, err, "Error fetching plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Generate handles POST /plans/generate
func (h *PlanHandler) Generate(c *gin.Context) {
	var req GeneratePlanRequest
	// An empty body is fine when the token names the user.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	plan, err := h.planService.Generate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Error generating plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Plan generated successfully",
		"plan":    plan,
	})
}

// ToggleTask handles PATCH /plans/tasks/:taskId
func (h *PlanHandler) ToggleTask(c *gin.Context) {
	var req ToggleTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, ok := parseObjectID(c, req.PlanID, "planId")
	if !ok {
		return
	}

	actorID, _ := tokenUserID(c)
	result, err := h.planService.ToggleTask(c.Request.Context(), actorID, planID, c.Param("taskId"), *req.Completed)
	if err != nil {
		respondError(c, err, "Error updating task")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Task updated successfully",
		"task":           result.Task,
		"completionRate": result.CompletionRate,
		"completedTasks": result.CompletedTasks,
		"totalTasks":     result.TotalTasks,
	})
}

// History handles GET /plans/history?userId=&limit=
func (h *PlanHandler) History(c *gin.Context) {
	userID, ok := resolveUserID(c, c.Query("userId"))
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	plans, err := h.planService.History(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "Error fetching plan history")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Complete handles PATCH /plans/complete
func (h *PlanHandler) Complete(c *gin.Context) {
	h.transition(c, h.planService.Complete, "Plan completed successfully", "Error completing plan")
}

// Cancel handles PATCH /plans/cancel
func (h *PlanHandler) Cancel(c *gin.Context) {
	h.transition(c, h.planService.Cancel, "Plan cancelled successfully", "Error cancelling plan")
}

func (h *PlanHandler) transition(c *gin.Context, apply planTransition, okMessage, errMessage string) {
	var req PlanIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, ok := parseObjectID(c, req.PlanID, "planId")
	if !ok {
		return
	}

	actorID, _ := tokenUserID(c)
	plan, err := apply(c.Request.Context(), actorID, planID)
	if err != nil {
		respondError(c, err, errMessage)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": okMessage, "plan": plan})
}

// queryInt reads an optional non-negative integer query parameter; 0 means unset.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}
