package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressHandler struct {
	progressService service.ProgressService
	reportService   service.ReportService
}

func NewProgressHandler(progressService service.ProgressService, reportService service.ReportService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, reportService: reportService}
}

type SubmitProgressRequest struct {
	UserID         string      `json:"userId"`
	TasksCompleted *int        `json:"tasksCompleted" binding:"required"`
	TotalTasks     *int        `json:"totalTasks" binding:"required"`
	Mood           domain.Mood `json:"mood"`
	Notes          string      `json:"notes"`
	Achievements   []string    `json:"achievements"`
	Challenges     []string    `json:"challenges"`
	NextDayGoals   []string    `json:"nextDayGoals"`
}

type ExportReportRequest struct {
	UserID string `json:"userId"`
	Days   int    `json:"days" binding:"gte=0"`
}

// List handles GET /progress?userId=&days=
func (h *ProgressHandler) List(c *gin.Context) {
	userID, days, ok := userAndDays(c)
	if !ok {
		return
	}
	records, err := h.progressService.Recent(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err, "Error fetching progress")
		return
	}
	c.JSON(http.StatusOK, records)
}

// Submit handles POST /progress/submit
func (h *ProgressHandler) Submit(c *gin.Context) {
	var req SubmitProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.progressService.Submit(c.Request.Context(), service.ProgressSubmission{
		UserID:         userID,
		TasksCompleted: *req.TasksCompleted,
		TotalTasks:     *req.TotalTasks,
		Mood:           req.Mood,
		Notes:          req.Notes,
		Achievements:   req.Achievements,
		Challenges:     req.Challenges,
		NextDayGoals:   req.NextDayGoals,
	})
	if err != nil {
		respondError(c, err, "Error submitting progress")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "Progress submitted successfully",
		"progress":         result.Progress,
		"confidenceChange": result.ConfidenceChange,
		"newConfidence":    result.NewConfidence,
	})
}

// Confidence handles GET /progress/confidence?userId=&days=
func (h *ProgressHandler) Confidence(c *gin.Context) {
	userID, days, ok := userAndDays(c)
	if !ok {
		return
	}
	trend, err := h.progressService.Trend(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err, "Error fetching confidence trend")
		return
	}
	c.JSON(http.StatusOK, trend)
}

// Stats handles GET /progress/stats?userId=&days=
func (h *ProgressHandler) Stats(c *gin.Context) {
	userID, days, ok := userAndDays(c)
	if !ok {
		return
	}
	stats, err := h.progressService.Stats(c.Request.Context(), userID, days)
	if err != nil {
		respondError(c, err, "Error fetching statistics")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export handles POST /progress/export
func (h *ProgressHandler) Export(c *gin.Context) {
	var req ExportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	export, err := h.reportService.Export(c.Request.Context(), userID, req.Days)
	if err != nil {
		respondError(c, err, "Error exporting report")
		return
	}
	c.JSON(http.StatusOK, export)
}

func userAndDays(c *gin.Context) (userID primitive.ObjectID, days int, ok bool) {
	id, ok := resolveUserID(c, c.Query("userId"))
	if !ok {
		return id, 0, false
	}
	days, ok = queryInt(c, "days")
	return id, days, ok
}
