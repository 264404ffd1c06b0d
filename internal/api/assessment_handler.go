package api

import (
	"fmt"
	"net/http"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
)

type AssessmentHandler struct {
	assessmentService service.AssessmentService
}

func NewAssessmentHandler(assessmentService service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessmentService: assessmentService}
}

type SubmitAssessmentRequest struct {
	UserID    string           `json:"userId"`
	Responses domain.Responses `json:"responses"`
}

// GetQuestions handles GET /assessment/questions
func (h *AssessmentHandler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.assessmentService.Questions())
}

// Submit handles POST /assessment/submit
func (h *AssessmentHandler) Submit(c *gin.Context) {
	var req SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	userID, ok := resolveUserID(c, req.UserID)
	if !ok {
		return
	}

	result, err := h.assessmentService.Submit(c.Request.Context(), userID, req.Responses)
	if err != nil {
		respondError(c, err, "Error processing assessment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Assessment completed successfully",
		"confidenceScore": result.ConfidenceScore,
		"plan":            result.Plan,
	})
}
