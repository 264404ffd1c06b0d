package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"alcyxob/confidence-coach/internal/llm"
	"alcyxob/confidence-coach/internal/planner"
	"alcyxob/confidence-coach/internal/repository/memory"
	"alcyxob/confidence-coach/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, authRequired bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	users := memory.NewUserRepository()
	plans := memory.NewPlanRepository()
	progress := memory.NewProgressRepository()

	// The disabled provider makes every generated plan the fallback plan.
	generator := planner.NewGenerator(llm.Disabled{}, logger)
	planService := service.NewPlanService(plans, users, generator, service.PlanOptions{SupersedeSameDay: true}, logger)
	progressService := service.NewProgressService(progress, users, plans, service.ProgressOptions{}, logger)

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())
	SetupRoutes(router, Services{
		Auth:       service.NewAuthService(users, "test-secret", time.Hour),
		Users:      service.NewUserService(users),
		Assessment: service.NewAssessmentService(users, planService, logger),
		Plans:      planService,
		Progress:   progressService,
		Reports:    service.NewReportService(users, plans, progressService, nil, logger),
	}, authRequired)

	return &testServer{router: router}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// register creates a user and returns its id and a token.
func (s *testServer) register(t *testing.T, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "Sam", "email": email, "password": "secret1"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[map[string]interface{}](t, w)

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[map[string]interface{}](t, w)
	return user["_id"].(string), login["token"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, true)
	w := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "OK", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, body["message"])
}

func TestAssessmentQuestions(t *testing.T) {
	s := newTestServer(t, true)
	w := s.do(t, http.MethodGet, "/api/assessment/questions", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	questions := decode[[]map[string]interface{}](t, w)
	require.Len(t, questions, 7)
	assert.Equal(t, "goals", questions[0]["id"])
}

func TestRegisterValidationAndConflict(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "A", "email": "not-an-email", "password": "secret1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.register(t, "dup@example.com")
	w = s.do(t, http.MethodPost, "/api/auth/register", gin.H{"name": "B", "email": "dup@example.com", "password": "secret1"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "dup@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCoachingFlow(t *testing.T) {
	s := newTestServer(t, false)
	userID, token := s.register(t, "flow@example.com")

	// Nothing planned yet.
	w := s.do(t, http.MethodGet, "/api/plans/today?userId="+userID, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No plan found for today", decode[map[string]string](t, w)["message"])

	w = s.do(t, http.MethodPost, "/api/plans/generate", gin.H{"userId": userID}, "")
	require.Equal(t, http.StatusBadRequest, w.Code, "assessment incomplete")

	w = s.do(t, http.MethodPost, "/api/assessment/submit", gin.H{
		"userId": userID,
		"responses": gin.H{
			"goals":          []string{"Career advancement"},
			"available_time": "30 minutes",
			"motivation":     "Personal growth",
			"challenges":     []string{"Lack of time", "Procrastination"},
			"confidence":     6,
		},
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	submitted := decode[struct {
		Message         string                `json:"message"`
		ConfidenceScore int                   `json:"confidenceScore"`
		Plan            service.GeneratedPlan `json:"plan"`
	}](t, w)
	assert.Equal(t, 53, submitted.ConfidenceScore) // 60*0.8 + 15 - 10
	assert.False(t, submitted.Plan.AIGenerated)
	require.Len(t, submitted.Plan.Tasks, 2)

	// The token stands in for a missing userId.
	w = s.do(t, http.MethodGet, "/api/plans/today", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	today := decode[map[string]interface{}](t, w)
	planID := today["_id"].(string)
	assert.Equal(t, submitted.Plan.PlanID.Hex(), planID)

	w = s.do(t, http.MethodPatch, "/api/plans/tasks/task_1", gin.H{"completed": true, "planId": planID}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	toggled := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 50, toggled["completionRate"])
	assert.EqualValues(t, 1, toggled["completedTasks"])
	assert.EqualValues(t, 2, toggled["totalTasks"])

	w = s.do(t, http.MethodPatch, "/api/plans/tasks/task_9", gin.H{"completed": true, "planId": planID}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/progress/submit", gin.H{
		"userId": userID, "tasksCompleted": 1, "totalTasks": 2, "mood": "good",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	progress := decode[map[string]interface{}](t, w)
	assert.EqualValues(t, 0, progress["confidenceChange"]) // (0.5-0.5)*10
	assert.EqualValues(t, 53, progress["newConfidence"])

	w = s.do(t, http.MethodGet, "/api/progress/stats?userId="+userID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]int](t, w)
	assert.Equal(t, 50, stats["averageCompletion"])
	assert.Equal(t, 1, stats["streak"])

	w = s.do(t, http.MethodGet, "/api/progress/confidence?userId="+userID+"&days=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = s.do(t, http.MethodPatch, "/api/plans/complete", gin.H{"planId": planID}, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPatch, "/api/plans/tasks/task_2", gin.H{"completed": true, "planId": planID}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodGet, "/api/plans/history?userId="+userID+"&limit=3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)
}

func TestProgressSubmitErrors(t *testing.T) {
	s := newTestServer(t, false)
	userID, _ := s.register(t, "perr@example.com")

	w := s.do(t, http.MethodPost, "/api/progress/submit", gin.H{"userId": userID, "tasksCompleted": 3, "totalTasks": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/progress/submit", gin.H{"userId": userID, "totalTasks": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "tasksCompleted is required")

	w = s.do(t, http.MethodPost, "/api/progress/submit", gin.H{"userId": primitive.NewObjectID().Hex(), "tasksCompleted": 1, "totalTasks": 2}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/progress/submit", gin.H{"userId": "nope", "tasksCompleted": 1, "totalTasks": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportWithoutStorage(t *testing.T) {
	s := newTestServer(t, false)
	userID, _ := s.register(t, "export@example.com")

	w := s.do(t, http.MethodPost, "/api/progress/export", gin.H{"userId": userID}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, true)
	userID, token := s.register(t, "req@example.com")
	otherID, _ := s.register(t, "other@example.com")

	w := s.do(t, http.MethodGet, "/api/users/"+userID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/"+userID, nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/users/"+userID, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode[map[string]interface{}](t, w)
	assert.Equal(t, "req@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")

	w = s.do(t, http.MethodGet, "/api/users/"+otherID, nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/users/"+userID+"/profile", gin.H{"fitnessLevel": "Advanced"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[map[string]interface{}](t, w)["profile"].(map[string]interface{})
	assert.Equal(t, "Advanced", profile["fitnessLevel"])
	assert.Equal(t, "Sam", profile["name"])
}

func TestPlanMutationsRejectOtherUsers(t *testing.T) {
	s := newTestServer(t, true)
	aliceID, aliceToken := s.register(t, "alice@example.com")
	_, bobToken := s.register(t, "bob@example.com")

	w := s.do(t, http.MethodPost, "/api/assessment/submit", gin.H{"responses": gin.H{"confidence": 5}}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/plans/today", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	planID := decode[map[string]interface{}](t, w)["_id"].(string)

	w = s.do(t, http.MethodPatch, "/api/plans/tasks/task_1", gin.H{"completed": true, "planId": planID}, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	w = s.do(t, http.MethodPatch, "/api/plans/cancel", gin.H{"planId": planID}, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(t, http.MethodPatch, "/api/plans/complete", gin.H{"planId": planID}, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/plans/today?userId="+aliceID, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code, "plan is still active")
	tasks := decode[map[string]interface{}](t, w)["tasks"].([]interface{})
	assert.Equal(t, false, tasks[0].(map[string]interface{})["completed"])

	w = s.do(t, http.MethodPatch, "/api/plans/tasks/task_1", gin.H{"completed": true, "planId": planID}, aliceToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, statusFor(service.ErrPlanAccessDenied))
	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrTaskNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrConfidenceConflict))
	assert.Equal(t, http.StatusInternalServerError, statusFor(&service.ProcessingError{Op: "save plan", Err: assert.AnError}))
	assert.Equal(t, "User not found", capitalize(service.ErrUserNotFound.Error()))
}
