package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"
	"alcyxob/confidence-coach/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const reportPlanCount = 7

// ReportExport points at an uploaded report.
type ReportExport struct {
	ObjectKey   string    `json:"objectKey"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// progressReport is the JSON document written to storage.
type progressReport struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	WindowDays  int                 `json:"windowDays"`
	User        reportUser          `json:"user"`
	Stats       domain.Stats        `json:"stats"`
	Trend       []domain.TrendPoint `json:"trend"`
	RecentPlans []domain.Plan       `json:"recentPlans"`
}

type reportUser struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	InitialConfidence int    `json:"initialConfidence"`
	CurrentConfidence int    `json:"currentConfidence"`
}

type ReportService interface {
	Export(ctx context.Context, userID primitive.ObjectID, days int) (*ReportExport, error)
}

type reportService struct {
	userRepo        repository.UserRepository
	planRepo        repository.PlanRepository
	progressService ProgressService
	fileStorage     storage.FileStorage // nil when export is disabled
	logger          *zap.Logger
	now             func() time.Time
}

// NewReportService accepts a nil fileStorage; Export then fails with ErrStorageUnavailable.
func NewReportService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	progressService ProgressService,
	fileStorage storage.FileStorage,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		userRepo:        userRepo,
		planRepo:        planRepo,
		progressService: progressService,
		fileStorage:     fileStorage,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *reportService) Export(ctx context.Context, userID primitive.ObjectID, days int) (*ReportExport, error) {
	if s.fileStorage == nil {
		return nil, ErrStorageUnavailable
	}
	if days <= 0 {
		days = DefaultStatsDays
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, processing("load user", err)
	}

	stats, err := s.progressService.Stats(ctx, userID, days)
	if err != nil {
		return nil, processing("compute stats", err)
	}
	trend, err := s.progressService.Trend(ctx, userID, days)
	if err != nil {
		return nil, processing("compute trend", err)
	}
	plans, err := s.planRepo.GetRecentByUser(ctx, userID, reportPlanCount)
	if err != nil {
		return nil, processing("load plans", err)
	}

	report := progressReport{
		GeneratedAt: s.now().UTC(),
		WindowDays:  days,
		User: reportUser{
			ID:                user.ID.Hex(),
			Name:              user.Profile.Name,
			Email:             user.Email,
			InitialConfidence: user.Assessment.InitialConfidence,
			CurrentConfidence: user.Assessment.CurrentConfidence,
		},
		Stats:       stats,
		Trend:       trend,
		RecentPlans: plans,
	}
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, processing("encode report", err)
	}

	objectKey := path.Join("reports", userID.Hex(), uuid.NewString()+".json")
	if err := s.fileStorage.PutObject(ctx, objectKey, "application/json", body); err != nil {
		return nil, processing("upload report", err)
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		// Do not leave an unreachable report behind.
		if delErr := s.fileStorage.DeleteObject(ctx, objectKey); delErr != nil {
			s.logger.Warn("failed to remove report after presign error", zap.String("key", objectKey), zap.Error(delErr))
		}
		return nil, processing("presign report", err)
	}

	s.logger.Info("progress report exported", zap.String("userId", userID.Hex()), zap.String("key", objectKey))
	return &ReportExport{
		ObjectKey:   objectKey,
		DownloadURL: url,
		ExpiresAt:   report.GeneratedAt.Add(storage.DefaultPresignedURLExpiry),
	}, nil
}
