package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"alcyxob/confidence-coach/internal/api"
	"alcyxob/confidence-coach/internal/llm"
	"alcyxob/confidence-coach/internal/planner"
	"alcyxob/confidence-coach/internal/repository"
	"alcyxob/confidence-coach/internal/repository/memory"
	"alcyxob/confidence-coach/internal/repository/mongo"
	"alcyxob/confidence-coach/internal/service"
	"alcyxob/confidence-coach/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type repositories struct {
	users    repository.UserRepository
	plans    repository.PlanRepository
	progress repository.ProgressRepository
	close    func()
}

func openRepositories(ctx context.Context) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn("using in-memory storage, data is lost on restart")
		return &repositories{
			users:    memory.NewUserRepository(),
			plans:    memory.NewPlanRepository(),
			progress: memory.NewProgressRepository(),
			close:    func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if err := mongo.EnsureIndexes(indexCtx, db); err != nil {
		_ = mongo.DisconnectDB(client)
		return nil, err
	}

	return &repositories{
		users:    mongo.NewMongoUserRepository(db),
		plans:    mongo.NewMongoPlanRepository(db),
		progress: mongo.NewMongoProgressRepository(db),
		close: func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(client); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		},
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger.Info("starting Confidence Coach server")

	loc, err := cfg.App.Location()
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	defer repos.close()

	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		logger.Info("s3 bucket not configured, report export disabled")
	}

	completer, err := llm.New(cfg.LLM, logger)
	if err != nil {
		return err
	}
	generator := planner.NewGenerator(completer, logger)

	// --- Services ---
	authService := service.NewAuthService(repos.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(repos.users)
	planService := service.NewPlanService(repos.plans, repos.users, generator, service.PlanOptions{
		SupersedeSameDay: cfg.Plans.SupersedeSameDay,
		HistoryLimit:     cfg.Plans.HistoryLimit,
		Location:         loc,
	}, logger)
	assessmentService := service.NewAssessmentService(repos.users, planService, logger)
	progressService := service.NewProgressService(repos.progress, repos.users, repos.plans,
		service.ProgressOptions{Location: loc}, logger)
	reportService := service.NewReportService(repos.users, repos.plans, progressService, fileStorage, logger)

	// --- Router ---
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.New()
	router.Use(api.RequestLogger(logger), gin.Recovery())
	api.SetupRoutes(router, api.Services{
		Auth:       authService,
		Users:      userService,
		Assessment: assessmentService,
		Plans:      planService,
		Progress:   progressService,
		Reports:    reportService,
	}, cfg.Auth.Required)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("address", cfg.Server.Address),
			zap.Bool("authRequired", cfg.Auth.Required))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exiting")
	return nil
}
