package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vishwaguru-be/assistant"
	"vishwaguru-be/bot"
	"vishwaguru-be/config"
	"vishwaguru-be/controllers"
	"vishwaguru-be/inference"
	"vishwaguru-be/intake"
	"vishwaguru-be/locator"
	"vishwaguru-be/metrics"
	"vishwaguru-be/middlewares"
	"vishwaguru-be/routes"
	"vishwaguru-be/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	issues, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := issues.Close(closeCtx); err != nil {
			logger.Warn("failed to close issue store", zap.Error(err))
		}
	}()

	directory, err := locator.Load(
		filepath.Join(cfg.Storage.DataDir, "mh_pincode_sample.json"),
		filepath.Join(cfg.Storage.DataDir, "mh_mla_sample.json"),
	)
	if err != nil {
		return fmt.Errorf("load representative data: %w", err)
	}
	responsibility, err := locator.LoadResponsibilityMap(filepath.Join(cfg.Storage.DataDir, "responsibility_map.json"))
	if err != nil {
		return fmt.Errorf("load responsibility map: %w", err)
	}
	logger.Info("reference data loaded", zap.Int("districts", len(directory.Districts())))

	recorder := metrics.New()

	gateway := inference.NewGateway(inference.Config{
		Token:     cfg.Inference.Token,
		URL:       cfg.Inference.URL,
		Timeout:   cfg.Inference.Timeout,
		Threshold: cfg.Inference.Threshold,
	}, logger, recorder)
	if !gateway.Enabled() {
		logger.Warn("HF_TOKEN not set, detection endpoints will return no detections")
	}

	ai := assistant.NewClient(assistant.Config{
		APIKey:  cfg.Assistant.APIKey,
		BaseURL: cfg.Assistant.BaseURL,
		Model:   cfg.Assistant.Model,
		Timeout: cfg.Assistant.Timeout,
	}, logger, recorder)
	if !ai.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, assistant will use fallback responses")
	}

	uploads, err := intake.NewUploadStore(cfg.Storage.UploadDir)
	if err != nil {
		return err
	}
	pipeline := intake.NewPipeline(uploads, issues, ai, logger, recorder)

	var limiter gin.HandlerFunc
	redisClient, err := config.ConnectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, issue rate limiting disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
		limiter = middlewares.IssueRateLimiter(redisClient, cfg.Redis.QueuePrefix, cfg.Redis.IssueDailyLimit, logger)
	}

	router := routes.NewRouter(routes.Dependencies{
		Log:            logger,
		Issues:         controllers.NewIssueController(pipeline, issues, logger),
		Detect:         controllers.NewDetectController(gateway),
		Representative: controllers.NewRepresentativeController(directory, ai, responsibility),
		Assistant:      controllers.NewAssistantController(ai),
		IssueLimiter:   limiter,
		Observer:       recorder,
		Metrics:        recorder.Handler(),
		AllowedOrigins: splitOrigins(cfg.Server.FrontendURL),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()
	if cfg.Telegram.Token != "" {
		telegram, err := bot.NewTelegram(cfg.Telegram.Token, logger)
		if err != nil {
			logger.Error("Telegram bot disabled", zap.Error(err))
		} else {
			chatBot := bot.New(telegram, pipeline, logger)
			wg.Add(1)
			go func() {
				defer wg.Done()
				telegram.Run(botCtx, chatBot)
			}()
		}
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, bot will not start")
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Server.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stopBot()
		wg.Wait()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	stopBot()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Database.Driver == config.DriverMongo {
		db, err := config.ConnectMongo(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		s, err := store.NewMongoStore(ctx, db)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	db, err := config.ConnectDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	s, err := store.NewGormStore(db)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
