package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/perda-lpj-api/api/swagger"
	"github.com/noah-isme/perda-lpj-api/internal/assembly"
	"github.com/noah-isme/perda-lpj-api/internal/handler"
	internalmiddleware "github.com/noah-isme/perda-lpj-api/internal/middleware"
	"github.com/noah-isme/perda-lpj-api/internal/repository"
	"github.com/noah-isme/perda-lpj-api/internal/service"
	"github.com/noah-isme/perda-lpj-api/pkg/cache"
	"github.com/noah-isme/perda-lpj-api/pkg/config"
	"github.com/noah-isme/perda-lpj-api/pkg/database"
	"github.com/noah-isme/perda-lpj-api/pkg/jobs"
	"github.com/noah-isme/perda-lpj-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/perda-lpj-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/perda-lpj-api/pkg/middleware/requestid"
	"github.com/noah-isme/perda-lpj-api/pkg/pdfdoc"
	"github.com/noah-isme/perda-lpj-api/pkg/storage"
)

// @title Perda LPJ API
// @version 1.0.0
// @description Compiles Raperda/Perda and Raperbup/Perbup accountability reports into one PDF.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if err := database.Migrate(ctx, db, logr); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, document cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, logr, service.CacheConfig{
				Enabled:    true,
				DefaultTTL: cfg.Cache.TTL,
			})
			checks["redis"] = cacheRepo.Ping
		}
	}

	attachmentStore, err := storage.NewLocalStorage(cfg.Storage.AttachmentsDir)
	if err != nil {
		logr.Fatal("failed to prepare attachment storage", zap.Error(err))
	}
	resultStore, err := storage.NewLocalStorage(cfg.Storage.ResultsDir)
	if err != nil {
		logr.Fatal("failed to prepare result storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	assembler, err := newAssembler(cfg.Layout, logr)
	if err != nil {
		logr.Fatal("failed to load layout", zap.Error(err))
	}

	documentRepo := repository.NewDocumentRepository(db)
	mainRepo := repository.NewMainAttachmentRepository(db)
	supportingRepo := repository.NewSupportingAttachmentRepository(db)
	jobRepo := repository.NewCompileJobRepository(db)

	validate := validator.New()
	documentSvc := service.NewDocumentService(documentRepo, mainRepo, supportingRepo, attachmentStore, cacheSvc, validate, logr, service.DocumentServiceConfig{
		MaxFileSize: cfg.Storage.MaxFileSizeBytes,
		CacheTTL:    cfg.Cache.TTL,
	})
	attachmentCfg := service.AttachmentServiceConfig{MaxFileSize: cfg.Storage.MaxFileSizeBytes}
	attachmentSvc := service.NewAttachmentService(documentRepo, mainRepo, attachmentStore, assembler, cacheSvc, validate, logr, attachmentCfg)
	supportingSvc := service.NewSupportingAttachmentService(documentRepo, supportingRepo, attachmentStore, cacheSvc, validate, logr, attachmentCfg)

	resultSvc := service.NewResultService(resultStore, signer, service.ResultConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Compile.ResultTTL,
	})

	// worker and service reference each other through the queue
	var worker *service.CompileWorker
	queue := jobs.NewQueue("compile", func(jobCtx context.Context, job jobs.Job) error {
		return worker.Handle(jobCtx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Compile.WorkerConcurrency,
		BufferSize: cfg.Compile.QueueSize,
		MaxRetries: cfg.Compile.WorkerRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr,
	})
	metricsSvc.TrackQueue(queue.Stats)
	compileSvc := service.NewCompileService(jobRepo, documentRepo, mainRepo, attachmentStore, assembler, resultSvc, queue, metricsSvc, logr, service.CompileServiceConfig{
		ResultTTL:       cfg.Compile.ResultTTL,
		CleanupInterval: cfg.Compile.CleanupInterval,
	})
	worker = service.NewCompileWorker(jobRepo, compileSvc, cfg.Compile.WorkerRetries, logr)

	queue.Start(ctx)
	defer queue.Stop()
	compileSvc.RecoverPendingJobs(ctx)
	compileSvc.StartCleanup(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.MaxMultipartMemory = 8 << 20

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Documents:   handler.NewDocumentHandler(documentSvc),
		Attachments: handler.NewAttachmentHandler(attachmentSvc),
		Supporting:  handler.NewSupportingAttachmentHandler(supportingSvc),
		Compile:     handler.NewCompileHandler(compileSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	}, internalmiddleware.WithResponseMeta())

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

func newAssembler(cfg config.LayoutConfig, logr *zap.Logger) (*assembly.Assembler, error) {
	profile, err := assembly.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	if region := strings.TrimSpace(cfg.Region); region != "" {
		profile.Region = strings.ToUpper(region)
	}
	var opts []assembly.Option
	if cfg.SealPath != "" {
		png, ratio, err := pdfdoc.LoadSeal(cfg.SealPath, profile.SealWidthPx)
		switch {
		case err == nil:
			opts = append(opts, assembly.WithSeal(png, ratio))
		case errors.Is(err, os.ErrNotExist):
			logr.Warn("seal image not found, covers are rendered without it", zap.String("path", cfg.SealPath))
		default:
			return nil, err
		}
	}
	return assembly.NewAssembler(profile, logr, opts...), nil
}
