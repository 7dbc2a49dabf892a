package server

import (
	"context"
	"net/http"
	"time"

	"github.com/amankumarsingh77/video-ingest/internal/middleware"
	videoHttp "github.com/amankumarsingh77/video-ingest/internal/videofiles/delivery/http"
	videoRepository "github.com/amankumarsingh77/video-ingest/internal/videofiles/repository"
	videoUsecase "github.com/amankumarsingh77/video-ingest/internal/videofiles/usecase"
	"github.com/amankumarsingh77/video-ingest/internal/worker"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	vRepo := videoRepository.NewVideoRepo(s.db)
	vAWSRepo := videoRepository.NewAwsRepository(s.s3Client, s.cfg.S3.PublicBaseURL)
	vRedisRepo := videoRepository.NewVideoRedisRepo(
		s.redisClient,
		s.cfg.Redis.JobKeyPrefix,
		s.cfg.Redis.JobChannel,
		time.Duration(s.cfg.Redis.JobTTL)*time.Second,
	)

	tc := s.cfg.Transcoder
	cleanup := worker.NewCleanup(vAWSRepo, s.cfg.S3.Bucket, tc.CompensationTimeoutDuration(), s.logger)
	pipeline := worker.NewPipeline(
		worker.NewStager(tc.WorkDir),
		worker.NewTranscoder(worker.NewFFmpegRunner(tc.FFmpegPath), tc.SegmentDuration, tc.TimeoutDuration(), s.logger),
		worker.NewUploader(vAWSRepo, s.cfg.S3.Bucket, s.cfg.S3.KeyPrefix, s.cfg.Worker.UploadConcurrency, s.logger),
		worker.NewFinalizer(vRepo, cleanup),
		cleanup,
		vRedisRepo,
		s.logger,
	)
	s.worker = worker.NewWorker(s.cfg, pipeline, s.logger)
	s.worker.Start()

	sweepCtx, cancel := context.WithCancel(context.Background())
	s.stopSweeper = cancel
	sweeper := worker.NewSweeper(tc.WorkDir, tc.GracePeriod(), tc.SweepIntervalDuration(), pipeline.InUse, s.logger)
	go sweeper.Run(sweepCtx)

	videoUC := videoUsecase.NewVideoUseCase(vRepo, vRedisRepo, pipeline, s.worker, s.logger)
	videoHandlers := videoHttp.NewVideoHandler(videoUC, s.logger)

	mw := middleware.NewMiddlewareManager(s.cfg, s.cfg.Server.AllowOrigins, s.logger)

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(mw.CORS())
	e.Use(echomw.BodyLimit(s.cfg.Server.BodyLimit))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	videoGroup := v1.Group("/video")

	videoHttp.MapVideoRoutes(videoGroup, videoHandlers, mw)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		accepting, usage := utils.CheckCPUUsage(s.cfg.Worker.MaxCPUUsage)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":         "OK",
			"cpu_usage":      usage,
			"accepting_work": accepting,
		})
	})
	return nil
}
