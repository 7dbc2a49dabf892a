package http

import (
	"github.com/amankumarsingh77/video-ingest/internal/middleware"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/labstack/echo/v4"
)

func MapVideoRoutes(videoGroup *echo.Group, h videofiles.Handler, mw *middleware.MiddlewareManager) {
	videoGroup.POST("/upload", h.UploadVideo(), mw.AuthJWTMiddleware, mw.AdminMiddleware)
	videoGroup.POST("/upload/async", h.SubmitVideo(), mw.AuthJWTMiddleware, mw.AdminMiddleware)
	videoGroup.GET("/jobs/:job_id", h.GetJobStatus())
	videoGroup.GET("/:video_id", h.GetVideoByID())
}
