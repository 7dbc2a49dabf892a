package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/amankumarsingh77/video-ingest/internal/models"
	"github.com/amankumarsingh77/video-ingest/internal/videofiles"
	"github.com/amankumarsingh77/video-ingest/internal/worker"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type videoHandler struct {
	videoUC videofiles.UseCase
	logger  logger.Logger
}

func NewVideoHandler(videoUC videofiles.UseCase, logger logger.Logger) videofiles.Handler {
	return &videoHandler{
		videoUC: videoUC,
		logger:  logger,
	}
}

// UploadVideo blocks until the video is transcoded, stored and cataloged.
func (h *videoHandler) UploadVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		meta, video, thumbnail, err := bindUpload(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		entry, err := h.videoUC.UploadVideo(c.Request().Context(), meta, video, thumbnail)
		if err != nil {
			return h.uploadError(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	}
}

// SubmitVideo stages the upload and returns a job id to poll.
func (h *videoHandler) SubmitVideo() echo.HandlerFunc {
	return func(c echo.Context) error {
		meta, video, thumbnail, err := bindUpload(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		status, err := h.videoUC.SubmitVideo(c.Request().Context(), meta, video, thumbnail)
		if err != nil {
			if errors.Is(err, worker.ErrQueueFull) || errors.Is(err, worker.ErrStopped) {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Upload queue is full, try again later"})
			}
			return h.uploadError(c, err)
		}
		return c.JSON(http.StatusAccepted, status)
	}
}

func (h *videoHandler) GetJobStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		status, err := h.videoUC.GetJobStatus(c.Request().Context(), c.Param("job_id"))
		if err != nil {
			if errors.Is(err, videofiles.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get job status"})
		}
		return c.JSON(http.StatusOK, status)
	}
}

func (h *videoHandler) GetVideoByID() echo.HandlerFunc {
	return func(c echo.Context) error {
		videoID, err := uuid.Parse(c.Param("video_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid video id"})
		}
		video, err := h.videoUC.GetVideo(c.Request().Context(), videoID)
		if err != nil {
			if errors.Is(err, videofiles.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Video not found"})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get video"})
		}
		return c.JSON(http.StatusOK, video)
	}
}

// uploadError keeps pipeline detail in the server log only.
func (h *videoHandler) uploadError(c echo.Context, err error) error {
	if errors.Is(err, worker.ErrValidation) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Video, thumbnail, title and description are required"})
	}
	h.logger.Errorf("upload failed RequestID: %s, IP: %s, ERROR: %v", utils.GetRequestID(c), utils.GetIPAddress(c), err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to upload video"})
}

func bindUpload(c echo.Context) (models.VideoMeta, *models.UploadFile, *models.UploadFile, error) {
	meta := models.VideoMeta{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Genre:       models.Genre(c.FormValue("genre")),
	}
	video, err := formFile(c, "video")
	if err != nil {
		return meta, nil, nil, err
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		return meta, nil, nil, err
	}
	return meta, video, thumbnail, nil
}

// formFile returns nil for an absent part so the receiver reports it as a validation failure.
func formFile(c echo.Context, field string) (*models.UploadFile, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	return &models.UploadFile{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Open:        openPart(fh),
	}, nil
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}
