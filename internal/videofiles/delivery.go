package videofiles

import "github.com/labstack/echo/v4"

type Handler interface {
	UploadVideo() echo.HandlerFunc
	SubmitVideo() echo.HandlerFunc
	GetJobStatus() echo.HandlerFunc
	GetVideoByID() echo.HandlerFunc
}
