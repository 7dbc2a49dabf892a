package utils

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
)

type ClaimsCtxKey struct{}

func GetClaimsFromCtx(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(ClaimsCtxKey{}).(*Claims)
	if !ok {
		return nil, fmt.Errorf("claims not found in context")
	}
	return claims, nil
}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func GetIPAddress(c echo.Context) string {
	return c.RealIP()
}
