package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amankumarsingh77/video-ingest/pkg/utils"
	"github.com/labstack/echo/v4"
)

// AuthJWTMiddleware accepts a bearer token or the jwt-token cookie and stores its claims
// on both the echo and the request context.
func (mw *MiddlewareManager) AuthJWTMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			mw.logger.Errorf("auth middleware RequestID: %s, ERROR: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		claims, err := utils.ValidateToken(tokenString, mw.cfg.Server.JwtSecretKey)
		if err != nil {
			mw.logger.Errorf("middleware ValidateToken RequestID: %s, ERROR: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		c.Set("claims", claims)
		ctx := context.WithValue(c.Request().Context(), utils.ClaimsCtxKey{}, claims)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// AdminMiddleware must run after AuthJWTMiddleware.
func (mw *MiddlewareManager) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := utils.GetClaimsFromCtx(c.Request().Context())
		if err != nil {
			mw.logger.Errorf("Error GetClaimsFromCtx RequestID: %s, ERROR: %v", utils.GetRequestID(c), err)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		if claims.Role != utils.RoleAdmin {
			mw.logger.Errorf("Error admin check RequestID: %s, UserID: %s, Role: %s",
				utils.GetRequestID(c),
				claims.UserID,
				claims.Role,
			)
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden"})
		}
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) (string, error) {
	if bearerHeader := c.Request().Header.Get(echo.HeaderAuthorization); bearerHeader != "" {
		headerParts := strings.Split(bearerHeader, " ")
		if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "Bearer") || headerParts[1] == "" {
			return "", fmt.Errorf("malformed authorization header")
		}
		return headerParts[1], nil
	}
	cookie, err := c.Cookie("jwt-token")
	if err != nil || cookie.Value == "" {
		return "", fmt.Errorf("missing token")
	}
	return cookie.Value, nil
}
