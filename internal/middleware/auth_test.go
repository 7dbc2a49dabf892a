package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amankumarsingh77/video-ingest/internal/config"
	"github.com/amankumarsingh77/video-ingest/pkg/logger"
	"github.com/amankumarsingh77/video-ingest/pkg/utils"
	"github.com/labstack/echo/v4"
)

const testSecret = "test-secret"

func serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.JwtSecretKey = testSecret
	mw := NewMiddlewareManager(cfg, []string{"*"}, logger.NewNopLogger())

	e := echo.New()
	e.POST("/upload", func(c echo.Context) error {
		claims, err := utils.GetClaimsFromCtx(c.Request().Context())
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, claims.UserID)
	}, mw.AuthJWTMiddleware, mw.AdminMiddleware)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, role, secret string) string {
	t.Helper()
	tok, err := utils.GenerateJWTToken("user-1", "a@example.com", role, secret)
	if err != nil {
		t.Fatalf("GenerateJWTToken: %v", err)
	}
	return tok
}

func TestAdminTokenIsAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, utils.RoleAdmin, testSecret))

	rec := serve(t, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "user-1" {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAdminTokenFromCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.AddCookie(&http.Cookie{Name: "jwt-token", Value: token(t, utils.RoleAdmin, testSecret)})

	if rec := serve(t, req); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRejectedTokens(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + token(t, utils.RoleAdmin, "other"), http.StatusUnauthorized},
		{"not admin", "Bearer " + token(t, "user", testSecret), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			if rec := serve(t, req); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
