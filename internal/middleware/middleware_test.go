package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "budgetbell/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// signAccessToken issues a token the way the auth service does.
func signAccessToken(secret, userID, email string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:    userID,
		Email:     email,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(result map[string]interface{}) interface{} {
	errObj, _ := result["error"].(map[string]interface{})
	return errObj["code"]
}

func TestAdminAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{"valid_api_key", "secret-admin-key", "secret-admin-key", http.StatusOK, ""},
		{"wrong_api_key", "secret-admin-key", "wrong", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"missing_api_key", "secret-admin-key", "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"not_configured", "", "anything", http.StatusServiceUnavailable, "ADMIN_NOT_CONFIGURED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(AdminAuthMiddleware(tt.configuredKey))
			r.POST("/run", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, http.MethodPost, "/run", headers)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.wantErrorCode != "" && errorCode(parseBody(t, rec)) != tt.wantErrorCode {
				t.Errorf("expected error code %q, got %v", tt.wantErrorCode, parseBody(t, rec))
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	userID := uuid.NewString()

	setup := func() *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(secret))
		r.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
		})
		return r
	}

	t.Run("valid_token", func(t *testing.T) {
		token, err := signAccessToken(secret, userID, "a@example.com")
		if err != nil {
			t.Fatalf("failed to sign token: %v", err)
		}
		rec := doRequest(setup(), http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseBody(t, rec)["user_id"] != userID {
			t.Error("expected user id to be set from claims")
		}
	})

	t.Run("wrong_secret", func(t *testing.T) {
		token, _ := signAccessToken("other-secret", userID, "a@example.com")
		rec := doRequest(setup(), http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doRequest(setup(), http.MethodGet, "/me", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if errorCode(parseBody(t, rec)) != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED code")
		}
	})

	t.Run("malformed_header", func(t *testing.T) {
		rec := doRequest(setup(), http.MethodGet, "/me", map[string]string{"Authorization": "Token abc"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("non_uuid_subject", func(t *testing.T) {
		token, _ := signAccessToken(secret, "42", "a@example.com")
		rec := doRequest(setup(), http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + token})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequestLogging_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := doRequest(r, http.MethodGet, "/ping", nil)
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Errorf("expected generated request id, got %q", rec.Header().Get("X-Request-ID"))
	}

	incoming := uuid.NewString()
	rec = doRequest(r, http.MethodGet, "/ping", map[string]string{"X-Request-ID": incoming})
	if rec.Header().Get("X-Request-ID") != incoming {
		t.Errorf("expected incoming request id to be reused")
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) { _ = c.Error(apperrors.ErrNotificationNotFound) })
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("db exploded")) })

	rec := doRequest(r, http.MethodGet, "/app", nil)
	if rec.Code != http.StatusNotFound || errorCode(parseBody(t, rec)) != "NOTIFICATION_NOT_FOUND" {
		t.Errorf("expected 404 NOTIFICATION_NOT_FOUND, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/raw", nil)
	if rec.Code != http.StatusInternalServerError || errorCode(parseBody(t, rec)) != "INTERNAL_ERROR" {
		t.Errorf("expected 500 INTERNAL_ERROR, got %d %s", rec.Code, rec.Body.String())
	}
}
