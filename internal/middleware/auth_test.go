package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/policy"
)

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := jwt.New("test-secret-123", time.Hour)
	good, err := svc.GenerateToken(42, "manager")
	require.NoError(t, err)
	foreign, err := jwt.New("other-secret", time.Hour).GenerateToken(42, "manager")
	require.NoError(t, err)

	cases := []struct {
		name     string
		header   string
		wantCode int
		wantErr  string
	}{
		{"valid", "Bearer " + good, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "AUTH_HEADER_MISSING"},
		{"basic scheme", "Basic dGVzdA==", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized, "INVALID_AUTH_FORMAT"},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"foreign secret", "Bearer " + foreign, http.StatusUnauthorized, "INVALID_TOKEN"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got policy.Subject
			r := gin.New()
			r.Use(JWTAuth(svc))
			r.GET("/protected", func(c *gin.Context) {
				got = CurrentSubject(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantErr != "" {
				assert.Contains(t, w.Body.String(), tc.wantErr)
				assert.Zero(t, got)
				return
			}
			assert.Equal(t, policy.Subject{UserID: 42, Role: domain.RoleManager}, got)
		})
	}
}

func TestCurrentSubjectAnonymous(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, policy.Subject{}, CurrentSubject(c))
}
