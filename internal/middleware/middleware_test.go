package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spacebook/internal/domain"
	"spacebook/internal/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireRole(t *testing.T) {
	svc := jwt.New("secret", time.Hour)
	r := gin.New()
	r.Use(JWTAuth(svc), RequireRole(domain.RoleManager, domain.RoleAdmin))
	r.GET("/managed", func(c *gin.Context) {
		s := CurrentSubject(c)
		c.JSON(http.StatusOK, gin.H{"user_id": s.UserID, "role": s.Role})
	})

	userTok, err := svc.GenerateToken(1, "user")
	require.NoError(t, err)
	w := serve(r, http.MethodGet, "/managed", map[string]string{"Authorization": "Bearer " + userTok})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "FORBIDDEN")

	mgrTok, err := svc.GenerateToken(2, "manager")
	require.NoError(t, err)
	w = serve(r, http.MethodGet, "/managed", map[string]string{"Authorization": "Bearer " + mgrTok})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"manager"`)
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	r := gin.New()
	r.Use(RequireRole(domain.RoleAdmin))
	r.GET("/x", func(c *gin.Context) { t.Fatal("should not reach handler") })

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	w = serve(r, http.MethodGet, "/x", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestDeadlineSetsContextDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Deadline(50 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		select {
		case <-c.Request.Context().Done():
			assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
			c.Status(http.StatusGatewayTimeout)
		case <-time.After(time.Second):
			c.Status(http.StatusOK)
		}
	})

	w := serve(r, http.MethodGet, "/slow", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2, zap.NewNop())
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	rl.Sweep(0)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.NotContains(t, w.Body.String(), "goroutine")
}
