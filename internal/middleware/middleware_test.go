package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/logging"
)

const secret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/inbox", JWTAuthMiddleware(secret, RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, "%v", c.MustGet("user_id"))
	})
	return r
}

func sign(t *testing.T, method jwt.SigningMethod, key string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func doGet(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/inbox", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAcceptsAdmin(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS512, secret, jwt.MapClaims{
		"sub":   "admin-1",
		"roles": []string{"USER", RoleAdmin},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	w := doGet(protectedRouter(secret), tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin-1", w.Body.String())
}

func TestJWTRejections(t *testing.T) {
	r := protectedRouter(secret)

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)

	wrongKey := sign(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{"roles": RoleAdmin})
	assert.Equal(t, http.StatusUnauthorized, doGet(r, wrongKey).Code)

	expired := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
		"roles": RoleAdmin,
		"exp":   time.Now().Add(-time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, doGet(r, expired).Code)

	notAdmin := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"roles": []string{"USER"}})
	assert.Equal(t, http.StatusForbidden, doGet(r, notAdmin).Code)
}

func TestJWTWithoutSecret(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{"roles": RoleAdmin})
	assert.Equal(t, http.StatusServiceUnavailable, doGet(protectedRouter(""), tok).Code)
}

func TestRateLimitPassesThroughWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/messages", RateLimit(nil, "messages", 1, logging.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", nil))
		assert.Equal(t, http.StatusCreated, w.Code)
	}
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := gin.New()
	r.POST("/messages", RateLimit(client, "messages", 1, logging.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestLoggerKeepsResponse(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(logging.NewNop()))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
