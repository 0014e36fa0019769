package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func doRequest(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSFollowsReloadedOrigins(t *testing.T) {
	origins := []string{"https://a.example"}

	router := gin.New()
	router.Use(CORS(func() []string { return origins }))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(router, "https://a.example")
	assert.Equal(t, "https://a.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(router, "https://b.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	// rechargement de la liste blanche, sans reconstruire le routeur
	origins = []string{"https://b.example"}

	w = doRequest(router, "https://b.example")
	assert.Equal(t, "https://b.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = doRequest(router, "https://a.example")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterFollowsReloadedSettings(t *testing.T) {
	maxRequests := 2
	window := time.Minute

	router := gin.New()
	router.Use(RateLimiter(func() (int, time.Duration) { return maxRequests, window }))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(router, "").Code)

	// le relèvement de la limite doit prendre effet immédiatement
	maxRequests = 5

	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
}
