package security

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CORS n'autorise que les origines de la liste blanche, avec credentials.
// La liste est relue à chaque requête, le rechargement à chaud de la
// configuration est donc pris en compte sans redémarrage.
func CORS(allowedOrigins func() []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		if origin != "" {
			for _, o := range allowedOrigins() {
				if o == origin {
					allowed = true
					break
				}
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// Secure ajoute les en-têtes de protection standards
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}

// visitor associe un limiteur à sa dernière activité pour le nettoyage
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter limite par IP et purge les entrées expirées. Les réglages
// sont fournis par settings à chaque requête; quand ils changent après un
// rechargement de configuration, les limiteurs existants sont reconstruits.
func RateLimiter(settings func() (maxRequests int, window time.Duration)) gin.HandlerFunc {
	store := make(map[string]*visitor)
	var mu sync.Mutex
	curMax, curWindow := settings()

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			mu.Lock()
			expiry := curWindow * 3
			if expiry < time.Minute {
				expiry = time.Minute
			}
			for ip, v := range store {
				if time.Since(v.lastSeen) > expiry {
					delete(store, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		key := c.ClientIP()
		maxRequests, window := settings()

		mu.Lock()
		if maxRequests != curMax || window != curWindow {
			curMax, curWindow = maxRequests, window
			store = make(map[string]*visitor)
		}
		v, exists := store[key]
		if !exists {
			v = &visitor{
				limiter: rate.NewLimiter(rate.Every(window/time.Duration(maxRequests)), maxRequests),
			}
			store[key] = v
		}
		v.lastSeen = time.Now()
		mu.Unlock()

		if !v.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
