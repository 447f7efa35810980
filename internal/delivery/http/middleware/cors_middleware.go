package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Local origins the static site is served from during development
var devOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

// CORSMiddleware allows the marketing site to call the API. Only origins
// in allowed (plus local dev origins outside production) get CORS headers.
func CORSMiddleware(allowed []string, isProduction bool) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowed)+len(devOrigins))
	for _, o := range allowed {
		origins[o] = true
	}
	if !isProduction {
		for _, o := range devOrigins {
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Empty origin is a same-origin or non-browser request
		isAllowed := origin == "" || origins[origin]

		if isAllowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Origin, X-Request-ID, X-Requested-With")
			c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-RateLimit-Remaining, Retry-After")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// Vary header to ensure caches differentiate by Origin
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			if isAllowed {
				c.AbortWithStatus(http.StatusNoContent)
			} else {
				c.AbortWithStatus(http.StatusForbidden)
			}
			return
		}

		c.Next()
	}
}
