package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig holds the origin policy for the HTTP surface.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// CORSConfigFromEnv reads ALLOWED_ORIGINS (comma separated) and falls back
// to the local development origins.
func CORSConfigFromEnv() CORSConfig {
	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if env := os.Getenv("ALLOWED_ORIGINS"); env != "" {
		origins = origins[:0]
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
	}
	return CORSConfig{
		AllowedOrigins: origins,
		MaxAge:         12 * time.Hour,
	}
}

// CORS returns the shared CORS middleware. Origins may carry a single
// subdomain wildcard, for example https://*.clutchjobs.ca.
func CORS(config CORSConfig) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Content-Length"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           config.MaxAge,
	})
}
