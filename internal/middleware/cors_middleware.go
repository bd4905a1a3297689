package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/example/bwotp/internal/config"
)

// CORSMiddleware allows a browser client served from CLIENT_URL to fetch codes.
// Callers only install it when ClientURL is configured.
func CORSMiddleware(appConfig *config.Config) gin.HandlerFunc {
	if appConfig == nil || appConfig.ClientURL == "" {
		panic("ClientURL for CORS is not configured")
	}
	return cors.New(cors.Config{
		AllowOrigins:  []string{appConfig.ClientURL},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Accept", AuthHeader},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	})
}
