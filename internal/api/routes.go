package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/bwotp/internal/config"
	"github.com/example/bwotp/internal/core"
	"github.com/example/bwotp/internal/middleware"
)

// SetupRoutes registers /health and /otp. Global middleware (logging,
// recovery, CORS) is expected to be installed on router beforehand.
func SetupRoutes(router *gin.Engine, appConfig *config.Config, logger *zap.Logger, totp core.TOTPProvider) {
	otpHandler := NewOTPHandler(totp, appConfig.DefaultItemName, logger)

	// --- Public endpoints ---
	// /health never talks to the vault, so it stays usable for liveness probes
	// even while the CLI is logged out.
	router.GET("/health", Health)

	// --- Token-protected endpoints ---
	// Auth is attached per route rather than globally, so unknown paths answer
	// 404 before any token check, matching the route-first behaviour clients expect.
	router.GET("/otp", middleware.TokenAuth(appConfig.AuthToken), otpHandler.GetOTP)

	// Everything else, including non-GET methods on known paths.
	router.NoRoute(NotFound)

	if !appConfig.AuthEnabled() {
		logger.Warn("BWHELPER_TOKEN is not set; /otp is served without authentication")
	}
	logger.Info("API routes configured", zap.Strings("routes", []string{"/health", "/otp"}))
}

// NewRouter builds the gin engine with the global middleware stack and routes.
func NewRouter(appConfig *config.Config, logger *zap.Logger, totp core.TOTPProvider) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		logger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	}
	SetupRoutes(router, appConfig, logger, totp)
	return router
}
