package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/bwotp/internal/api"
	"github.com/example/bwotp/internal/config"
	"github.com/example/bwotp/internal/core"
	"github.com/example/bwotp/internal/vaultcli"
)

func main() {
	// --- 1. Load .env file ---
	// In production, environment variables should be set directly.
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 3. Initialize Logger (Zap) ---
	// Development encoding in debug mode, JSON in release.
	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	if appConfig.MasterPassword == "" {
		zapLogger.Warn("BW_MASTER_PASSWORD is not set; the vault cannot be unlocked automatically")
	}

	// --- 4. Vault CLI and core services ---
	runner := vaultcli.NewExecRunner(appConfig.Binary, appConfig.CommandTimeout, zapLogger.Named("vaultcli"))
	vaultClient := vaultcli.NewClient(runner)

	sessions := core.NewSessionManager(vaultClient, appConfig.MasterPassword, zapLogger.Named("session"),
		core.WithSessionTTL(appConfig.SessionTTL))
	resolver := core.NewItemResolver(vaultClient)
	totpService := core.NewTOTPService(sessions, resolver, vaultClient, zapLogger.Named("totp"))

	// --- 5. Prepare the CLI before serving ---
	// Only a failure to point the CLI at BW_SERVER is fatal; see Bootstrapper.Run.
	bootstrapper := core.NewBootstrapper(vaultClient, appConfig.ServerURL, zapLogger.Named("bootstrap"))
	if _, err := bootstrapper.Run(context.Background()); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Vault CLI bootstrap failed", zap.Error(err))
	}

	// --- 6. Setup Gin HTTP Engine and Routes ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := api.NewRouter(appConfig, zapLogger, totpService)

	// --- 7. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 8. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), appConfig.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exiting gracefully.")
}

func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	if appConfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
