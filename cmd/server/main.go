package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapi "github.com/agrishield/identity/api/echo"
	"github.com/agrishield/identity/cache"
	rediscache "github.com/agrishield/identity/cache/redis"
	"github.com/agrishield/identity/config"
	"github.com/agrishield/identity/internal/server"
	"github.com/agrishield/identity/internal/verifier"
	"github.com/agrishield/identity/log"
	"github.com/agrishield/identity/mongodb"
	"github.com/agrishield/identity/services"
	"github.com/agrishield/identity/tracing"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	appLogger      log.Logger
	httpServer     *http.Server
	tracerProvider *sdktrace.TracerProvider
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fallbackLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		fallbackLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger = log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "Starting agrishield-identity server", map[string]interface{}{
		"http_port":     cfg.HTTPPort,
		"mongo_db_name": cfg.MongoDBName,
		"log_level":     logLevel.String(),
		"session_ttl":   cfg.SessionTTL.String(),
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize TracerProvider", err)
	}
	tracerProvider = tp

	// --- Storage ---
	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to connect to MongoDB", err)
	}

	accountRepo, err := mongodb.NewAccountRepository(ctx, mongoClient.Database())
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize AccountRepository", err)
	}

	// --- Token verification ---
	googleVerifier, err := verifier.NewGoogleVerifier(ctx, cfg.GoogleClientID)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize Google token verifier", err)
	}

	var claimsCache cache.ClaimsCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		claimsCache = rediscache.NewClaimsCache(redisClient, cfg.OtelServiceName)
		appLogger.Info(ctx, "Using Redis verified-claims cache", map[string]interface{}{"addr": cfg.RedisAddr})
	} else {
		claimsCache = cache.NewMemoryClaimsCache()
	}
	tokenVerifier := verifier.NewCachingVerifier(googleVerifier, claimsCache)

	// --- Services ---
	sessionService := services.NewSessionService(cfg.SessionSecret, cfg.SessionTTL)
	provisioningService := services.NewProvisioningService(tokenVerifier, accountRepo, sessionService)

	// --- HTTP ---
	authAPI := authapi.NewAuthAPI(provisioningService, mongoClient)
	httpServer = server.NewHTTPServer(cfg, appLogger, authAPI)

	go func() {
		appLogger.Info(ctx, fmt.Sprintf("HTTP server listening on port %s", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(ctx, "Failed to start HTTP server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit

	appLogger.Info(ctx, fmt.Sprintf("Received signal: %v. Shutting down server...", receivedSignal))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "HTTP server shutdown error", err)
	}

	if err := claimsCache.Close(); err != nil {
		appLogger.Error(shutdownCtx, "Claims cache shutdown error", err)
	}

	if tracerProvider != nil {
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "TracerProvider shutdown error", err)
		}
	}

	mongoClient.Close(shutdownCtx)

	appLogger.Info(shutdownCtx, "Server gracefully stopped")
}
