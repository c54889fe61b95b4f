package server

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	awsclient "github.com/cyphera/cyphera-rebalancer/internal/client/aws"
	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/handlers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
)

// Handler Definitions
var (
	healthHandler  *handlers.HealthHandler
	historyHandler *handlers.HistoryHandler
)

// ConnectDatabase opens the pool the API reads from. Credentials come from Secrets Manager
// in deployed stages and DATABASE_URL locally.
func ConnectDatabase(ctx context.Context, stage string) *db.Queries {
	secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager client", zap.Error(err))
	}

	dsn, err := config.LoadDatabaseURL(ctx, stage, secretsClient)
	if err != nil {
		logger.Fatal("Unable to resolve database connection string", zap.Error(err))
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Fatal("Unable to parse database connection string", zap.Error(err))
	}

	// Configure the connection pool
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	connPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}
	return db.New(connPool)
}

// InitializeHandlers builds the handlers on top of queries.
func InitializeHandlers(queries db.Querier) {
	commonServices := handlers.NewCommonServices(queries)

	healthHandler = handlers.NewHealthHandler()
	historyHandler = handlers.NewHistoryHandler(commonServices)
}

// InitializeRoutes registers the read-only history API.
func InitializeRoutes(router *gin.Engine) {
	router.Use(configureCORS())
	router.Use(handlers.LogRequest())

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.GET("", historyHandler.ListRuns)
			runs.GET("/latest", historyHandler.GetLatestRun)
			runs.GET("/:run_id/executions", historyHandler.ListRunExecutions)
		}

		owners := v1.Group("/owners")
		{
			owners.GET("/:owner_id/executions", historyHandler.ListOwnerExecutions)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		// Default to localhost if not set
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		corsConfig.AllowOrigins = splitTrimmed(originsEnv)
	}

	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}

	headersEnv := os.Getenv("CORS_ALLOWED_HEADERS")
	if headersEnv == "" {
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	} else {
		corsConfig.AllowHeaders = splitTrimmed(headersEnv)
	}

	corsConfig.AllowCredentials = os.Getenv("CORS_ALLOW_CREDENTIALS") == "true"

	return cors.New(corsConfig)
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
