package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	awsclient "github.com/cyphera/cyphera-rebalancer/internal/client/aws"
	"github.com/cyphera/cyphera-rebalancer/internal/client/chain"
	"github.com/cyphera/cyphera-rebalancer/internal/client/coinmarketcap"
	"github.com/cyphera/cyphera-rebalancer/internal/client/email"
	"github.com/cyphera/cyphera-rebalancer/internal/client/relay"
	"github.com/cyphera/cyphera-rebalancer/internal/client/sentiment"
	"github.com/cyphera/cyphera-rebalancer/internal/client/uniswap"
	"github.com/cyphera/cyphera-rebalancer/internal/config"
	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/services"
)

// RunEvent is the scheduled invocation payload. An empty payload is a normal daily run.
type RunEvent struct {
	DryRun         bool   `json:"dry_run"`
	Force          bool   `json:"force"`
	Account        string `json:"account"`
	CorrectionFile string `json:"correction_file"`
}

// Application holds the dependencies shared across invocations.
type Application struct {
	orchestrator *services.Orchestrator
}

// HandleRequest runs the rebalancer once.
func (app *Application) HandleRequest(ctx context.Context, event RunEvent) error {
	if event.CorrectionFile != "" {
		targets, err := services.LoadCorrectionFile(event.CorrectionFile)
		if err != nil {
			return fmt.Errorf("HandleRequest: %w", err)
		}
		report, err := app.orchestrator.RunCorrection(ctx, targets)
		if err != nil {
			return fmt.Errorf("HandleRequest: correction failed: %w", err)
		}
		logReport(report)
		return nil
	}

	report, err := app.orchestrator.Run(ctx, services.RunOptions{
		DryRun:  event.DryRun,
		Force:   event.Force,
		Account: event.Account,
	})
	if err != nil {
		logger.Error("Rebalance run failed", zap.Error(err))
		return fmt.Errorf("HandleRequest: %w", err)
	}
	logReport(report)
	return nil
}

func logReport(report *services.RunReport) {
	s := report.Summary
	logger.Info("Rebalance finished",
		zap.String("run_id", s.RunID.String()),
		zap.String("status", s.Status),
		zap.Bool("skipped", report.Skipped),
		zap.String("reason", report.Reason),
		zap.Int("processed", s.Processed),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("retried", s.Retried),
		zap.String("volume_usd", s.VolumeUSD.StringFixed(2)),
		zap.String("fee_usd", s.FeeUSD.StringFixed(2)))
}

func main() {
	dryRun := flag.Bool("dry-run", false, "quote and log trades without submitting or writing anything")
	force := flag.Bool("force", false, "run even if today's run already happened")
	account := flag.String("account", "", "restrict the run to one enrolled account")
	correctionFile := flag.String("correction-file", "", "execute the trades listed in this JSON file instead of the daily run")
	flag.Parse()

	// Load .env file for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v. Proceeding with environment variables/secrets.", err)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = constants.StageLocal
		log.Printf("Warning: STAGE environment variable not set, defaulting to '%s'", stage)
	}
	if !helpers.IsValidStage(stage) {
		log.Fatalf("Invalid STAGE environment variable: '%s'. Must be one of: %s, %s, %s",
			stage, constants.StageProd, constants.StageDev, constants.StageLocal)
	}

	logger.InitLogger(stage)
	logger.Info("Initializing rebalancer", zap.String("stage", stage))
	defer func() {
		_ = logger.Sync()
	}()

	ctx := context.Background()

	secretsClient, err := awsclient.NewSecretsManagerClient(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize AWS Secrets Manager client", zap.Error(err))
	}

	cfg, err := config.Load(ctx, stage, secretsClient)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Unable to parse database DSN", zap.Error(err))
	}
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 15
	connPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to create connection pool", zap.Error(err))
	}

	app := &Application{orchestrator: buildOrchestrator(ctx, cfg, db.New(connPool))}

	if stage != constants.StageLocal {
		lambda.Start(app.HandleRequest)
		return
	}

	err = app.HandleRequest(ctx, RunEvent{
		DryRun:         *dryRun,
		Force:          *force,
		Account:        *account,
		CorrectionFile: *correctionFile,
	})
	connPool.Close()
	if err != nil {
		logger.Fatal("Rebalancer exited with error", zap.Error(err))
	}
}

func buildOrchestrator(ctx context.Context, cfg *config.Config, queries db.Querier) *services.Orchestrator {
	appLogger := logger.Log

	chainReader, err := chain.Dial(ctx, cfg.RPCURL, cfg.Engine.Permit2Address, appLogger)
	if err != nil {
		logger.Fatal("Failed to connect to chain RPC", zap.Error(err))
	}

	relayClient, err := relay.Dial(ctx, cfg.RelayURL, cfg.Engine.OperatorAccount, cfg.EntryPointAddress, appLogger,
		relay.WithRateLimit(cfg.RelayRPS))
	if err != nil {
		logger.Fatal("Failed to connect to relay", zap.Error(err))
	}

	signer, err := relay.NewSigner(cfg.OperatorPrivateKey)
	if err != nil {
		logger.Fatal("Failed to load operator key", zap.Error(err))
	}

	deps := services.OrchestratorDeps{
		Queries:   queries,
		Sentiment: sentiment.NewClient(cfg.SentimentURL, appLogger),
		Chain:     chainReader,
		Router:    uniswap.NewClient(cfg.UniswapBaseURL, cfg.UniswapAPIKey, cfg.RouterRPS, appLogger),
		Relay:     relayClient,
		Signer:    signer,
		Prices:    coinmarketcap.NewClient(cfg.CoinMarketCapKey, ""),
		Logger:    appLogger,
	}

	if cfg.SQSQueueURL != "" {
		publisher, err := awsclient.NewSQSPublisher(ctx, awsclient.SQSConfig{
			QueueURL: cfg.SQSQueueURL,
			Region:   cfg.AWSRegion,
			Endpoint: cfg.SQSEndpoint,
		}, appLogger)
		if err != nil {
			logger.Fatal("Failed to initialize summary publisher", zap.Error(err))
		}
		deps.Publisher = publisher
	} else {
		logger.Warn("SUMMARY_QUEUE_URL not set, run summaries will not be published")
	}

	if cfg.ResendAPIKey != "" && len(cfg.SummaryEmailTo) > 0 {
		notifier, err := email.NewSummaryNotifier(cfg.ResendAPIKey, cfg.SummaryEmailFrom, cfg.SummaryEmailTo, "", appLogger)
		if err != nil {
			logger.Fatal("Failed to initialize summary notifier", zap.Error(err))
		}
		deps.Notifier = notifier
	}

	return services.NewOrchestrator(cfg.Engine, deps)
}
