//go:build lambda
// +build lambda

package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/helpers"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/server"
)

var ginLambda *ginadapter.GinLambda

func init() {
	stage := os.Getenv("STAGE")
	if !helpers.IsValidStage(stage) {
		log.Fatalf("Invalid STAGE environment variable: '%s'", stage)
	}
	logger.InitLogger(stage)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	server.InitializeHandlers(server.ConnectDatabase(context.Background(), stage))
	server.InitializeRoutes(r)

	ginLambda = ginadapter.New(r)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("method", req.HTTPMethod),
	)

	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync()
	lambda.Start(Handler)
}
