//go:build !lambda
// +build !lambda

package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/cyphera/cyphera-rebalancer/internal/constants"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
	"github.com/cyphera/cyphera-rebalancer/internal/server"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	stage := os.Getenv("STAGE")
	if stage == "" {
		stage = constants.StageLocal
	}
	logger.InitLogger(stage)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	r := gin.Default()
	server.InitializeHandlers(server.ConnectDatabase(context.Background(), stage))
	server.InitializeRoutes(r)

	log.Printf("Server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
