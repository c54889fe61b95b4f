package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/db"
	"github.com/cyphera/cyphera-rebalancer/internal/logger"
)

// CommonServices holds common dependencies used across handlers
type CommonServices struct {
	db db.Querier
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps a list of items
type ListResponse struct {
	Object string      `json:"object"`
	Data   interface{} `json:"data"`
}

// NewCommonServices creates a new instance of CommonServices
func NewCommonServices(queries db.Querier) *CommonServices {
	return &CommonServices{db: queries}
}

// sendError logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}

// handleDBError maps database errors to HTTP status codes
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendList sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, ListResponse{Object: "list", Data: items})
}
