package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/mail-insight/internal/core"
	"github.com/mikey/mail-insight/internal/ports"
	"go.uber.org/zap"
)

type statusResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// analyzeRequest mirrors ports.AnalysisRequest. Every field is optional.
type analyzeRequest struct {
	EmailAddress  string   `json:"email_address"`
	EmailPassword string   `json:"email_password"`
	IMAPServer    string   `json:"imap_server"`
	APIKey        string   `json:"api_key"`
	Models        []string `json:"models"`
	Folders       []string `json:"folders"`
	DaysBack      *int     `json:"days_back"`
	BatchSize     *int     `json:"batch_size"`
	MaxRetries    *int     `json:"max_retries"`
	// BatchDelay is in seconds
	BatchDelay *int `json:"batch_delay"`
}

func (r analyzeRequest) toPort() ports.AnalysisRequest {
	req := ports.AnalysisRequest{
		EmailAddress:  r.EmailAddress,
		EmailPassword: r.EmailPassword,
		IMAPServer:    r.IMAPServer,
		APIKey:        r.APIKey,
		Settings: core.Overrides{
			Models:     r.Models,
			Folders:    r.Folders,
			DaysBack:   r.DaysBack,
			BatchSize:  r.BatchSize,
			MaxRetries: r.MaxRetries,
		},
	}
	if r.BatchDelay != nil {
		d := time.Duration(*r.BatchDelay) * time.Second
		req.Settings.BatchDelay = &d
	}
	return req
}

type analyzeResponse struct {
	Status           string           `json:"status"`
	Message          string           `json:"message"`
	Timestamp        time.Time        `json:"timestamp"`
	RunID            string           `json:"run_id"`
	Results          core.Collections `json:"results"`
	Summary          core.Summary     `json:"summary"`
	EmailsFetched    int              `json:"emails_fetched"`
	BatchesTotal     int              `json:"batches_total"`
	BatchesSucceeded int              `json:"batches_succeeded"`
	BatchesFailed    int              `json:"batches_failed"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Status:    "success",
		Message:   "Email Insight Engine API is running",
		Timestamp: s.now(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Status:    "healthy",
		Message:   "API is operational",
		Timestamp: s.now(),
	})
}

func (s *Server) handleCategories(c *gin.Context) {
	categories := make(map[string]string)
	for _, category := range core.Categories() {
		categories[category.String()] = category.Description()
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Detail: "Invalid request body: " + err.Error()})
		return
	}

	result, err := s.runner.RunAnalysis(c.Request.Context(), body.toPort())
	var cfgErr *core.ConfigError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, s.analyzeResponse("success", "Email analysis completed successfully", result))
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Configuration error: " + strings.Join(cfgErr.Problems, "; ")})
	case core.IsSourceError(err):
		s.logger.Error("Mail source failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, errorResponse{Detail: "Mail source error: " + err.Error()})
	case result != nil:
		s.logger.Warn("Analysis aborted, returning partial result",
			zap.String("run_id", result.RunID),
			zap.Error(err))
		c.JSON(http.StatusOK, s.analyzeResponse("partial", "Email analysis interrupted: "+err.Error(), result))
	default:
		s.logger.Error("Analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: "Analysis failed: " + err.Error()})
	}
}

func (s *Server) analyzeResponse(status, message string, result *core.Result) analyzeResponse {
	return analyzeResponse{
		Status:           status,
		Message:          message,
		Timestamp:        s.now(),
		RunID:            result.RunID,
		Results:          result.Collections,
		Summary:          result.Summary,
		EmailsFetched:    result.EmailsFetched,
		BatchesTotal:     result.BatchesTotal,
		BatchesSucceeded: result.BatchesSucceeded,
		BatchesFailed:    result.BatchesFailed,
	}
}
