package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"weathersummary.app/config"
	weathererr "weathersummary.app/errors"
	"weathersummary.app/models"
	"weathersummary.app/service"
)

const requestIDHeader = "X-Request-ID"

// clientIDHeader lets API consumers carry a stable identity across requests;
// without it the rate limiter falls back to the client IP.
const clientIDHeader = "X-API-Client"

// Server represents the HTTP server and API handler
type Server struct {
	router         *gin.Engine
	httpServer     *http.Server
	config         *config.Config
	summaryService service.WeatherSummaryServiceInterface
	providerInfo   map[string]string
	startedAt      time.Time
}

// NewServer creates and configures a new HTTP server. providerInfo is the
// provider priority map surfaced on the health endpoint; gatherer backs the
// /metrics endpoint.
func NewServer(
	config *config.Config,
	summaryService service.WeatherSummaryServiceInterface,
	providerInfo map[string]string,
	gatherer prometheus.Gatherer,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware())

	server := &Server{
		router:         router,
		config:         config,
		summaryService: summaryService,
		providerInfo:   providerInfo,
		startedAt:      time.Now(),
	}

	server.setupRoutes(gatherer)
	server.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	api := s.router.Group("/api")
	{
		api.GET("/weather/summary", s.getSummary)
		api.GET("/weather/locations/:coordinates", s.getLocationDetails)
		api.GET("/health", s.health)
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// Start begins the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) getSummary(c *gin.Context) {
	var req models.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Debug("Summary request binding failed", "error", err, "request_id", requestID(c))
		s.handleError(c, weathererr.NewValidationReason(weathererr.ReasonInvalidRequest, bindingErrorMessage(err)))
		return
	}

	slog.Debug("Getting summary for favorites",
		"locations", req.Locations, "threshold", req.Threshold, "unit", req.Unit,
		"request_id", requestID(c))

	summaries, err := s.summaryService.GetSummaryForFavorites(c.Request.Context(), clientID(c), req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getLocationDetails(c *gin.Context) {
	coordinate := c.Param("coordinates")

	slog.Debug("Getting location details", "coordinates", coordinate, "request_id", requestID(c))

	details, err := s.summaryService.GetLocationDetails(c.Request.Context(), clientID(c), coordinate)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Providers: s.providerInfo,
	})
}

// handleError maps application errors to HTTP status codes. Upstream detail
// stays in the logs; consumers get a stable message and, for validation
// failures, a machine-readable reason code.
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *weathererr.AppError
	if !errors.As(err, &appErr) {
		slog.Error("Unhandled error", "error", err, "path", c.Request.URL.Path, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
		return
	}

	switch appErr.Type {
	case weathererr.ValidationError:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: appErr.Message, Reason: appErr.Reason})
	case weathererr.NotFoundError:
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: appErr.Message})
	case weathererr.RateLimitError:
		if appErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(appErr.RetryAfter)))
		}
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: appErr.Message})
	case weathererr.ServiceUnavailableError:
		slog.Error("Upstream failure", "error", err, "path", c.Request.URL.Path, "request_id", requestID(c))
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "weather service temporarily unavailable"})
	default:
		slog.Error("Unhandled application error", "error", err, "path", c.Request.URL.Path, "request_id", requestID(c))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal server error"})
	}
}

// bindingErrorMessage names the query fields that failed binding so the
// consumer does not have to guess which parameter was wrong.
func bindingErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "malformed query parameters"
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields = append(fields, strings.ToLower(fieldError.Field()))
	}
	return "invalid query parameters: " + strings.Join(fields, ", ")
}

// retryAfterSeconds rounds the backoff up to whole seconds so the header
// never tells a client to retry earlier than the limiter allows.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

func clientID(c *gin.Context) string {
	if id := c.GetHeader(clientIDHeader); id != "" {
		return id
	}
	return c.ClientIP()
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString("request_id")
}

func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("Request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestID(c),
		)
	}
}
