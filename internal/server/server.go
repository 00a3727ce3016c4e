package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/applyflow/internal/alerts"
	"github.com/jonathan/applyflow/internal/application"
	"github.com/jonathan/applyflow/internal/config"
	"github.com/jonathan/applyflow/internal/db"
	"github.com/jonathan/applyflow/internal/interview"
	"github.com/jonathan/applyflow/internal/mailer"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/server/ratelimit"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	apps        *application.Service
	interviews  *interview.Scheduler
	dispatcher  *alerts.Dispatcher
	rateLimiter *ratelimit.Limiter
	log         *zap.SugaredLogger
}

// New creates a new server instance
func New(cfg *config.Config, log *zap.SugaredLogger) (*Server, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(context.Background()); err != nil {
		database.Close()
		return nil, err
	}

	s := &Server{
		db:  database,
		log: log,
	}

	// Delivery channel: without SMTP configuration emails are skipped and
	// only in-app notifications are produced.
	var channel *notify.Channel
	if cfg.SMTPHost != "" {
		smtp, err := mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailName,
		})
		if err != nil {
			database.Close()
			return nil, err
		}
		opts := []notify.ChannelOption{}
		if cfg.MaxRetries > 0 {
			opts = append(opts, notify.WithMaxRetries(cfg.MaxRetries))
		}
		channel = notify.NewChannel(smtp, log, opts...)
	} else {
		log.Warnw("SMTP not configured, email notifications disabled")
	}

	inApp := notify.NewInAppNotifier(database, log)

	var emailChannel application.EmailChannel
	if channel != nil {
		emailChannel = channel
	}
	s.apps = application.NewService(database, database, emailChannel, inApp, log)
	s.interviews = interview.NewScheduler(s.apps, log)

	var dispatchChannel alerts.EmailChannel
	if channel != nil {
		dispatchChannel = channel
	}
	s.dispatcher = alerts.NewDispatcher(database, dispatchChannel, alerts.Config{
		BatchSize:  cfg.AlertBatchSize,
		EmailEvery: time.Duration(cfg.AlertEmailDelayMS) * time.Millisecond,
		BatchDelay: time.Duration(cfg.AlertBatchDelayMS) * time.Millisecond,
	}, log)

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /applications", s.handleApply)
	mux.HandleFunc("GET /applications/{id}", s.handleGetApplication)
	mux.HandleFunc("PATCH /applications/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("POST /applications/{id}/interviews", s.handleScheduleInterview)
	mux.HandleFunc("PATCH /applications/{id}/interviews/{interview_id}/reschedule", s.handleRescheduleInterview)
	mux.HandleFunc("POST /applications/{id}/interviews/{interview_id}/cancel", s.handleCancelInterview)
	mux.HandleFunc("POST /applications/{id}/interviews/{interview_id}/feedback", s.handleSubmitFeedback)
	mux.HandleFunc("DELETE /applications/{id}", s.handleDeleteApplication)
	mux.HandleFunc("GET /jobs/{id}/applications", s.handleListJobApplications)
	mux.HandleFunc("POST /jobs/{id}/dispatch-alerts", s.handleDispatchAlerts)
	mux.HandleFunc("GET /users/{id}/notifications", s.handleListNotifications)
	mux.HandleFunc("PATCH /users/{id}/notifications/{notification_id}/read", s.handleMarkNotificationRead)
	mux.HandleFunc("PUT /users/{id}/alert-preferences", s.handleUpsertAlertPreference)
	mux.HandleFunc("GET /health", s.handleHealth)

	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withRateLimit(s.withLogging(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Infow("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatalw("server error", "error", err)
		}
	}()

	<-stop
	s.log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Drain in-flight notification deliveries before closing the pool.
	s.apps.Wait()

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.db.Close()
	s.log.Infow("server stopped")
	return nil
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warnw("error encoding JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error to its HTTP response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Errorw("internal error", "error", err)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For would only be
// trustworthy behind a known proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	if info.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	})
}
