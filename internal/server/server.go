// Package server exposes health, metrics and session control over HTTP.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-reminder-bridge/internal/common/config"
	"task-reminder-bridge/internal/common/database"
	"task-reminder-bridge/internal/common/errors"
	"task-reminder-bridge/internal/common/logger"
	"task-reminder-bridge/internal/models"
)

// SessionManager is the part of the bridge manager the control API drives.
type SessionManager interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Deactivate(ctx context.Context, userID string) error
	Trigger(userID string) error
	Sessions() []models.Session
}

type Server struct {
	engine   *gin.Engine
	http     *http.Server
	sessions SessionManager
	pingers  map[string]database.Pinger
	logger   logger.Logger
}

// New builds the router. pingers are checked by /ready, keyed by name.
func New(cfg config.ServerConfig, sessions SessionManager, pingers map[string]database.Pinger, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		engine:   engine,
		sessions: sessions,
		pingers:  pingers,
		logger:   log,
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	engine.GET("/health", s.health)
	engine.GET("/ready", s.ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	sessionsGroup := engine.Group("/sessions")
	sessionsGroup.POST("", s.login)
	sessionsGroup.GET("", s.listSessions)
	sessionsGroup.DELETE("/:userId", s.deactivate)
	sessionsGroup.POST("/:userId/poll", s.poll)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Control server listening", map[string]interface{}{"address": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.pingers))
	status := http.StatusOK
	for name, p := range s.pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	c.JSON(status, gin.H{"ready": status == http.StatusOK, "checks": checks})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	sess, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.sessions.Sessions()})
}

func (s *Server) deactivate(c *gin.Context) {
	if err := s.sessions.Deactivate(c.Request.Context(), c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) poll(c *gin.Context) {
	if err := s.sessions.Trigger(c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "poll scheduled"})
}

func (s *Server) fail(c *gin.Context, err error) {
	stdErr := errors.Normalize(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Control request failed", map[string]interface{}{
			"path":      c.FullPath(),
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
	}
	c.JSON(status, gin.H{"error": stdErr.Code, "message": stdErr.Message})
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSessionInvalid:
		return http.StatusBadRequest
	case errors.ErrCodeAPIRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
