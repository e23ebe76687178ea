// internal/api/server.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"movement-server/internal/utils"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Server echo HTTP server
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer creates the HTTP server and registers the routes
func NewServer(addr string, handler *Handler) *Server {
	utils.Logger.Infof("🏗️ CREATING HTTP Server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(requestLogger())

	RegisterRoutes(e, handler)

	utils.Logger.Infof("✅ HTTP Server CREATED")
	return &Server{echo: e, addr: addr}
}

// RegisterRoutes mounts the API under /api/v1
func RegisterRoutes(e *echo.Echo, h *Handler) {
	v1 := e.Group("/api/v1")

	v1.GET("/health", h.HealthCheck)
	v1.GET("/status", h.GetStatus)
	v1.GET("/scan/front", h.GetFrontRange)
	v1.GET("/commands", h.ListCommands)

	v1.POST("/movement", h.ExecuteMovement)
	v1.POST("/abort", h.AbortMovement)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	utils.Logger.Infof("🚀 HTTP Server listening on %s", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			utils.Logger.WithFields(logrus.Fields{
				"method":   req.Method,
				"uri":      req.RequestURI,
				"remote":   c.RealIP(),
				"status":   c.Response().Status,
				"duration": time.Since(start).String(),
			}).Info("HTTP request")
			return nil
		}
	}
}
