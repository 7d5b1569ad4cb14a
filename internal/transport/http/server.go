// Package http wires Bodhi's gin engine: middleware, routes, and the
// graceful HTTP server lifecycle (spec.md §4.5).
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bodhi/internal/chatcompletion"
	"bodhi/internal/config"
	"bodhi/internal/hub"
	"bodhi/internal/store"
	"bodhi/internal/transport/http/handlers"
	"bodhi/internal/transport/http/middleware"
)

// Server owns the gin engine and the underlying net/http.Server.
type Server struct {
	config   *config.Config
	logger   *logrus.Logger
	engine   *gin.Engine
	server   *http.Server
	pipeline *chatcompletion.Pipeline
	chat     *handlers.ChatHandler
	ui       *handlers.UIHandler
	chats    *handlers.ChatsHandler
}

// NewServer builds a Server over the given pipeline, alias/hub adapter,
// and conversation store.
func NewServer(cfg *config.Config, logger *logrus.Logger, pipeline *chatcompletion.Pipeline, hubAdapter *hub.Adapter, conversations *store.Store) *Server {
	return &Server{
		config:   cfg,
		logger:   logger,
		pipeline: pipeline,
		chat:     handlers.NewChatHandler(pipeline),
		ui:       handlers.NewUIHandler(hubAdapter),
		chats:    handlers.NewChatsHandler(conversations),
	}
}

// Start builds the engine, registers routes, and begins serving. It
// blocks until the server stops (via Shutdown) or fails to start.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.AllowCredentials = false
	s.engine.Use(cors.New(corsConfig))

	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: s.engine,
	}

	s.logger.WithField("addr", s.server.Addr).Info("starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) setupRoutes() {
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger(s.logger))
	s.engine.Use(middleware.Recovery(s.logger))
	s.engine.Use(middleware.Metrics())

	s.engine.GET("/ping", handlers.Ping)
	s.engine.GET("/metrics", handlers.Metrics)

	s.engine.POST("/v1/chat/completions", s.chat.Create)

	ui := s.engine.Group("/api/ui/models")
	{
		ui.GET("", s.ui.ListAliases)
		ui.POST("", s.ui.CreateAlias)
		ui.GET("/:alias", s.ui.GetAlias)
	}

	chats := s.engine.Group("/api/ui/chats")
	{
		chats.GET("", s.chats.ListChats)
		chats.DELETE("", s.chats.DeleteChats)
		chats.GET("/:id", s.chats.GetChat)
		chats.POST("/:id", s.chats.CreateChatMessage)
		chats.DELETE("/:id", s.chats.DeleteChat)
	}
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish, up to ctx's deadline (spec.md §4.5's 30s window),
// then calls on_shutdown: stopping the shared engine so its memory is
// released before the process exits.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	return s.pipeline.Stop()
}

// ShutdownTimeout returns the configured graceful-shutdown window.
func (s *Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.config.Server.ShutdownTimeout) * time.Second
}
