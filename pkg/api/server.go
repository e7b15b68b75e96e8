// Package api provides the read-only HTTP status API for a Vertexa node.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VertexaChain/vertexa-node/pkg/store"
)

// Node is the subset of the sync service the API reports on.
type Node interface {
	PeerCount() int
	Addrs() []string
}

// Config holds server configuration
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:         8560,
		EnableCORS:   true,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	store      *store.StateStore
	node       Node
	router     *gin.Engine
	port       int
	httpServer *http.Server
}

// NewServer creates a new HTTP API server
func NewServer(st *store.StateStore, node Node, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	// Set Gin to release mode for production
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	if config.EnableCORS {
		router.Use(CORSMiddleware())
	}

	server := &Server{
		store:  st,
		node:   node,
		router: router,
		port:   config.Port,
	}
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/trail/:address", s.handleTrail)
		v1.GET("/snapshot/:block", s.handleSnapshot)
	}
}

// Start starts serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("API server error: %v\n", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
