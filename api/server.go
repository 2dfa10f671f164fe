// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/extract"
	"github.com/poiesic/curator/knowledge"
)

var (
	// ErrOrchestratorRequired is returned when no orchestrator is configured.
	ErrOrchestratorRequired = errors.New("orchestrator required")

	// ErrKnowledgeRequired is returned when no knowledge base is configured.
	ErrKnowledgeRequired = errors.New("knowledge base required")
)

const shutdownTimeout = 10 * time.Second

// Knowledge is the document surface served under /api/documents.
type Knowledge interface {
	CreateDocument(ctx context.Context, content string, metadata map[string]string) (string, error)
	UpdateDocument(ctx context.Context, id, content string, metadata map[string]string) (*core.KnowledgeDocument, error)
	DeleteDocument(ctx context.Context, id string) error
	GetDocument(ctx context.Context, id string) (*core.KnowledgeDocument, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*core.KnowledgeDocument, error)
	Query(ctx context.Context, text string, n int) ([]*knowledge.Result, error)
	Stats(ctx context.Context) (*knowledge.Stats, error)
}

// Config holds the collaborators of a Server.
type Config struct {
	Orchestrator *curation.Orchestrator
	Knowledge    Knowledge

	// URLs fetches pages for URL uploads. Defaults to extract.NewURLExtractor().
	URLs *extract.URLExtractor

	// Events streams session notifications. Nil disables the events endpoint.
	// The broker must also be registered with the orchestrator via
	// curation.WithNotifier to receive anything.
	Events *Broker

	Categories []string
	Logger     *slog.Logger
}

// Server is the HTTP front end.
type Server struct {
	orch       *curation.Orchestrator
	kb         Knowledge
	urls       *extract.URLExtractor
	events     *Broker
	categories []string
	logger     *slog.Logger
	engine     *gin.Engine
}

// NewServer builds the gin engine and registers every route.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if cfg.Knowledge == nil {
		return nil, ErrKnowledgeRequired
	}
	if cfg.URLs == nil {
		cfg.URLs = extract.NewURLExtractor()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		orch:       cfg.Orchestrator,
		kb:         cfg.Knowledge,
		urls:       cfg.URLs,
		events:     cfg.Events,
		categories: cfg.Categories,
		logger:     cfg.Logger.With("component", "api"),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthcheck", s.healthCheck)

	api := router.Group("/api")
	api.GET("/categories", s.listCategories)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", s.createSession)
		sessions.GET("/:id", s.getSession)
		sessions.DELETE("/:id", s.closeSession)
		sessions.POST("/:id/reset", s.resetSession)
		sessions.GET("/:id/events", s.streamEvents)

		// dialogue
		sessions.POST("/:id/topic", s.startTopic)
		sessions.POST("/:id/messages", s.sendMessage)
		sessions.POST("/:id/points/:point/confirm", s.confirmPoint)
		sessions.POST("/:id/points/:point/reject", s.rejectPoint)
		sessions.POST("/:id/article", s.generateArticle)
		sessions.POST("/:id/commit", s.commitArticle)

		// upload
		sessions.POST("/:id/upload", s.uploadText)
		sessions.POST("/:id/upload/file", s.uploadFile)
		sessions.POST("/:id/upload/url", s.uploadURL)
		sessions.POST("/:id/summarize", s.summarize)
		sessions.POST("/:id/approve", s.approve)

		// both
		sessions.PUT("/:id/draft", s.editDraft)
		sessions.GET("/:id/preview", s.previewDraft)
	}

	documents := api.Group("/documents")
	{
		documents.GET("", s.listDocuments)
		documents.POST("", s.addDocument)
		documents.GET("/:id", s.getDocument)
		documents.PUT("/:id", s.updateDocument)
		documents.DELETE("/:id", s.deleteDocument)
	}
	api.POST("/query", s.queryDocuments)
	api.GET("/stats", s.stats)

	return router
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.events != nil {
		s.events.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	respondOK(c, gin.H{"sessions": s.orch.SessionCount()})
}

func (s *Server) listCategories(c *gin.Context) {
	respondOK(c, gin.H{"categories": s.categories})
}
