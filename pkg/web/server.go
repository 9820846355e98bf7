// Package web exposes the HTTP surface: admin endpoints for parsing,
// matching, bulk creation and duplicate resolution, plus public document
// search.
package web

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/betterlb/openlgu/pkg/match"
	"github.com/betterlb/openlgu/pkg/reconcile"
	"github.com/betterlb/openlgu/pkg/search"
)

// Server holds the handler dependencies.
type Server struct {
	DB        *sql.DB
	Engine    *reconcile.Engine
	Matcher   *match.Matcher
	Reindexer *search.Reindexer
	Index     *search.Index

	// AdminTokens maps a bearer token to the admin username it identifies.
	AdminTokens map[string]string
	// Fetch retrieves readable text for a post URL. Tests swap it out.
	Fetch  func(ctx context.Context, rawURL string) (string, error)
	Logger *log.Logger
}

// NewServer wires a server over one database connection and search index.
func NewServer(conn *sql.DB, idx *search.Index, adminTokens map[string]string, logger *log.Logger) *Server {
	engine := reconcile.NewEngine(conn)
	engine.Logger = logger
	reindexer := search.NewReindexer(conn, idx)
	reindexer.Logger = logger
	return &Server{
		DB:          conn,
		Engine:      engine,
		Matcher:     match.NewMatcher(&match.SQLStore{DB: conn}),
		Reindexer:   reindexer,
		Index:       idx,
		AdminTokens: adminTokens,
		Fetch:       FetchPostText,
		Logger:      logger,
	}
}

// RegisterRoutes mounts all endpoints on r.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		public := api.Group("/documents")
		{
			public.GET("/search", s.handleDocumentSearch)
		}
		admin := api.Group("/admin", s.requireAdmin())
		{
			admin.POST("/parse-legislative-post", s.handleParsePost)
			admin.GET("/persons/search", s.handlePersonSearch)
			admin.POST("/documents/bulk", s.handleBulkCreate)
			admin.POST("/documents/resolve-duplicate", s.handleResolveDuplicate)
			admin.GET("/conflicts", s.handleConflicts)
			admin.POST("/reindex", s.handleReindex)
		}
	}
}

func (s *Server) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}
