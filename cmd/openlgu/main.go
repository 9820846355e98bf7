package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"github.com/betterlb/openlgu/pkg/config"
	"github.com/betterlb/openlgu/pkg/db"
	"github.com/betterlb/openlgu/pkg/review"
	"github.com/betterlb/openlgu/pkg/roster"
	"github.com/betterlb/openlgu/pkg/search"
	"github.com/betterlb/openlgu/pkg/web"
)

func main() {
	dbFlag := flag.String("db", config.DBPath, "path to SQLite database")
	indexFlag := flag.String("index", config.IndexPath, "path to search index (empty for in-memory)")
	addrFlag := flag.String("addr", config.Addr, "HTTP listen address")
	rosterFlag := flag.String("roster", "", "JSON roster file to import before serving")
	tokensFlag := flag.String("admin-tokens", config.AdminTokens, "comma-separated token:username pairs")
	reviewFlag := flag.Bool("review", false, "run session review checks and exit")
	dryRunFlag := flag.Bool("dry-run", false, "with -review, report findings without writing")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	conn, err := db.Open(*dbFlag)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer conn.Close()
	logger.Printf("Database initialized at %s", *dbFlag)

	if *rosterFlag != "" {
		importer := roster.NewImporter(conn)
		importer.Logger = logger
		n, err := importer.ImportFile(*rosterFlag)
		if err != nil {
			logger.Fatalf("Failed to import roster: %v", err)
		}
		logger.Printf("Imported %d roster entries from %s", n, *rosterFlag)
	}

	flagger := review.NewFlagger(conn)
	flagger.Logger = logger

	// One-shot review mode for cron-less operation.
	if *reviewFlag {
		flagger.DryRun = *dryRunFlag
		summary, err := flagger.Run(ctx, review.AllCriteria)
		if err != nil {
			logger.Fatalf("Review run failed: %v", err)
		}
		logger.Printf("Review complete: flagged %d sessions", summary.Flagged)
		return
	}

	idx, err := search.Open(*indexFlag)
	if err != nil {
		logger.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	adminTokens := config.ParseAdminTokens(*tokensFlag)
	if len(adminTokens) == 0 {
		logger.Print("Warning: no admin tokens configured; admin endpoints will reject every request")
	}

	server := web.NewServer(conn, idx, adminTokens, logger)
	if n, err := server.Reindexer.Reindex(ctx); err != nil {
		logger.Printf("Warning: initial reindex failed: %v", err)
	} else {
		logger.Printf("Indexed %d documents", n)
	}

	c := cron.New()
	if _, err := flagger.Schedule(c, config.ReviewCron); err != nil {
		logger.Fatalf("Failed to schedule review job %q: %v", config.ReviewCron, err)
	}
	c.Start()
	defer c.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	server.RegisterRoutes(r)

	srv := &http.Server{Addr: *addrFlag, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()
	logger.Printf("Listening on %s", *addrFlag)

	<-ctx.Done()
	logger.Print("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
}
