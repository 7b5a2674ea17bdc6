package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/ulam-spiral/internal/api"
	"github.com/banshee-data/ulam-spiral/internal/db"
)

func runServe(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a JSON config file")
	listen := fs.String("listen", "", "Listen address (overrides listen)")
	dbPath := fs.String("db", "", "SQLite run history (overrides db_path)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, usageLine)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitUsage
	}
	addr := cfg.GetListen()
	if *listen != "" {
		addr = *listen
	}
	path := cfg.GetDBPath()
	if *dbPath != "" {
		path = *dbPath
	}

	var database *db.DB
	if path != "" {
		database, err = db.NewDB(path)
		if err != nil {
			fmt.Fprintf(stderr, "ulam: failed to open run history: %v\n", err)
			return exitIO
		}
		defer database.Close()
	}

	mux := api.NewServer(database, cfg).ServeMux()
	if database != nil {
		if err := database.AttachAdminRoutes(mux); err != nil {
			fmt.Fprintf(stderr, "ulam: %v\n", err)
			return exitIO
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    addr,
		Handler: api.LoggingMiddleware(mux),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		log.Printf("HTTP server routine stopped")
		return nil
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "ulam: %v\n", err)
		return exitIO
	}
	return exitOK
}
