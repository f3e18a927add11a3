// Package main runs the Bookstore API with its generated /llms.txt document.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/go-llmstxt/llmstxt/internal/bookstore"
	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

func main() {
	var (
		listenAddr   string
		databaseType string
		databaseDSN  string
		llmsConfig   string
		watch        bool
		printDoc     bool
	)

	flag.StringVar(&listenAddr, "listen", ":8000", "Address to listen on")
	flag.StringVar(&databaseType, "db-type", "", "Database type (sqlite, postgres or mysql; default sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string (default in-memory sqlite)")
	flag.StringVar(&llmsConfig, "llms-config", "", "Path to a YAML or TOML llms.txt document config")
	flag.BoolVar(&watch, "watch", false, "Reload the document config when the file changes")
	flag.BoolVar(&printDoc, "print", false, "Print the llms.txt document to stdout and exit")
	flag.Parse()

	// glog only reports fatal start-up errors.
	_ = flag.Set("logtostderr", "true")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gormDB, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	srv, err := newServer(ctx, gormDB, serverConfig{
		Bookstore:  bookstore.ConfigFromEnv(),
		LLMs:       llmstxt.ConfigFromEnv(),
		LLMsConfig: llmsConfig,
	}, logger)
	if err != nil {
		glog.Fatalf("Failed to initialize server: %v", err)
	}

	if printDoc {
		fmt.Print(srv.docs.Render())
		return
	}

	if watch {
		if srv.watcher == nil {
			glog.Fatalf("-watch requires -llms-config")
		}
		go func() {
			if err := srv.watcher.Run(ctx); err != nil {
				logger.Error("llms.txt config watcher stopped", "error", err)
			}
		}()
	}

	logger.Info("bookstore server ready",
		"listen", listenAddr,
		"llmsTxt", srv.docs.Path(),
	)

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("bookstore server stopped")
}
