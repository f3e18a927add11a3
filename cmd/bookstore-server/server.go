package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-llmstxt/llmstxt/internal/bookstore"
	"github.com/go-llmstxt/llmstxt/pkg/docconfig"
	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

const (
	projectTitle   = "Bookstore API"
	projectSummary = "An API for managing a bookstore catalog with books, authors, and genres."
)

// defaultNotes and defaultSections describe the API when no document
// config file is given.
var defaultNotes = []string{
	"This API requires authentication for all write operations.",
	"All prices are in USD.",
	"The database is reset when the server restarts.",
}

var defaultSections = []llmstxt.Section{
	{Name: "Documentation", Links: []llmstxt.LinkItem{
		{Title: "API Documentation", URL: "https://example.com/bookstore-api/docs"},
		{Title: "OpenAPI Spec", URL: "https://example.com/bookstore-api/openapi.json"},
	}},
	{Name: "SDKs", Links: []llmstxt.LinkItem{
		{Title: "Python SDK", URL: "https://github.com/example/bookstore-python-sdk"},
		{Title: "JavaScript SDK", URL: "https://github.com/example/bookstore-js-sdk"},
	}},
}

// serverConfig holds the settings the server is built from.
type serverConfig struct {
	Bookstore  *bookstore.Config
	LLMs       *llmstxt.Config
	LLMsConfig string // optional YAML/TOML document config file
}

// server wires the Bookstore API, health endpoints and the llms.txt
// document into one router.
type server struct {
	db        *gorm.DB
	store     *bookstore.BookStore
	tokens    *bookstore.TokenStore
	docs      *llmstxt.Handler
	watcher   *docconfig.Watcher
	router    chi.Router
	logger    *slog.Logger
	startedAt time.Time
}

func newServer(ctx context.Context, db *gorm.DB, cfg serverConfig, logger *slog.Logger) (*server, error) {
	if cfg.Bookstore == nil {
		cfg.Bookstore = bookstore.DefaultConfig()
	}
	if cfg.LLMs == nil {
		cfg.LLMs = llmstxt.DefaultConfig()
	}

	s := &server{
		db:        db,
		store:     bookstore.NewBookStore(db),
		tokens:    bookstore.NewTokenStore(),
		logger:    logger,
		startedAt: time.Now(),
	}

	seeded, err := s.store.Migrate(ctx, cfg.Bookstore.Seed)
	if err != nil {
		return nil, err
	}
	if seeded > 0 {
		logger.Info("seeded bookstore", "books", seeded)
	}

	s.router = s.mountRoutes(cfg.Bookstore)

	title, summary := projectTitle, projectSummary
	opts := []llmstxt.Option{llmstxt.WithLogger(logger)}
	llmsCfg := cfg.LLMs
	if cfg.LLMsConfig != "" {
		fileStore, err := docconfig.NewFileStore(cfg.LLMsConfig)
		if err != nil {
			return nil, err
		}
		s.watcher, err = docconfig.NewWatcher(ctx, fileStore, logger)
		if err != nil {
			return nil, err
		}
		file := s.watcher.File()
		file.ApplyTo(llmsCfg)
		title, summary = file.Title, file.Summary
		opts = append(opts, llmstxt.WithProjectFunc(s.watcher.Current))
	} else {
		opts = append(opts,
			llmstxt.WithNotes(defaultNotes...),
			llmstxt.WithSections(defaultSections...))
	}
	opts = append(opts, llmstxt.WithConfig(llmsCfg))

	docs, err := llmstxt.Register(s.router, title, summary, opts...)
	if err != nil {
		return nil, err
	}
	s.docs = docs
	return s, nil
}

func (s *server) mountRoutes(cfg *bookstore.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Method(http.MethodGet, "/healthz", llmstxt.Hidden(http.HandlerFunc(s.healthHandler)))
	r.Method(http.MethodGet, "/readyz", llmstxt.Hidden(http.HandlerFunc(s.readyHandler)))

	r.Mount("/", bookstore.Router(s.store, s.tokens, cfg))
	return r
}

// healthHandler reports liveness.
func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{
		"status": "alive",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	}
	_ = json.NewEncoder(w).Encode(response)
}

// readyHandler checks database connectivity.
func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	dbStatus := map[string]string{"status": "up"}
	ready := true

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		dbStatus["status"] = "down"
		dbStatus["error"] = err.Error()
		ready = false
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": map[string]any{"database": dbStatus},
	})
}

func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = "sqlite"
		}
	}
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
	}

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var dialector gorm.Dialector
	switch strings.ToLower(dbType) {
	case "sqlite":
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required for postgres (use -db-dsn flag or DATABASE_DSN environment variable)")
		}
		dialector = postgres.Open(dsn)
	case "mysql":
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required for mysql (use -db-dsn flag or DATABASE_DSN environment variable)")
		}
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q (expected sqlite, postgres or mysql)", dbType)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dbType, err)
	}

	if dialector.Name() == "sqlite" && strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// Each connection to :memory: is a separate database.
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
