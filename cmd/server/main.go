// Command server exposes abstract extraction over HTTP: upload a PDF (or
// name a local path) and get back the extraction result, with persisted
// results queryable afterwards.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openpaper/abstractor"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML or JSON config file")
		addr       = flag.String("addr", ":8080", "Listen address")
		dbPath     = flag.String("db", "abstractor.db", "Path to SQLite results database")
		authToken  = flag.String("auth-token", "", "Bearer token required on all endpoints except /healthz (empty disables auth)")
		logFormat  = flag.String("log-format", "json", "Log format: json, text")
	)
	flag.Parse()

	// Structured logging; JSON by default for log shippers.
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if *logFormat == "text" {
		logHandler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(logHandler))

	cfg := abstractor.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = abstractor.LoadConfig(*configPath)
		if err != nil {
			slog.Error("loading config", "error", err)
			os.Exit(1)
		}
	}

	// The db flag wins over the config file; the server always runs with
	// a results database.
	dbSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "db" {
			dbSet = true
		}
	})
	if dbSet || cfg.DBPath == "" {
		cfg.DBPath = *dbPath
	}

	// Override from environment variables.
	if v := os.Getenv("ABSTRACTOR_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	token := *authToken
	if token == "" {
		token = os.Getenv("ABSTRACTOR_API_KEY")
	}
	corsOrigins := os.Getenv("ABSTRACTOR_CORS_ORIGINS")

	engine, err := abstractor.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	h := newHandler(engine)
	mux := h.routes()

	// Middleware chain: recovery -> cors -> auth -> logging -> mux
	var handler http.Handler = mux
	handler = logMiddleware(handler)
	handler = authMiddleware(token, handler)
	handler = corsMiddleware(corsOrigins, handler)
	handler = recoveryMiddleware(handler)

	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: extractTimeout + 30*time.Second, // must outlive an extraction
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", *addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
