// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/involv/contentd/internal/config"
	"github.com/involv/contentd/internal/content"
	"github.com/involv/contentd/internal/handler/api"
	"github.com/involv/contentd/internal/imageurl"
	"github.com/involv/contentd/internal/logging"
	"github.com/involv/contentd/internal/middleware"
	"github.com/involv/contentd/internal/model"
	"github.com/involv/contentd/internal/sanity"
	"github.com/involv/contentd/internal/seo"
	"github.com/involv/contentd/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// Cache lifetimes for content responses, in seconds.
const (
	contentMaxAge               = 60
	contentStaleWhileRevalidate = 300
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	dumpType := flag.String("dump", "", "Print the items of a content type as JSON and exit")
	dumpSite := flag.String("site", "", "Site for -dump (default: CONTENTD_DEFAULT_SITE, \"all\" for every site)")
	dumpLimit := flag.Int("limit", -1, "Maximum number of items for -dump (default: all)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "contentd - content query service for the Involv site\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_PROJECT_ID        Sanity project id (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_DATASET           Sanity dataset (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_API_VERSION       Sanity API version, e.g. 2024-01-01 (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_USE_CDN           Read through the API CDN: true|false (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SANITY_TOKEN             Read token for private datasets (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTD_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTD_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTD_DEFAULT_SITE    Site used when a request names none (default: involv)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTD_DEFAULT_OG_IMAGE Open Graph image for items without one (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTENTD_CORS_ORIGINS    Comma-separated allowed CORS origins (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
	if *showVersion {
		_, _ = fmt.Printf("contentd %s\n", info)
		os.Exit(0)
	}

	var err error
	if *dumpType != "" {
		err = dump(*dumpType, *dumpSite, *dumpLimit)
	} else {
		err = run(info)
	}
	if err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by the server and -dump.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *sanity.Client
	content *content.Service
}

func setup() (*app, error) {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	client, err := sanity.New(sanity.Config{
		ProjectID:  cfg.SanityProjectID,
		Dataset:    cfg.SanityDataset,
		APIVersion: cfg.SanityAPIVersion,
		UseCDN:     cfg.SanityUseCDN,
		Token:      cfg.SanityToken,
		Timeout:    cfg.SanityTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating content store client: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		content: content.NewService(client, logger),
	}, nil
}

// dump prints one content type as indented JSON on stdout.
func dump(typeName, site string, limit int) error {
	a, err := setup()
	if err != nil {
		return err
	}

	t, err := model.ParseContentType(typeName)
	if err != nil {
		return err
	}

	opts := content.ListOptions{Site: a.cfg.DefaultSite}
	switch site {
	case "":
	case "all":
		opts.Site = ""
	default:
		opts.Site = site
	}
	if limit >= 0 {
		opts.Limit = content.Limit(limit)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.RequestTimeout)
	defer cancel()

	items, err := a.content.List(ctx, t, opts)
	if err != nil {
		return fmt.Errorf("listing %s: %w", t, err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func run(info version.Info) error {
	a, err := setup()
	if err != nil {
		return err
	}
	cfg := a.cfg

	apiHandler := api.NewHandler(a.content, a.client, api.Options{
		DefaultSite: cfg.DefaultSite,
		MaxLimit:    cfg.MaxLimit,
		Site: seo.SiteConfig{
			SiteName:       cfg.SiteName,
			SiteURL:        cfg.SiteURL,
			DefaultOGImage: cfg.DefaultOGImage,
		},
		Images:  imageurl.NewBuilder(cfg.SanityProjectID, cfg.SanityDataset),
		Version: info.Version,
	}, a.logger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, a.logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(a.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.CleanPath)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(rateLimiter.Middleware())
	r.Use(chimw.Compress(5, "application/json", "application/xml"))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	apiHandler.Routes(r, middleware.CacheControl(contentMaxAge, contentStaleWhileRevalidate))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", info.String(),
			"store", a.client.Endpoint(),
			"cdn", cfg.SanityUseCDN)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// requestLogger logs one line per request through logger, which stamps
// the request id from the context.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
