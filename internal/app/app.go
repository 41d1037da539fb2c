// Package app assembles the catalog and borrowing services from
// configuration, for the HTTP server and the admin CLI alike.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"libraryapi/internal/blobstore"
	"libraryapi/internal/book"
	"libraryapi/internal/borrowing"
	"libraryapi/internal/config"
	"libraryapi/internal/httpx"
	"libraryapi/internal/platform/database"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool
	Books     *book.Service
	Borrowing *borrowing.Service
	Images    book.ImageStore
}

// New connects to Postgres and the image store and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseDSN, database.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", database.RedactDSN(cfg.DatabaseDSN), err)
	}
	logger.InfoContext(ctx, "database connection OK", "dsn", database.RedactDSN(cfg.DatabaseDSN))

	images, err := NewImageStore(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	bookRepo := book.NewPostgresRepo(pool, cfg.DBTimeout)
	locker := database.NewBookLocker(pool)
	ledger := borrowing.NewService(borrowing.NewPostgresRepo(pool, cfg.DBTimeout), bookRepo, locker, logger.With("component", "borrowing"))
	books := book.NewService(bookRepo, ledger, images, locker, logger.With("component", "book"))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Pool:      pool,
		Books:     books,
		Borrowing: ledger,
		Images:    images,
	}, nil
}

// NewImageStore builds the configured cover image backend.
func NewImageStore(ctx context.Context, cfg *config.Config) (book.ImageStore, error) {
	rules := blobstore.Rules{MaxBytes: cfg.ImageMaxBytes, AllowedExtensions: cfg.ImageAllowedTypes}
	switch cfg.StorageBackend {
	case config.StorageS3:
		store, err := blobstore.NewS3Store(blobstore.S3Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
			Folder:    cfg.UploadFolder,
		}, rules)
		if err != nil {
			return nil, fmt.Errorf("s3 store: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("s3 bucket: %w", err)
		}
		return store, nil
	default:
		return blobstore.NewFileStore(cfg.UploadDir, cfg.UploadFolder, rules), nil
	}
}

// Routes registers every API route plus health checks on a new mux.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Pool.Ping(r.Context()); err != nil {
			httpx.JSONError(w, r, http.StatusServiceUnavailable, "NOT_READY", "database unavailable", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	book.NewHTTPHandler(a.Books, a.Config.ImageMaxBytes).Register(mux)
	borrowing.NewHTTPHandler(a.Borrowing, a.Config.HistoryPageSize).Register(mux)
	if a.Config.StorageBackend == config.StorageLocal {
		folder := strings.Trim(a.Config.UploadFolder, "/")
		mux.Handle("GET /"+folder+"/", http.FileServer(http.Dir(a.Config.UploadDir)))
	}
	return mux
}

// Handler wraps the routes in the standard middleware chain.
func (a *App) Handler(limiter *httpx.RateLimitMiddleware) http.Handler {
	return httpx.Chain(a.Routes(),
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(a.Logger),
		httpx.RecoveryMiddleware(a.Logger),
		httpx.SecurityHeadersMiddleware(a.Config.EnableHSTS),
		httpx.CORSMiddleware(a.Config.CORSOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(a.Config.MaxRequestBytes),
	)
}

func (a *App) Close() {
	a.Pool.Close()
}
