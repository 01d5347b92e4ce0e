package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leftoverhq/leftover/internal/api"
	"github.com/leftoverhq/leftover/internal/auth"
	"github.com/leftoverhq/leftover/internal/blob"
	"github.com/leftoverhq/leftover/internal/clock"
	"github.com/leftoverhq/leftover/internal/db"
	"github.com/leftoverhq/leftover/internal/metrics"
	"github.com/leftoverhq/leftover/internal/store"
	"github.com/leftoverhq/leftover/internal/sweeper"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("leftover", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", "leftover.sqlite3", "")
	fs.StringVar(&dbPath, "d", "leftover.sqlite3", "")

	var addr string
	fs.StringVar(&addr, "addr", ":8080", "")
	fs.StringVar(&addr, "a", ":8080", "")

	var operator string
	fs.StringVar(&operator, "user", "admin", "")
	fs.StringVar(&operator, "u", "admin", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var jwtSecret string
	fs.StringVar(&jwtSecret, "jwt-secret", "", "")

	var blobDriver string
	fs.StringVar(&blobDriver, "blob", string(blob.DriverSQLite), "")
	fs.StringVar(&blobDriver, "b", string(blob.DriverSQLite), "")

	var baseURL string
	fs.StringVar(&baseURL, "base-url", "", "")

	var noSweeper bool
	fs.BoolVar(&noSweeper, "no-sweeper", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: leftover [flags]

Flags:
  -d, -db <path>          SQLite database path (default: leftover.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        operator username on first run (default: admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -b, -blob <driver>      image storage: sqlite or s3 (default: sqlite)
      -base-url <url>     public URL prefix for sqlite image links (default: relative)
      -jwt-secret <key>   HS256 key shared with the identity provider
                          (default: generated once and kept in the database)
      -no-sweeper         do not run the midnight expiry sweep
  -h, -help               show this help and exit

The s3 driver reads LEFTOVER_BLOB_S3_BUCKET, LEFTOVER_BLOB_S3_REGION,
LEFTOVER_BLOB_S3_ENDPOINT, LEFTOVER_BLOB_S3_PATH_STYLE and
LEFTOVER_BLOB_S3_URL_EXPIRY from the environment.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		database, password, err := initDatabase(dbPath, operator)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		database.Close()

		printInitResult(dbPath, operator, password)
		fmt.Println()
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	slog.Info("database ready", "path", dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if jwtSecret != "" {
		if err := store.SetJWTSecret(ctx, database, jwtSecret); err != nil {
			slog.Error("failed to store JWT secret", "error", err)
			os.Exit(1)
		}
	}
	jwtSecret, err = store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		os.Exit(1)
	}

	images, err := openBlobStore(ctx, blob.Driver(blobDriver), database, baseURL)
	if err != nil {
		slog.Error("failed to set up image storage", "driver", blobDriver, "error", err)
		os.Exit(1)
	}
	slog.Info("image storage ready", "driver", images.Driver())

	m := metrics.New()
	clk := clock.Real{}
	sw := sweeper.New(database, clk, m)
	if !noSweeper {
		go sw.Run(ctx)
	}

	apiRouter := api.NewRouter(api.Deps{
		DB:        database,
		JWTSecret: jwtSecret,
		Clock:     clk,
		Images:    images,
		Metrics:   m,
		Sweeper:   sw,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

func openBlobStore(ctx context.Context, driver blob.Driver, database *sql.DB, baseURL string) (blob.Store, error) {
	switch driver {
	case blob.DriverSQLite:
		return blob.NewSQLiteStore(database, baseURL), nil
	case blob.DriverS3:
		cfg, err := blob.S3ConfigFromEnv()
		if err != nil {
			return nil, err
		}
		s3, err := blob.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	return nil, fmt.Errorf("unknown blob driver %q", driver)
}

// initDatabase creates a new database, runs migrations, and creates the
// first operator.
func initDatabase(path, username string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.Migrate(database); err != nil {
		return fail(fmt.Errorf("running migrations: %w", err))
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	if _, err := store.CreateOperator(context.Background(), database, username, hash); err != nil {
		return fail(fmt.Errorf("creating operator: %w", err))
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Operator account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The operator can change it after logging in.")
}
