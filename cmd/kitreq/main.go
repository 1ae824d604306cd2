package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/kitreq/internal/api"
	"github.com/erazemk/kitreq/internal/auth"
	"github.com/erazemk/kitreq/internal/config"
	"github.com/erazemk/kitreq/internal/db"
	"github.com/erazemk/kitreq/internal/live"
	"github.com/erazemk/kitreq/internal/model"
	"github.com/erazemk/kitreq/internal/settings"
	"github.com/erazemk/kitreq/internal/store"
	"github.com/erazemk/kitreq/internal/undo"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging: INFO/WARN → stdout, ERROR → stderr.
	// Optionally also write to a log file.
	closeLog, err := setupLogger(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if err := run(cfg); err != nil {
		slog.Error("fatal", "error", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// Check if DB exists, auto-init if not.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		database, password, err := initDatabase(cfg.DBPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(cfg.DBPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}

	slog.Info("database ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureMasterPassword(ctx, database); err != nil {
		return err
	}

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	cache, err := settings.NewCache(ctx, database)
	if err != nil {
		return err
	}
	slog.Info("settings loaded", "event_name", cache.Get().EventName, "require_login", cache.Get().RequireLogin)

	hub := live.NewHub(api.NewSource(database, cache))
	go hub.Run(ctx)

	router := api.NewRouter(api.Config{
		DB:        database,
		JWTSecret: jwtSecret,
		Settings:  cache,
		Hub:       hub,
		Undo:      undo.NewBuffer(cfg.UndoWindow),
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(router),
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

	slog.Info("server started", "addr", cfg.Addr, "undo_window", cfg.UndoWindow)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail(err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}

	ctx := context.Background()
	if _, err := store.CreateUser(ctx, database, adminUsername, hash, model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	return database, password, nil
}

// ensureMasterPassword generates the reset password if the database has
// none yet and prints it once.
func ensureMasterPassword(ctx context.Context, database *sql.DB) error {
	hash, err := store.GetMasterPasswordHash(ctx, database)
	if err != nil {
		return err
	}
	if hash != "" {
		return nil
	}

	password, err := auth.GeneratePassword(20)
	if err != nil {
		return err
	}
	hash, err = auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := store.SetMasterPasswordHash(ctx, database, hash); err != nil {
		return err
	}

	fmt.Println("Master password (needed to reset all data):")
	fmt.Printf("  %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. An admin can change it after logging in.")
	fmt.Println()
	return nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}
