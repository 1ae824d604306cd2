package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration. Runtime options that admins change
// while the server runs live in the settings table instead.
type Config struct {
	DBPath     string
	Addr       string
	AdminUser  string
	LogPath    string
	UndoWindow time.Duration
}

// Defaults used when neither a flag nor an environment variable is set.
const (
	DefaultDBPath     = "kitreq.sqlite3"
	DefaultAddr       = ":8080"
	DefaultAdminUser  = "Admin"
	DefaultUndoWindow = 30 * time.Second
)

const usage = `Usage: kitreq [flags]

Flags:
  -d, -db <path>          SQLite database path (default: kitreq.sqlite3, env KITREQ_DB)
  -a, -addr <host:port>   listen address (default: :8080, env KITREQ_ADDR)
  -u, -user <name>        admin username on first run (default: Admin, env KITREQ_ADMIN_USER)
  -l, -log <path>         log file path (default: stdout/stderr only, env KITREQ_LOG)
  -undo-window <dur>      how long destructive actions can be undone (default: 30s, env KITREQ_UNDO_WINDOW)
  -env <path>             environment file to load (default: .env)
  -h, -help               show this help and exit
`

// LoadEnvFile loads variables from path into the environment without
// overriding ones that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the environment file named by -env (default .env) and then
// parses args. Flags override environment variables, which override the
// defaults. flag.ErrHelp is returned unwrapped when help was requested.
func Load(args []string, out io.Writer) (*Config, error) {
	envFile := ".env"
	for i, a := range args {
		if (a == "-env" || a == "--env") && i+1 < len(args) {
			envFile = args[i+1]
		}
	}
	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	return Parse(args, out)
}

// Parse builds a Config from args with environment fallbacks.
func Parse(args []string, out io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("kitreq", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	cfg := &Config{}

	dbPath := getEnv("KITREQ_DB", DefaultDBPath)
	fs.StringVar(&cfg.DBPath, "db", dbPath, "")
	fs.StringVar(&cfg.DBPath, "d", dbPath, "")

	addr := getEnv("KITREQ_ADDR", DefaultAddr)
	fs.StringVar(&cfg.Addr, "addr", addr, "")
	fs.StringVar(&cfg.Addr, "a", addr, "")

	adminUser := getEnv("KITREQ_ADMIN_USER", DefaultAdminUser)
	fs.StringVar(&cfg.AdminUser, "user", adminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", adminUser, "")

	logPath := getEnv("KITREQ_LOG", "")
	fs.StringVar(&cfg.LogPath, "log", logPath, "")
	fs.StringVar(&cfg.LogPath, "l", logPath, "")

	undoWindow := DefaultUndoWindow
	if v := os.Getenv("KITREQ_UNDO_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("KITREQ_UNDO_WINDOW: %w", err)
		}
		undoWindow = d
	}
	fs.DurationVar(&cfg.UndoWindow, "undo-window", undoWindow, "")

	// Consumed by Load before parsing.
	fs.String("env", ".env", "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if cfg.UndoWindow <= 0 {
		return nil, fmt.Errorf("undo window must be positive, got %s", cfg.UndoWindow)
	}
	if cfg.AdminUser == "" {
		return nil, errors.New("admin username cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
