// ABOUTME: Entry point for the beerbot server
// ABOUTME: Runs the chat adapter and web server over one storage backend

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/JRahala/beerbot-web/internal/bot"
	"github.com/JRahala/beerbot-web/internal/config"
	"github.com/JRahala/beerbot-web/internal/store"
	"github.com/JRahala/beerbot-web/internal/web"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                    _           _
| |__   ___  ___ _ __| |__   ___ | |_
| '_ \ / _ \/ _ \ '__| '_ \ / _ \| __|
| |_) |  __/  __/ |  | |_) | (_) | |_
|_.__/ \___|\___|_|  |_.__/ \___/ \__|
`

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

// getConfigPath returns the path to the beerbot config file.
// Priority: BEERBOT_CONFIG env var > ./beerbot.yaml > ~/.config/beerbot/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BEERBOT_CONFIG"); envPath != "" {
		return envPath
	}

	if _, err := os.Stat("beerbot.yaml"); err == nil {
		return "beerbot.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "beerbot.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "beerbot", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: beerbot <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Start the chat adapter and web server")
		fmt.Println("  init    Create a new config file interactively")
		fmt.Println("  initdb  Create the database schema and exit")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "initdb":
		err = runInitDB(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:    %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Backend: %s\n", cfg.Database.Backend)
	if cfg.Matrix.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Matrix:  %s\n", cfg.Matrix.Homeserver)
	}
	fmt.Println()

	st, err := store.Open(storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// Schema failure is fatal: the process cannot serve correct data
	// without it.
	if err := st.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	errCh := make(chan error, 2)

	webServer := web.New(st, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: webServer.Handler(),
	}
	go func() {
		logger.Info("web server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("web server: %w", err)
		}
	}()

	if cfg.Matrix.Enabled {
		chatBot, err := bot.New(cfg, st, logger)
		if err != nil {
			return fmt.Errorf("creating bot: %w", err)
		}
		go func() {
			if err := chatBot.Run(ctx); err != nil {
				errCh <- fmt.Errorf("chat bot: %w", err)
			}
		}()
	} else {
		logger.Info("matrix adapter disabled")
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}

func runInitDB(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(setupLogger(cfg.Logging))

	st, err := store.Open(storeOptions(cfg))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Println("    ✓ Database initialized successfully")
	return nil
}

func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Backend: cfg.Database.Backend,
		Path:    cfg.Database.Path,
		Postgres: store.PostgresOptions{
			Host:     cfg.Database.Postgres.Host,
			Port:     cfg.Database.Postgres.Port,
			User:     cfg.Database.Postgres.User,
			Password: cfg.Database.Postgres.Password,
			DBName:   cfg.Database.Postgres.DBName,
			SSLMode:  cfg.Database.Postgres.SSLMode,
		},
	}
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runInit() error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println("    Interactive Setup")
	fmt.Println("    -----------------")
	fmt.Println()

	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		yellow.Printf("    Config already exists at %s\n", configPath)
		fmt.Print("    Overwrite? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("    Aborted.")
			return nil
		}
		fmt.Println()
	}

	reader := bufio.NewReader(os.Stdin)

	green.Print("    ▶ ")
	fmt.Print("Storage backend [sqlite]: ")
	backend, _ := reader.ReadString('\n')
	backend = strings.TrimSpace(backend)
	if backend == "" {
		backend = "sqlite"
	}

	green.Print("    ▶ ")
	fmt.Print("Matrix homeserver URL [https://matrix.org]: ")
	homeserver, _ := reader.ReadString('\n')
	homeserver = strings.TrimSpace(homeserver)
	if homeserver == "" {
		homeserver = "https://matrix.org"
	}

	green.Print("    ▶ ")
	fmt.Print("Matrix user ID (e.g. @beerbot:matrix.org): ")
	userID, _ := reader.ReadString('\n')
	userID = strings.TrimSpace(userID)

	green.Print("    ▶ ")
	fmt.Print("Matrix access token: ")
	accessToken, _ := reader.ReadString('\n')
	accessToken = strings.TrimSpace(accessToken)

	cfg := fmt.Sprintf(`# beerbot configuration
# Generated by beerbot init

server:
  http_addr: "0.0.0.0:8080"

database:
  backend: "%s"
  path: "beerbot.db"
  # postgres:
  #   host: "${DB_HOST}"
  #   user: "${DB_USER}"
  #   password: "${DB_PASSWORD}"
  #   dbname: "beerbot_db"
  #   sslmode: "require"

matrix:
  enabled: true
  homeserver: "%s"
  user_id: "%s"
  access_token: "%s"
  # Only respond in these rooms (empty = all joined rooms)
  allowed_rooms: []
  command_prefix: "!beer"

bot:
  # Register unknown users on their first drink command
  auto_register: false

logging:
  level: "info"
  format: "text"
`, backend, homeserver, userID, accessToken)

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(cfg), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Println()
	green.Printf("    ✓ Config written to %s\n", configPath)
	fmt.Println()
	fmt.Println("    Next steps:")
	fmt.Println("    1. Run: beerbot initdb")
	fmt.Println("    2. Run: beerbot serve")
	fmt.Println()

	return nil
}
