// ABOUTME: Entry point for the taskboard API server
// ABOUTME: Provides serve, init, bootstrap and health subcommands

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/taskboard/internal/api"
	"github.com/2389/taskboard/internal/config"
	"github.com/2389/taskboard/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _            _    _                         _
| |_ __ _ ___| | _| |__   ___   __ _ _ __ __| |
| __/ _' / __| |/ / '_ \ / _ \ / _' | '__/ _' |
| || (_| \__ \   <| |_) | (_) | (_| | | | (_| |
 \__\__,_|___/_|\_\_.__/ \___/ \__,_|_|  \__,_|
`

const defaultConfig = `# taskboard configuration
server:
  http_addr: ":8080"

database:
  path: "${XDG_DATA_HOME}/taskboard/taskboard.db"

auth:
  # Signing secret for bearer tokens; must be at least 32 bytes.
  jwt_secret: "${TASKBOARD_JWT_SECRET}"
  token_ttl: "1h"

logging:
  level: "info"
  format: "text"
`

// getConfigPath returns the path to the taskboard config file.
// Priority: TASKBOARD_CONFIG env var > XDG_CONFIG_HOME/taskboard/config.yaml > ~/.config/taskboard/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("TASKBOARD_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "taskboard", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: taskboard <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                          Start the API server")
		fmt.Println("  init                           Create a new config file")
		fmt.Println("  bootstrap --username NAME ...  Create the initial admin user")
		fmt.Println("  health                         Check server health")
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
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
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

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	fmt.Println()

	logger.Info("starting taskboard",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	server, err := api.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

func runInit() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configPath)
	fmt.Println("Set TASKBOARD_JWT_SECRET before starting the server.")
	return nil
}

// runBootstrap creates the initial admin user directly in the store. The
// HTTP surface never assigns or changes roles, so the first admin has to be
// seeded out of band.
func runBootstrap(ctx context.Context) error {
	fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
	username := fs.String("username", "", "admin username (required)")
	email := fs.String("email", "", "admin email (required)")
	password := fs.String("password", "", "admin password (required)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		return err
	}

	if *username == "" || *email == "" || *password == "" {
		return fmt.Errorf("bootstrap requires --username, --email and --password")
	}

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer sqlStore.Close()

	user, err := sqlStore.CreateUser(ctx, *username, *email, *password, store.RoleAdmin)
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Printf("Created admin user %s (%s)\n", user.Username, user.ID)
	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if addr[0] == ':' {
		addr = "localhost" + addr
	}

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}

	green := color.New(color.FgGreen)
	green.Print("✓ ")
	fmt.Println("Server is healthy")
	return nil
}
