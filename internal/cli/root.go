// Package cli implements the command-line interface for catalogd.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kilupskalvis/catalogd/internal/blobstore"
	"github.com/kilupskalvis/catalogd/internal/catalog"
	"github.com/kilupskalvis/catalogd/internal/config"
	"github.com/spf13/cobra"
)

var dataDir string

// cmdContext holds common resources for CLI commands.
type cmdContext struct {
	Config *config.Config
	Repo   catalog.Repository
	Blobs  *blobstore.FSStore
	Logger *slog.Logger
}

// Close releases resources held by cmdContext.
func (c *cmdContext) Close() {
	if c.Repo != nil {
		c.Repo.Close()
	}
}

// initContext loads the configuration and opens the repository and
// blob store.
func initContext() *cmdContext {
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitError("%v", err)
	}

	logger := newLogger(cfg)

	repo, err := catalog.Open(cfg, logger)
	if err != nil {
		exitError("failed to open repository: %v", err)
	}

	blobs, err := blobstore.NewFSStore(cfg.ImagesPath())
	if err != nil {
		repo.Close()
		exitError("failed to open blob store: %v", err)
	}

	return &cmdContext{Config: cfg, Repo: repo, Blobs: blobs, Logger: logger}
}

// newLogger builds the slog logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

var rootCmd = &cobra.Command{
	Use:   "catalogd",
	Short: "Content-addressed catalog service",
	Long: `catalogd is a small catalog service: submit named, categorized items
with an image, deduplicate image bytes by content-addressing, and
query the catalog over HTTP. Item records persist in either a single
JSON document or a sqlite database.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Optional .env in the working directory; real env wins.
		_ = godotenv.Load()
		if dataDir == "" {
			dataDir = envOrDefault("CATALOGD_DATA_DIR", "data")
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (default $CATALOGD_DATA_DIR or ./data)")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(itemsCmd)
}

// exitError prints an error and exits.
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
