package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/umputun/border-items-mcp/app/server"
)

var revision = "unknown"

// Options defines command line options
type Options struct {
	ItemsFile      string        `long:"items" env:"ITEMS_FILE" default:"data/items.json" description:"items catalog file (json or yaml)"`
	CategoriesFile string        `long:"categories" env:"CATEGORIES_FILE" default:"data/categories.json" description:"categories file (json or yaml)"`
	EnableCache    bool          `long:"enable-cache" env:"ENABLE_CACHE" description:"cache the catalog and reload it when files change"`
	CacheTTL       time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"1h" description:"cache TTL (time-to-live) for the catalog"`
	MaxFileSize    int64         `long:"max-file-size" env:"MAX_FILE_SIZE" default:"5242880" description:"maximum catalog file size in bytes"`
	SearchLimit    int           `long:"search-limit" env:"SEARCH_LIMIT" default:"50" description:"default maximum number of search results"`
	SuggestLimit   int           `long:"suggest-limit" env:"SUGGEST_LIMIT" default:"5" description:"default maximum number of suggestions"`
	MetricsAddr    string        `long:"metrics-addr" env:"METRICS_ADDR" description:"listen address for prometheus metrics, disabled if empty"`
	Debug          bool          `long:"dbg" env:"DEBUG" description:"enable debug logging"`
}

func main() {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "failed to parse flags: %v\n", err)
		os.Exit(1)
	}

	// setup logging with text handler, stdout is reserved for the MCP transport
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	slog.Info("starting border-items MCP server", "version", revision)

	// use embedded function to properly handle defer before os.Exit
	os.Exit(func() int {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer cancel()

		if err := run(ctx, opts); err != nil {
			slog.Error("fatal error", "error", err)
			return 1
		}
		return 0
	}())
}

func run(ctx context.Context, opts Options) error {
	itemsFile, err := expandTilde(opts.ItemsFile)
	if err != nil {
		return err
	}
	categoriesFile, err := expandTilde(opts.CategoriesFile)
	if err != nil {
		return err
	}

	config := server.Config{
		ItemsFile:      itemsFile,
		CategoriesFile: categoriesFile,
		MaxFileSize:    opts.MaxFileSize,
		ServerName:     "border-items",
		Version:        revision,
		EnableCache:    opts.EnableCache,
		CacheTTL:       opts.CacheTTL,
		SearchLimit:    opts.SearchLimit,
		SuggestLimit:   opts.SuggestLimit,
		MetricsAddr:    opts.MetricsAddr,
	}

	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// expandTilde expands ~ prefix in path to user home directory
func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
