package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/border-items-mcp/app/catalog"
)

// Config defines server configuration
type Config struct {
	ItemsFile      string
	CategoriesFile string
	MaxFileSize    int64
	ServerName     string
	Version        string
	EnableCache    bool
	CacheTTL       time.Duration
	SearchLimit    int
	SuggestLimit   int
	MetricsAddr    string // empty disables the metrics listener
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServerName == "" {
		return fmt.Errorf("server name is required")
	}
	if c.ItemsFile == "" {
		return fmt.Errorf("items file is required")
	}
	if c.CategoriesFile == "" {
		return fmt.Errorf("categories file is required")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("max file size must be greater than zero")
	}
	if c.SearchLimit <= 0 {
		return fmt.Errorf("search limit must be greater than zero")
	}
	if c.SuggestLimit <= 0 {
		return fmt.Errorf("suggest limit must be greater than zero")
	}
	return nil
}

// Server represents the MCP server instance
type Server struct {
	config  Config
	loader  catalog.Interface
	mcp     *mcp.Server
	metrics *Metrics
}

// New creates a new MCP server instance. The catalog is not read until Run or the first tool call.
func New(config Config) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	baseLoader := catalog.NewLoader(catalog.Params{
		ItemsFile:      config.ItemsFile,
		CategoriesFile: config.CategoriesFile,
		MaxFileSize:    config.MaxFileSize,
	})

	// wrap with caching if enabled
	var ld catalog.Interface = baseLoader
	if config.EnableCache {
		cached, err := catalog.NewCachedLoader(baseLoader, config.CacheTTL)
		if err != nil {
			slog.Warn("failed to create cached loader, using regular loader", "error", err)
		} else {
			ld = cached
			slog.Info("catalog caching enabled", "ttl", config.CacheTTL)
		}
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    config.ServerName,
		Version: config.Version,
	}, nil)

	server := &Server{
		config:  config,
		loader:  ld,
		mcp:     mcpServer,
		metrics: NewMetrics(),
	}

	server.registerTools()

	return server, nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "search_items",
		Description: "Search border-crossing items by name or alias with fuzzy matching. " +
			"Optional direction, category and status filters. Results are sorted by relevance (0-100).",
	}, s.handleSearchItems)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "filter_items",
		Description: "List items matching attribute filters: category, status, quantity limit, " +
			"age restriction and declaration requirement for the given direction.",
	}, s.handleFilterItems)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "suggest",
		Description: "Typeahead suggestions: item names, aliases and category names starting with the query.",
	}, s.handleSuggest)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "category_stats",
		Description: "Count allowed, restricted and prohibited items in a category for the given direction.",
	}, s.handleCategoryStats)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_item",
		Description: "Read a single item by id with its rule for the direction, parent regulation and related items.",
	}, s.handleGetItem)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_categories",
		Description: "List all categories with live item counts and status statistics for the given direction.",
	}, s.handleListCategories)
}

// handleSearchItems handles search_items tool calls
func (s *Server) handleSearchItems(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("search_items called", "query", input.Query, "direction", input.Direction,
		"category", input.Category, "status", input.Status)

	start := time.Now()
	result, err := s.searchItems(ctx, input)
	s.metrics.ObserveCall("search_items", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("search failed: %w", err)
	}
	return jsonResult(result)
}

// handleFilterItems handles filter_items tool calls
func (s *Server) handleFilterItems(ctx context.Context, _ *mcp.CallToolRequest, input FilterInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("filter_items called", "direction", input.Direction, "category", input.Category, "status", input.Status)

	start := time.Now()
	result, err := s.filterItems(ctx, input)
	s.metrics.ObserveCall("filter_items", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("filter failed: %w", err)
	}
	return jsonResult(result)
}

// handleSuggest handles suggest tool calls
func (s *Server) handleSuggest(ctx context.Context, _ *mcp.CallToolRequest, input SuggestInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("suggest called", "query", input.Query)

	start := time.Now()
	result, err := s.suggest(ctx, input)
	s.metrics.ObserveCall("suggest", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("suggest failed: %w", err)
	}
	return jsonResult(result)
}

// handleCategoryStats handles category_stats tool calls
func (s *Server) handleCategoryStats(ctx context.Context, _ *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("category_stats called", "category", input.Category, "direction", input.Direction)

	start := time.Now()
	result, err := s.categoryStats(ctx, input)
	s.metrics.ObserveCall("category_stats", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("stats failed: %w", err)
	}
	return jsonResult(result)
}

// handleGetItem handles get_item tool calls
func (s *Server) handleGetItem(ctx context.Context, _ *mcp.CallToolRequest, input ItemInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("get_item called", "id", input.ID, "direction", input.Direction)

	start := time.Now()
	result, err := s.getItem(ctx, input)
	s.metrics.ObserveCall("get_item", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("get item failed: %w", err)
	}
	return jsonResult(result)
}

// handleListCategories handles list_categories tool calls
func (s *Server) handleListCategories(ctx context.Context, _ *mcp.CallToolRequest, input CategoriesInput) (*mcp.CallToolResult, any, error) {
	slog.Debug("list_categories called", "direction", input.Direction)

	start := time.Now()
	result, err := s.listCategories(ctx, input)
	s.metrics.ObserveCall("list_categories", time.Since(start), err)
	if err != nil {
		return nil, nil, fmt.Errorf("list categories failed: %w", err)
	}
	return jsonResult(result)
}

// jsonResult wraps a tool result as JSON text content plus structured output
func jsonResult(result any) (*mcp.CallToolResult, any, error) {
	content, err := json.Marshal(result)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: string(content),
			},
		},
	}, result, nil
}

// Run loads the catalog and starts the MCP server with stdio transport.
// An invalid catalog stops the server before it accepts any request.
// With MetricsAddr set, metrics are served alongside until the MCP session ends.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("starting MCP server", "name", s.config.ServerName, "version", s.config.Version)
	slog.Info("catalog sources", "items", s.config.ItemsFile, "categories", s.config.CategoriesFile)

	defer s.Close()

	snap, err := s.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("catalog loaded", "items", len(snap.Entries), "categories", len(snap.Categories),
		"items_updated", snap.ItemsUpdated)
	s.metrics.SetCatalogSize(len(snap.Entries))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel() // session end stops the metrics listener
		return s.mcp.Run(gctx, &mcp.StdioTransport{}) // nolint:wrapcheck // MCP SDK error is descriptive
	})

	if s.config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics.Handler())
		httpServer := &http.Server{Addr: s.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			slog.Info("serving metrics", "addr", s.config.MetricsAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx) // nolint:wrapcheck // shutdown error is descriptive
		})
	}

	return g.Wait() // nolint:wrapcheck // errors are wrapped by the goroutines
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.loader != nil {
		return s.loader.Close() // nolint:wrapcheck // loader error is descriptive
	}
	return nil
}
