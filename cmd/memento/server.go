package memento

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/config"
	"github.com/vargamick/poster-memento-sub005/pkg/decay"
	"github.com/vargamick/poster-memento-sub005/pkg/embedder"
	mementoLogger "github.com/vargamick/poster-memento-sub005/pkg/logger"
	"github.com/vargamick/poster-memento-sub005/pkg/search"
	"github.com/vargamick/poster-memento-sub005/pkg/server"
	"github.com/vargamick/poster-memento-sub005/pkg/storage"
	"github.com/vargamick/poster-memento-sub005/pkg/telemetry"
	"github.com/vargamick/poster-memento-sub005/pkg/vector"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Memento HTTP server",
	Long: `Start the Memento HTTP server to provide REST API access to the
knowledge graph memory engine.

The server provides endpoints for:
- Searching entities (graph, vector, and hybrid strategies)
- Discovering paths between entities
- Computing node analytics
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Storage flags
	serverCmd.Flags().String("storage-driver", "memory", "Graph storage driver (memory, neo4j)")
	serverCmd.Flags().String("storage-uri", "", "Graph storage URI (neo4j only)")
	serverCmd.Flags().String("storage-username", "", "Graph storage username (neo4j only)")
	serverCmd.Flags().String("storage-password", "", "Graph storage password (neo4j only)")
	serverCmd.Flags().String("storage-database", "", "Graph storage database name (neo4j only)")

	// Vector store flags
	serverCmd.Flags().String("vector-path", "", "Vector index path (empty for in-memory)")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "openai", "Embedding provider")
	serverCmd.Flags().String("embedding-model", "text-embedding-3-small", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")
	serverCmd.Flags().String("embedding-base-url", "", "Embedding base URL")

	// Search flags
	serverCmd.Flags().String("default-strategy", "", "Default search strategy (graph, vector, hybrid)")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Path to directory for telemetry (errors and query records)")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	// Validate configuration
	if err := validateServerConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	slog.SetDefault(logger)

	// Initialize the engine
	engine, err := initializeEngine(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	// Query telemetry
	var querylog *telemetry.QueryLog
	if cfg.Telemetry.ParquetPath != "" {
		querylog, err = telemetry.NewQueryLog(cfg.Telemetry.ParquetPath)
		if err != nil {
			logger.Warn("Failed to initialize query telemetry", "error", err)
		} else {
			logger.Info("Query telemetry enabled", "path", cfg.Telemetry.ParquetPath)
		}
	}

	// Create and setup server
	srv := server.New(cfg, engine).WithQueryLog(querylog)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		if err := querylog.Close(); err != nil {
			logger.Warn("Failed to flush query telemetry", "error", err)
		}
		if err := engine.Close(shutdownCtx); err != nil {
			logger.Warn("Failed to close engine", "error", err)
		}

		logger.Info("Server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Storage flags
	if cmd.Flags().Changed("storage-driver") {
		cfg.Storage.Driver, _ = cmd.Flags().GetString("storage-driver")
	}
	if cmd.Flags().Changed("storage-uri") {
		cfg.Storage.URI, _ = cmd.Flags().GetString("storage-uri")
	}
	if cmd.Flags().Changed("storage-username") {
		cfg.Storage.Username, _ = cmd.Flags().GetString("storage-username")
	}
	if cmd.Flags().Changed("storage-password") {
		cfg.Storage.Password, _ = cmd.Flags().GetString("storage-password")
	}
	if cmd.Flags().Changed("storage-database") {
		cfg.Storage.Database, _ = cmd.Flags().GetString("storage-database")
	}

	// Vector store flags
	if cmd.Flags().Changed("vector-path") {
		cfg.Vector.Path, _ = cmd.Flags().GetString("vector-path")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}
	if cmd.Flags().Changed("embedding-base-url") {
		cfg.Embedding.BaseURL, _ = cmd.Flags().GetString("embedding-base-url")
	}

	// Search flags
	if cmd.Flags().Changed("default-strategy") {
		cfg.Search.DefaultStrategy, _ = cmd.Flags().GetString("default-strategy")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}

func validateServerConfig(cfg *config.Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Driver {
	case "memory":
	case "neo4j":
		if cfg.Storage.URI == "" {
			return fmt.Errorf("storage URI is required for the neo4j driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	return nil
}

// buildLogger assembles the process logger: colored terminal output,
// optionally wrapped with Parquet error tracking.
func buildLogger(cfg *config.Config) (*slog.Logger, error) {
	var handler slog.Handler = mementoLogger.NewColorHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	})

	if cfg.Telemetry.ParquetPath != "" {
		if err := os.MkdirAll(cfg.Telemetry.ParquetPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
		}
		parquetHandler, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize error tracking: %v\n", err)
		} else {
			handler = parquetHandler
		}
	}

	return slog.New(handler), nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initializeEngine(cfg *config.Config, logger *slog.Logger) (memento.Engine, error) {
	// Graph storage
	var store storage.StorageProvider
	switch cfg.Storage.Driver {
	case "memory":
		store = storage.NewMemoryProvider()
	case "neo4j":
		provider, err := storage.NewNeo4jProvider(cfg.Storage.URI, cfg.Storage.Username, cfg.Storage.Password, cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j provider: %w", err)
		}
		store = provider
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
	logger.Info("Graph storage initialized", "driver", cfg.Storage.Driver)

	// Vector store and embedder enable the vector and hybrid strategies
	var (
		vectorStore    vector.Store
		embedderClient embedder.Client
	)
	embeddingConfigured := cfg.Embedding.Provider != "" && cfg.Embedding.Provider != "none" &&
		(cfg.Embedding.APIKey != "" || cfg.Embedding.BaseURL != "")
	if embeddingConfigured {
		switch cfg.Embedding.Provider {
		case "openai":
			baseClient, err := embedder.NewOpenAIClient(cfg.Embedding.APIKey, embedder.OpenAIConfig{
				Model:      cfg.Embedding.Model,
				Dimensions: cfg.Embedding.Dimensions,
				BaseURL:    cfg.Embedding.BaseURL,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create embedder: %w", err)
			}
			embedderClient = embedder.WrapWithBreaker(baseClient, embedder.DefaultBreakerConfig(), logger)

			vectorStore, err = vector.NewBadgerStore(cfg.Vector.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to open vector store: %w", err)
			}
			logger.Info("Vector search enabled", "model", cfg.Embedding.Model, "path", cfg.Vector.Path)
		default:
			return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
		}
	} else {
		logger.Info("No embedding credentials, graph search only")
	}

	// Confidence decay
	model := decay.Disabled()
	if cfg.Decay.Enabled {
		halfLife := time.Duration(cfg.Decay.HalfLifeDays * 24 * float64(time.Hour))
		model = decay.New(halfLife, cfg.Decay.MinValue)
	}

	return memento.NewClient(store, &memento.Config{
		Vector:          vectorStore,
		Embedder:        embedderClient,
		Decay:           model,
		DefaultStrategy: cfg.Search.DefaultStrategy,
		Hybrid: search.HybridConfig{
			GraphWeight:  cfg.Search.GraphWeight,
			VectorWeight: cfg.Search.VectorWeight,
		},
		Logger: logger,
	})
}
