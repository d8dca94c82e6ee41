package hybridstore

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/soundprediction/go-hybridstore/pkg/config"
	"github.com/soundprediction/go-hybridstore/pkg/embedder"
	"github.com/soundprediction/go-hybridstore/pkg/logger"
	"github.com/soundprediction/go-hybridstore/pkg/store"
	"github.com/soundprediction/go-hybridstore/pkg/telemetry"
)

// Client is the assembled hybrid store: the adapter plus the embedding
// gateway and logging built from configuration. All store operations are
// promoted from the embedded adapter.
type Client struct {
	*store.Adapter

	embedder embedder.Client
	config   *config.Config
	logger   *slog.Logger
	parquet  *telemetry.ParquetHandler
}

// Option overrides parts of the assembly built from configuration.
type Option func(*options)

type options struct {
	embedder embedder.Client
	logger   *slog.Logger
}

// WithEmbedder injects a pre-built embedding client instead of constructing
// one from the configuration. The circuit breaker is not re-applied.
func WithEmbedder(client embedder.Client) Option {
	return func(o *options) { o.embedder = client }
}

// WithLogger injects a logger instead of building one from configuration.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// Open assembles a hybrid store from configuration: logger, embedding
// gateway (with circuit breaker), error telemetry, and the database itself.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger
	if log == nil {
		log = logger.NewLogger(os.Stderr, logger.ParseLevel(cfg.Log.Level), cfg.Log.Format)
	}

	var parquetHandler *telemetry.ParquetHandler
	if cfg.Telemetry.Enabled && cfg.Telemetry.ParquetPath != "" {
		h, err := telemetry.NewParquetHandler(log.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("failed to initialize error telemetry", "error", err)
		} else {
			log = slog.New(h)
			parquetHandler = h
		}
	}

	embedderClient := o.embedder
	if embedderClient == nil {
		built, err := newEmbedder(cfg, log)
		if err != nil {
			return nil, err
		}
		embedderClient = built
	}

	adapter, err := store.Open(cfg.Database.Path,
		store.WithEmbedder(embedderClient),
		store.WithLogger(log),
	)
	if err != nil {
		if embedderClient != nil {
			_ = embedderClient.Close()
		}
		return nil, err
	}

	return &Client{
		Adapter:  adapter,
		embedder: embedderClient,
		config:   cfg,
		logger:   log,
		parquet:  parquetHandler,
	}, nil
}

// Close flushes telemetry and releases the embedder and the database.
func (c *Client) Close() error {
	if c.parquet != nil {
		if err := c.parquet.Flush(); err != nil {
			c.logger.Warn("failed to flush telemetry", "error", err)
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			c.logger.Warn("failed to close embedder", "error", err)
		}
	}
	return c.Adapter.Close()
}

// Embedder returns the embedding client the store was assembled with.
func (c *Client) Embedder() embedder.Client {
	return c.embedder
}

// Config returns the configuration the store was assembled from.
func (c *Client) Config() *config.Config {
	return c.config
}

// Logger returns the assembled logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

func newEmbedder(cfg *config.Config, log *slog.Logger) (embedder.Client, error) {
	embCfg := embedder.Config{
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Embedding.BatchSize,
	}

	var client embedder.Client
	switch cfg.Embedding.Provider {
	case "openai":
		if cfg.Embedding.APIKey == "" {
			return nil, fmt.Errorf("embedding provider %q requires an API key", cfg.Embedding.Provider)
		}
		client = embedder.NewOpenAIEmbedder(cfg.Embedding.APIKey, embCfg)
	case "local", "":
		local, err := embedder.NewEmbedEverythingClient(embCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local embedder: %w", err)
		}
		client = local
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}

	if cfg.CircuitBreaker.Enabled {
		client = embedder.NewCircuitBreakerClient(client, embedder.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}, log, "embedding")
	}
	return client, nil
}
