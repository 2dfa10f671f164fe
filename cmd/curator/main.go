// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/curator"
	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/langchain"
	"github.com/poiesic/curator/api"
	"github.com/poiesic/curator/config"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/mcp"
	"github.com/poiesic/curator/reembed"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var version = "dev"

// newProvider builds the AI provider for a command.
var newProvider = func(cfg *ai.Config) (ai.AIProvider, error) {
	return langchain.NewProvider(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "curator",
		Usage:   "Curate expert knowledge into a searchable knowledge base",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the configuration file",
				Value:   config.DefaultPath(),
				EnvVars: []string{"CURATOR_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides storage.path)",
				EnvVars: []string{"CURATOR_DB"},
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Generation backend (openai, anthropic)",
			},
			&cli.StringFlag{
				Name:  "generation-host",
				Usage: "Generation service host URL",
			},
			&cli.StringFlag{
				Name:  "generation-model",
				Usage: "Generation model name",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the generation service",
				EnvVars: []string{"CURATOR_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "bind",
						Usage: "Address to listen on (overrides http.bind)",
					},
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on (overrides http.port)",
						EnvVars: []string{"CURATOR_PORT", "PORT"},
					},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the curation tools over MCP on stdio",
				Action: mcpCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "disable-tool",
						Usage:   "Tool to leave unregistered (repeatable)",
						EnvVars: []string{"CURATOR_DISABLED_TOOLS"},
					},
				},
			},
			documentsCommand(),
			{
				Name:   "reembed",
				Usage:  "Reembed all knowledge documents with the configured embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "restart",
						Usage: "Ignore any checkpoint and start from the first document",
					},
				},
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write a configuration file with default values",
						Action: configInitCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
					},
					{
						Name:   "show",
						Usage:  "Print the effective configuration",
						Action: configShowCommand,
					},
				},
			},
		},
	}
}

// loadConfig reads the configuration file and applies the global flag
// overrides.
func loadConfig(c *cli.Context) (*config.File, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"db", &cfg.Storage.Path},
		{"backend", &cfg.AI.Backend},
		{"generation-host", &cfg.AI.GenerationHost},
		{"generation-model", &cfg.AI.GenerationModel},
		{"api-key", &cfg.AI.GenerationToken},
		{"embedding-host", &cfg.AI.EmbeddingHost},
		{"embedding-model", &cfg.AI.EmbeddingModel},
	}
	for _, o := range overrides {
		if c.IsSet(o.flag) {
			*o.target = c.String(o.flag)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openCurator builds the provider and opens the knowledge base named by cfg.
func openCurator(cfg *config.File, opts ...curator.Option) (*curator.Curator, error) {
	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := newProvider(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	opts = append([]curator.Option{
		curator.WithAIConfig(aiConfig),
		curator.WithProvider(provider),
		curator.WithCurationOptions(cfg.CurationOptions()...),
	}, opts...)

	cur, err := curator.Open(cfg.Storage.Path, opts...)
	if err != nil {
		provider.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cur, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("bind") {
		cfg.HTTP.Bind = c.String("bind")
	}
	if c.IsSet("port") {
		cfg.HTTP.Port = c.Int("port")
	}

	broker := api.NewBroker()
	cur, err := openCurator(cfg, curator.WithCurationOptions(curation.WithNotifier(broker)))
	if err != nil {
		return err
	}
	defer cur.Close()

	srv, err := api.NewServer(api.Config{
		Orchestrator: cur.Orchestrator(),
		Knowledge:    cur.Knowledge(),
		Events:       broker,
		Categories:   cfg.Categories,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.Storage.Path)
	fmt.Fprintf(os.Stderr, "Generation: %s (%s)\n", cfg.AI.GenerationModel, cfg.AI.Backend)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Addr())

	return srv.Run(ctx, cfg.Addr())
}

func mcpCommand(c *cli.Context) error {
	disabled := c.StringSlice("disable-tool")
	if unknown := mcp.ValidateDisabledTools(disabled); len(unknown) > 0 {
		return fmt.Errorf("unknown tools: %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(mcp.AllToolNames(), ", "))
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cur, err := openCurator(cfg)
	if err != nil {
		return err
	}
	defer cur.Close()

	slog.Info("serving MCP on stdio", "database", cfg.Storage.Path, "disabled", len(disabled))
	return mcp.Run(mcp.NewHandlers(cur.Orchestrator(), cur.Knowledge(), nil), version, disabled...)
}

func reembedCommand(c *cli.Context) error {
	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Resume:         !c.Bool("restart"),
	}

	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cur, err := openCurator(cfg)
	if err != nil {
		return err
	}
	defer cur.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := c.App.ErrWriter
	fmt.Fprintf(out, "Database: %s\n", cfg.Storage.Path)
	fmt.Fprintf(out, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(out, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(out)

	if err := cur.NewReembedder(reembedConfig, out).Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func configInitCommand(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Default().Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.AI.GenerationToken = redact(cfg.AI.GenerationToken)
	cfg.AI.EmbeddingToken = redact(cfg.AI.EmbeddingToken)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func redact(token string) string {
	if token == "" || token == "none" {
		return token
	}
	return "********"
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// stdout carries the MCP protocol, so logs always go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
