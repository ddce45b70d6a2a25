package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/vantagehq/vantage/adapter"
	aredis "github.com/vantagehq/vantage/adapter/redis"
	as3 "github.com/vantagehq/vantage/adapter/s3"
	"github.com/vantagehq/vantage/adapter/webhook"
	"github.com/vantagehq/vantage/cli/config"
	"github.com/vantagehq/vantage/intel"
	"github.com/vantagehq/vantage/log"
	"github.com/vantagehq/vantage/metrics"
	"github.com/vantagehq/vantage/pipeline"
	"github.com/vantagehq/vantage/provider/reka"
	"github.com/vantagehq/vantage/provider/tavily"
	"github.com/vantagehq/vantage/runtime"
)

// defaultConfigPath is probed when --config is not given.
const defaultConfigPath = "vantage.yaml"

// loadConfig resolves the configuration for execution commands.
// Without --config, a vantage.yaml in the working directory is used if
// present; otherwise everything falls back to built-in defaults and
// environment-driven provider keys.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return &config.Config{}, nil
}

// buildPipeline constructs the provider clients and the stage sequence.
func buildPipeline(cfg *config.Config) (*pipeline.Definition, error) {
	searcher, err := tavily.New(tavily.Config{
		APIKey:   providerKey(cfg.Providers.Tavily.APIKey, "TAVILY_API_KEY"),
		Endpoint: cfg.Providers.Tavily.Endpoint,
		Timeout:  cfg.Providers.Tavily.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}

	llm, err := reka.New(reka.Config{
		APIKey:   providerKey(cfg.Providers.Reka.APIKey, "REKA_API_KEY"),
		Endpoint: cfg.Providers.Reka.Endpoint,
		Model:    cfg.Providers.Reka.Model,
		Timeout:  cfg.Providers.Reka.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}

	return intel.Pipeline(intel.Config{
		LLM:         llm,
		Searcher:    newsSearcher(searcher),
		MaxArticles: cfg.MaxArticles,
	})
}

// providerKey prefers the config value, falling back to the environment.
func providerKey(configured, envVar string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envVar)
}

// newsSearcher bridges the Tavily client to the stage interface.
func newsSearcher(client *tavily.Client) intel.NewsSearcher {
	return intel.SearcherFunc(func(ctx context.Context, query string, maxResults int) ([]intel.SearchResult, error) {
		results, err := client.Search(ctx, query, maxResults)
		if err != nil {
			return nil, err
		}
		out := make([]intel.SearchResult, len(results))
		for i, r := range results {
			out[i] = intel.SearchResult{Title: r.Title, URL: r.URL, Content: r.Content}
		}
		return out, nil
	})
}

// buildAdapters constructs the configured downstream adapters.
func buildAdapters(ctx context.Context, cfgs []config.AdapterConfig) ([]adapter.Adapter, error) {
	adapters := make([]adapter.Adapter, 0, len(cfgs))
	for _, ac := range cfgs {
		a, err := buildAdapter(ctx, ac)
		if err != nil {
			closeAdapters(adapters)
			return nil, fmt.Errorf("adapter %q: %w", ac.Type, err)
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func buildAdapter(ctx context.Context, ac config.AdapterConfig) (adapter.Adapter, error) {
	switch ac.Type {
	case "webhook":
		cfg := webhook.Config{
			URL:     ac.URL,
			Headers: ac.Headers,
			Timeout: ac.Timeout.Duration,
		}
		if ac.Retries != nil {
			cfg.Retries = *ac.Retries
		}
		return webhook.New(cfg)

	case "redis":
		cfg := aredis.Config{
			URL:     ac.URL,
			Channel: ac.Channel,
			Timeout: ac.Timeout.Duration,
		}
		if ac.Retries != nil {
			cfg.Retries = *ac.Retries
		}
		return aredis.New(cfg)

	case "s3":
		return as3.New(ctx, as3.Config{
			Bucket: ac.Bucket,
			Prefix: ac.Prefix,
			Region: ac.Region,
		})

	default:
		return nil, fmt.Errorf("unknown adapter type (want webhook, redis, or s3)")
	}
}

func closeAdapters(adapters []adapter.Adapter) {
	for _, a := range adapters {
		_ = a.Close()
	}
}

// buildRegistry assembles the full in-process execution stack.
func buildRegistry(ctx context.Context, cfg *config.Config, logger *log.Logger, collector *metrics.Collector) (*runtime.Registry, []adapter.Adapter, error) {
	def, err := buildPipeline(cfg)
	if err != nil {
		return nil, nil, err
	}

	adapters, err := buildAdapters(ctx, cfg.Adapters)
	if err != nil {
		return nil, nil, err
	}

	orch, err := runtime.NewOrchestrator(runtime.OrchestratorConfig{
		Pipeline:     def,
		Assemble:     intel.Assemble,
		StageTimeout: cfg.StageTimeout.Duration,
		Adapters:     adapters,
		Logger:       logger,
		Collector:    collector,
	})
	if err != nil {
		closeAdapters(adapters)
		return nil, nil, err
	}

	registry := runtime.NewRegistry(orch, runtime.RegistryConfig{
		MaxRuns: cfg.Retention.MaxRuns,
		TTL:     cfg.Retention.TTL.Duration,
	}, logger, collector)

	return registry, adapters, nil
}
