package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/snow-ghost/planner/catalog"
	"github.com/snow-ghost/planner/config"
	"github.com/snow-ghost/planner/core"
	"github.com/snow-ghost/planner/httpserver"
	"github.com/snow-ghost/planner/optimizer"
	"github.com/snow-ghost/planner/pkg/cache"
	"github.com/snow-ghost/planner/pkg/limiter"
	"github.com/snow-ghost/planner/pkg/observability"
)

const serviceName = "planner"

var version = "dev"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		if err := serve(); err != nil {
			log.Fatal("planner: ", err)
		}
	case "run":
		if err := runOnce(args); err != nil {
			fmt.Fprintln(os.Stderr, "planner:", err)
			os.Exit(1)
		}
	case "catalog":
		if err := exportCatalog(args); err != nil {
			fmt.Fprintln(os.Stderr, "planner:", err)
			os.Exit(1)
		}
	case "healthcheck":
		healthcheck()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want serve, run, catalog or healthcheck)\n", cmd)
		os.Exit(2)
	}
}

// serve runs the HTTP service until SIGINT or SIGTERM
func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	obs, err := observability.NewManager(observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Environment,
		JaegerEndpoint: cfg.JaegerEndpoint,
		LogLevel:       cfg.LogLevel,
		LogFormat:      cfg.LogFormat,
	})
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	logger := obs.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(ctx, cfg, obs)
	if err != nil {
		return err
	}

	var cm *cache.CacheManager
	if cfg.CacheSize > 0 {
		cm, err = cache.NewCacheManager(&cache.CacheConfig{
			MaxSize:         cfg.CacheSize,
			DefaultTTL:      cfg.CacheTTL,
			CleanupInterval: time.Minute,
		})
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer cm.Close()
	}

	opt := optimizer.New(optimizer.Options{
		Catalog:       cat,
		Cache:         cm,
		Observability: obs,
		Limits: optimizer.Limits{
			MaxPopulation:  cfg.MaxPopulation,
			MaxGenerations: cfg.MaxGenerations,
		},
		BatchConcurrency: cfg.BatchConcurrency,
		RunTimeout:       cfg.RunTimeout,
	})

	rl := limiter.NewRateLimiter(limiter.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
		IdleTTL:           10 * time.Minute,
	})

	server := httpserver.NewServer(httpserver.Options{
		Addr:           cfg.Addr(),
		Optimizer:      opt,
		Catalog:        cat,
		Observability:  obs,
		RateLimiter:    rl,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	logger.Info("starting planner service",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"exercises", cat.Len(),
		"cache_size", cfg.CacheSize,
		"version", version,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err = server.Shutdown(shutdownCtx)
		if obsErr := obs.Shutdown(shutdownCtx); obsErr != nil {
			logger.Warn("observability shutdown failed", "error", obsErr.Error())
		}
	}
	return err
}

// loadCatalog prefers the remote catalog and falls back to the file on any failure
func loadCatalog(ctx context.Context, cfg *config.Config, obs *observability.Manager) (*catalog.Catalog, error) {
	logger := obs.GetLogger()
	if cfg.CatalogURL != "" {
		breaker := limiter.DefaultCircuitBreakerConfig()
		breaker.OnStateChange = obs.RecordCircuitState
		guard := limiter.NewGuard(limiter.DefaultRetryConfig(), breaker, logger.GetSlog())

		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		cat, err := catalog.NewFetcher(cfg.CatalogURL, nil, guard).Fetch(fetchCtx)
		if err == nil {
			logger.Info("catalog fetched", "url", cfg.CatalogURL, "exercises", cat.Len())
			return cat, nil
		}
		logger.Warn("catalog fetch failed, using local file", "url", cfg.CatalogURL, "error", err.Error())
	}

	cat, err := catalog.NewLoader(cfg.CatalogPath).Load()
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return cat, nil
}

// runOnce performs a single optimization and prints the result as JSON
func runOnce(args []string) error {
	defaults := core.DefaultRunConfig()
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	exercises := fs.String("exercises", "", "comma-separated exercise names")
	catalogPath := fs.String("catalog", "", "catalog YAML file (default: built-in catalog)")
	goal := fs.String("goal", string(defaults.Goal), "fat_loss, muscle_gain or endurance")
	minutes := fs.Float64("minutes", defaults.Minutes, "session length in minutes")
	popSize := fs.Int("population", defaults.PopulationSize, "population size")
	generations := fs.Int("generations", defaults.Generations, "number of generations")
	mutation := fs.Float64("mutation", defaults.MutationRate, "mutation rate")
	crossover := fs.Float64("crossover", defaults.CrossoverRate, "crossover rate")
	elitism := fs.Float64("elitism", defaults.ElitismRate, "elitism rate")
	sel := fs.String("selection", defaults.Selection, "selection strategy")
	genomeName := fs.String("genome", defaults.Genome, "genome policy")
	model := fs.String("calorie-model", string(defaults.CalorieModel), "rate or fixed")
	penalty := fs.Bool("duration-penalty", false, "penalize plans that overrun the session")
	blockMinutes := fs.Float64("block-minutes", 0, "planned minutes per exercise for the duration penalty")
	seed := fs.Uint64("seed", 0, "random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat := catalog.Default()
	if *catalogPath != "" {
		loaded, err := catalog.NewLoader(*catalogPath).Load()
		if err != nil {
			return err
		}
		cat = loaded
	}

	cfg := defaults
	cfg.Goal = core.Goal(*goal)
	cfg.Minutes = *minutes
	cfg.PopulationSize = *popSize
	cfg.Generations = *generations
	cfg.MutationRate = *mutation
	cfg.CrossoverRate = *crossover
	cfg.ElitismRate = *elitism
	cfg.Selection = *sel
	cfg.Genome = *genomeName
	cfg.CalorieModel = core.CalorieModel(*model)
	cfg.DurationPenalty = *penalty
	cfg.BlockMinutes = *blockMinutes
	cfg.Seed = *seed

	var names []string
	for _, name := range strings.Split(*exercises, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return errors.New("no exercises selected, pass -exercises")
	}

	result, err := optimizer.New(optimizer.Options{Catalog: cat}).Optimize(context.Background(), names, cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// exportCatalog writes the built-in catalog so it can be edited and served
func exportCatalog(args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ContinueOnError)
	out := fs.String("out", "", "destination file (default: $CATALOG_PATH or catalog.yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loader := catalog.NewLoader(*out)
	if err := loader.Save(catalog.Default()); err != nil {
		return err
	}
	fmt.Println("catalog written to", loader.Path())
	return nil
}
