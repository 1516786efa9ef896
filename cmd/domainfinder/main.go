package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/berckan/domainfinder/internal/cache"
	"github.com/berckan/domainfinder/internal/checker"
	"github.com/berckan/domainfinder/internal/config"
	"github.com/berckan/domainfinder/internal/discovery"
	"github.com/berckan/domainfinder/internal/generator"
	"github.com/berckan/domainfinder/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	debug := flag.Bool("debug", false, "print debug logs to the console")
	idea := flag.String("idea", "", "run a single search for this idea and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *debug {
		cfg.Debug = true
	}

	apiKey, err := config.LoadAPIKey(cfg)
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fmt.Fprintf(os.Stderr, "Error: OpenAI API key not found. Please add it to %s or set OPENAI_API_KEY\n", cfg.KeyFile)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}

	log, err := logging.New(logging.Options{Dir: cfg.LogDir, Debug: cfg.Debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	whoisClient, err := checker.NewWhoisClient(cfg.WhoisTimeout, cfg.WhoisProxy)
	if err != nil {
		log.Error("could not set up whois client", zap.Error(err))
		return 1
	}
	retrier := checker.NewRetrier(checker.New(whoisClient, log.Logger), cfg.BaseDelay, cfg.MaxRetries, log.Logger)
	classifier := checker.NewClassifier(retrier, os.Stderr, log.Logger)
	store := cache.NewStore(cfg.CacheDir, log.Logger)
	gen := generator.New(generator.Options{
		APIURL:  cfg.APIURL,
		APIKey:  apiKey,
		Model:   cfg.Model,
		Timeout: cfg.HTTPTimeout,
	}, log.Logger)

	finder := discovery.New(gen, classifier, store, discovery.Options{
		CandidateCount:   cfg.CandidateCount,
		TLD:              cfg.TLD,
		DefaultMaxLength: cfg.DefaultMaxLength,
		MaxRounds:        cfg.MaxRounds,
	}, os.Stdout, log.Logger)

	if strings.TrimSpace(*idea) != "" {
		outcome, err := finder.Discover(ctx, *idea)
		if err != nil {
			fmt.Fprintln(os.Stderr, "\nInterrupted.")
			return 130
		}
		finder.Report(outcome)
		if outcome.GenerationErr != nil {
			return 1
		}
		return 0
	}

	if err := finder.Run(ctx, os.Stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted. Goodbye!")
			return 130
		}
		log.Error("domain finder stopped", zap.Error(err))
		return 1
	}
	return 0
}
