package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/berckan/domainfinder/internal/cache"
	"github.com/berckan/domainfinder/internal/checker"
	"github.com/berckan/domainfinder/internal/config"
	"github.com/berckan/domainfinder/internal/handlers"
	"github.com/berckan/domainfinder/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Options{Dir: cfg.LogDir, Debug: cfg.Debug})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	whoisClient, err := checker.NewWhoisClient(cfg.WhoisTimeout, cfg.WhoisProxy)
	if err != nil {
		log.Error("could not set up whois client", zap.Error(err))
		return
	}
	retrier := checker.NewRetrier(checker.New(whoisClient, log.Logger), cfg.BaseDelay, cfg.MaxRetries, log.Logger)
	h := handlers.New(retrier, cache.NewStore(cfg.CacheDir, log.Logger), cfg.TLD, log.Logger)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("server starting", zap.String("addr", "http://localhost:"+port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server stopped", zap.Error(err))
	}
}
