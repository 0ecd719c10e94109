package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shipping-estimator/internal/app"
	"github.com/yungbote/shipping-estimator/internal/config"
	"github.com/yungbote/shipping-estimator/internal/platform/logger"
	"github.com/yungbote/shipping-estimator/internal/platform/shutdown"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred flushes happen before exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("failed to init logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	sigCtx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(sigCtx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", "error", err)
		return 1
	}
	defer a.Close(context.Background())

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return a.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if sigCtx.Err() != nil {
			log.Info("shutdown signal received, draining")
		}
		stop()
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		return 1
	}
	log.Info("server stopped")
	return 0
}
