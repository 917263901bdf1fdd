package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docstream-be/internal/bootstrap"
	"docstream-be/internal/config"
	"docstream-be/internal/tracer"
	"docstream-be/pkg/database"
	"docstream-be/pkg/pipeline"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var allStages = []string{
	pipeline.StageIngest,
	pipeline.StageOcr,
	pipeline.StageChunker,
	pipeline.StageEmbedder,
	pipeline.StageIndexer,
}

func main() {
	app := &cli.App{
		Name:  "docstream-worker",
		Usage: "Run pipeline stage workers",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "stage",
				Usage: "stage to run (repeatable); default runs all stages",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("unable to connect to GORM DB: %w", err)
	}

	container, err := bootstrap.NewWorkerContainer(gormDB, cfg)
	if err != nil {
		return fmt.Errorf("unable to bootstrap worker container: %w", err)
	}
	defer container.EventBus.Close()
	defer container.Artifacts.Close()

	stages := c.StringSlice("stage")
	if len(stages) == 0 {
		stages = allStages
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("✅ Metrics listening on :%s/metrics", cfg.App.MetricsPort)
		return container.Metrics.Serve(ctx, ":"+cfg.App.MetricsPort)
	})

	for _, name := range stages {
		runner, ok := container.Runners[name]
		if !ok {
			return fmt.Errorf("unknown stage %q", name)
		}
		log.Printf("✅ Worker stage %s consuming", name)
		g.Go(func() error {
			return runner.Run(ctx)
		})
	}

	<-ctx.Done()
	log.Println("Shutting down workers...")

	// Surfaces the first failure (a metrics listen error or a subscribe
	// failure) instead of masking it behind a clean shutdown.
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
