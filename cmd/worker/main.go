package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/feichai0017/resume-portfolio/config"
	"github.com/feichai0017/resume-portfolio/internal/app"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
	"github.com/feichai0017/resume-portfolio/pkg/worker"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := app.NewLogger(conf.Log, "worker")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !conf.Queue.Enabled {
		log.Fatal("Worker requires queue.enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, conf, log)
	if err != nil {
		log.Fatal("Failed to initialize application", logger.Error(err))
	}
	defer a.Close()

	resumeWorker := worker.NewResumeWorker(
		&worker.Config{
			Redis:       a.QueueConfig().RedisOpt(),
			Concurrency: conf.Queue.Concurrency,
			Queues:      map[string]int{queue.QueueName: 1},
		},
		a.Service,
		a.Queue,
		a.Storage,
		conf.Queue.Retention,
		log,
	)

	if err := resumeWorker.Start(ctx); err != nil {
		log.Error("Failed to start worker", logger.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("Shutting down worker...")
	resumeWorker.Stop()
	log.Info("Worker stopped")
}
