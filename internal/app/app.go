// Package app assembles the components shared by the API server and the
// extraction worker from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/resume-portfolio/config"
	"github.com/feichai0017/resume-portfolio/internal/agent"
	"github.com/feichai0017/resume-portfolio/internal/agent/resume"
	"github.com/feichai0017/resume-portfolio/internal/service/portfolio"
	"github.com/feichai0017/resume-portfolio/internal/store"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
	"github.com/feichai0017/resume-portfolio/pkg/storage"
)

type App struct {
	Config  *config.Config
	Service *portfolio.PortfolioService
	// Queue and Storage are nil unless queue.enabled.
	Queue   *queue.AsynqQueue
	Storage storage.Storage

	closers []func() error
}

// NewLogger builds the process logger from the log section.
func NewLogger(conf config.LogConfig, name string) (logger.Logger, error) {
	log, err := logger.NewLogger(
		logger.WithLevel(conf.Level),
		logger.WithEncoding(conf.Encoding),
		logger.WithOutputPaths(conf.OutputPaths),
		logger.WithDevelopment(conf.Development),
	)
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}

func New(ctx context.Context, conf *config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: conf}

	var rdb *redis.Client
	if conf.Store.Backend == config.StoreRedis || conf.Queue.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
	}

	var portfolios store.PortfolioStore
	switch conf.Store.Backend {
	case config.StoreRedis:
		portfolios = store.NewRedisStore(rdb, conf.Store.TTL)
	default:
		portfolios = store.NewMemoryStore()
	}

	factory, err := agent.NewProcessorFactory(ctx, conf, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize processor factory: %w", err)
	}
	a.closers = append(a.closers, factory.Close)

	var opts []portfolio.Option
	if conf.Queue.Enabled {
		blobs, err := storage.NewStorage(ctx, conf, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.Storage = blobs

		a.Queue = queue.NewAsynqQueue(rdb, a.QueueConfig())
		a.closers = append(a.closers, a.Queue.Close)
		opts = append(opts, portfolio.WithJobs(a.Queue, blobs))
	}

	a.Service = portfolio.NewService(
		factory,
		resume.NewParser(log),
		portfolios,
		log,
		&portfolio.ServiceConfig{MaxFileSize: conf.Upload.MaxBytes},
		opts...,
	)

	log.Info("Application initialized",
		logger.String("store", conf.Store.Backend),
		logger.String("ocrEngine", conf.OCR.Engine),
		logger.Bool("jobs", conf.Queue.Enabled),
	)
	return a, nil
}

func (a *App) QueueConfig() queue.Config {
	return queue.Config{
		RedisAddr:     a.Config.Redis.Addr,
		RedisPassword: a.Config.Redis.Password,
		RedisDB:       a.Config.Redis.DB,
		MaxRetry:      a.Config.Queue.MaxRetry,
		Timeout:       a.Config.Queue.Timeout,
		StatusTTL:     a.Config.Queue.StatusTTL,
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
