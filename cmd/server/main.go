package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-portfolio/api/handlers"
	"github.com/feichai0017/resume-portfolio/api/routes"
	"github.com/feichai0017/resume-portfolio/config"
	"github.com/feichai0017/resume-portfolio/internal/app"
	"github.com/feichai0017/resume-portfolio/internal/utils/validator"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := app.NewLogger(conf.Log, "server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, conf, log)
	if err != nil {
		log.Fatal("Failed to initialize application", logger.Error(err))
	}
	defer a.Close()

	validatorConfig := validator.DefaultConfig()
	validatorConfig.MaxFileSize = conf.Upload.MaxBytes
	uploadValidator := validator.NewUploadValidator(log, validatorConfig)
	h := handlers.NewHandlers(a.Service, uploadValidator, conf.Server.DefaultUserID, log)

	gin.SetMode(conf.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h, routes.Options{
		AllowOrigins: conf.Server.AllowOrigins,
		JobsEnabled:  conf.Queue.Enabled,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:    conf.Server.Addr,
		Handler: r,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", conf.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
