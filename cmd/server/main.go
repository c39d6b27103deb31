package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentra/config"
	"sentra/internal/database"
	"sentra/internal/router"
	"sentra/pkg/cloudinary"
	"sentra/pkg/logger"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("database connect failed")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	database.SeedAdmin(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.WithError(err).Warn("cloudinary disabled, alert photo uploads unavailable")
		cloud = nil
	}

	engine, shareManager := router.Setup(cfg, db, cloud, log)

	// periodic sweep: stop over-limit shares, purge past retention
	sweeper := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	_, err = sweeper.AddFunc("@every "+cfg.LiveShare.SweepInterval.String(), func() {
		if stopped, err := shareManager.Expire(time.Now()); err != nil {
			log.WithError(err).Error("share expiry sweep failed")
		} else if stopped > 0 {
			log.WithField("stopped", stopped).Info("expired live shares")
		}
	})
	if err != nil {
		log.WithError(err).Fatal("could not schedule share expiry sweep")
	}
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("listen failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server shutdown failed")
	}
	log.Info("server stopped")
}
