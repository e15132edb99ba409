package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-posts"
	"github.com/goliatone/go-posts/activitymap"
	"github.com/goliatone/go-posts/config"
	"github.com/goliatone/go-posts/persistence"
	"github.com/goliatone/go-print"
)

var _ posts.Config = config.Config{}

func newLogger(debug bool) *glog.BaseLogger {
	level := glog.Info
	if debug {
		level = glog.Debug
	}

	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("posts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadContext(ctx)
	if err != nil {
		newLogger(false).GetLogger("config").Fatal("failed to load config", "error", err)
	}

	lgr := newLogger(cfg.Debug)

	if cfg.Debug {
		lgr.GetLogger("config").Debug("loaded", "config", print.MaybePrettyJSON(cfg.Redacted()))
	}

	store, err := persistence.Open(ctx, persistence.Options{
		DatabaseURL:   cfg.DatabaseURL,
		MongoDatabase: cfg.MongoDatabase,
		Debug:         cfg.Debug,
		Logger:        lgr.GetLogger("persistence"),
	})
	if err != nil {
		lgr.Fatal("failed to open store", "error", err)
	}
	defer store.Close(context.Background()) //nolint:errcheck

	tokens := posts.NewTokenServiceFromConfig(cfg, lgr.GetLogger("tokens"))

	controller := posts.NewPostsController(
		posts.WithControllerLogger(lgr.GetLogger("http")),
		posts.WithRepositoryManager(store.Repo),
		posts.WithPasswordHasher(posts.NewBcryptHasher(cfg.BcryptCost)),
		posts.WithTokenService(tokens),
		posts.WithControllerActivity(activitymap.Sink(lgr.GetLogger("activity"))),
		posts.WithConfig(cfg),
		posts.WithAccessLog(true),
	)

	srv := posts.NewServer(controller)

	go func() {
		lgr.Info("server started", "port", cfg.Port)
		if err := srv.Serve(cfg.GetAddress()); err != nil {
			lgr.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()
	lgr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		lgr.Error("shutdown error", "error", err)
	}
}
