package main

import (
	"context"
	"errors"
	"net/http"

	"campusmap/internal/config"
	"campusmap/internal/metrics"
	"campusmap/internal/session"
	"campusmap/internal/store"
	"campusmap/pkg/kafkaclient"

	"go.uber.org/zap"
)

const kafkaBuffer = 256

// app is what every subcommand builds from the configuration.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	recorder *metrics.Recorder
	store    *store.Store
	producer *kafkaclient.KafkaProducer
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	src, err := store.OpenSource(cfg.Source, store.SourceConfig{
		HTTPClient: &http.Client{Timeout: cfg.FetchTimeout},
		UserAgent:  cfg.UserAgent,
		S3:         cfg.S3,
	})
	if err != nil {
		return nil, err
	}
	rec := metrics.New()
	a := &app{
		cfg:      cfg,
		logger:   logger,
		recorder: rec,
		store:    store.New(src, store.WithLogger(logger), store.WithObserver(rec)),
	}
	if cfg.KafkaBroker != "" {
		logger.Info("publishing session events",
			zap.String("broker", cfg.KafkaBroker), zap.String("topic", cfg.KafkaTopic))
		a.producer = kafkaclient.NewKafkaProducer(cfg.KafkaTopic, cfg.KafkaBroker, kafkaBuffer, logger)
	}
	return a, nil
}

// load performs the single fetch under the configured timeout. Session.Run
// later gets the cached outcome.
func (a *app) load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()
	_, err := a.store.Load(ctx)
	return err
}

func (a *app) newSession() *session.Session {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithMetrics(a.recorder),
		session.WithHighlight(a.cfg.Highlight),
	}
	if a.producer != nil {
		opts = append(opts, session.WithPublisher(a.producer))
	}
	return session.New(a.store, opts...)
}

// runSession loads and runs sess until ctx ends. A failure is handed to fail
// and returned; shutting down is not a failure.
func (a *app) runSession(ctx context.Context, sess *session.Session, open session.OpenSurface, fail func(error)) error {
	err := a.load(ctx)
	if err == nil {
		err = sess.Run(ctx, open)
	}
	if err == nil || (ctx.Err() != nil && errors.Is(err, context.Canceled)) {
		return nil
	}
	a.logger.Error("campus map unavailable", zap.Error(err))
	fail(err)
	return err
}

// startProducer starts the kafka loop when configured. The returned func
// flushes and stops it.
func (a *app) startProducer(ctx context.Context) func() {
	if a.producer == nil {
		return func() {}
	}
	// the loop outlives ctx so Stop can flush what the session queued
	a.producer.StartPublishing(context.WithoutCancel(ctx))
	return a.producer.Stop
}
