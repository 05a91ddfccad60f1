package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campusmap/internal/surface/web"
	"campusmap/pkg/graceful"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map in the browser",
	Long: `Loads the buildings and serves the map UI on --addr (/, /ws, /healthz) and
Prometheus metrics on --metrics-addr (/metrics).

A failed load is shown to every browser as a notice; the server keeps running
until interrupted and then exits non-zero.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, cancel := graceful.Context(cmd.Context(), logger)
	defer cancel()

	stopProducer := a.startProducer(ctx)
	defer stopProducer()

	sess := a.newSession()
	hub := web.NewHub(sess, web.View{Center: cfg.Center, Zoom: cfg.Zoom}, logger)
	defer hub.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("GET /metrics", a.recorder.Handler())

	appSrv := &http.Server{Addr: cfg.Addr, Handler: web.NewHandler(hub), ReadHeaderTimeout: 10 * time.Second}
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second}

	var sessionErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listen(appSrv) })
	g.Go(func() error { return listen(metricsSrv) })
	g.Go(func() error {
		<-gctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(appSrv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})
	g.Go(func() error {
		// keep serving the notice; the exit status reports the failure
		sessionErr = a.runSession(gctx, sess, hub.Open, hub.Fail)
		return nil
	})

	logger.Info("serving campus map",
		zap.String("addr", cfg.Addr),
		zap.String("metrics", cfg.MetricsAddr),
		zap.String("source", cfg.Source))

	if err := g.Wait(); err != nil {
		return err
	}
	return sessionErr
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
