// The gateway serves the panel API: cached reads from the backend,
// orchestrated writes with cache invalidation, and the notification
// feed the screens poll.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/streamlift/panel_core/internal/apiclient"
	"github.com/streamlift/panel_core/internal/config"
	"github.com/streamlift/panel_core/internal/logging"
	"github.com/streamlift/panel_core/internal/metrics"
	"github.com/streamlift/panel_core/internal/mutation"
	"github.com/streamlift/panel_core/internal/notify"
	"github.com/streamlift/panel_core/internal/realtime"
	"github.com/streamlift/panel_core/internal/resource"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("gateway", "info").Fatal().Err(err).Msg("load config")
	}

	log := logging.New("gateway", cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("gateway exited")
	}
}

func run(cfg *config.Config, log *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("panel")

	var httpClient *http.Client
	if cfg.Backend.Resilience {
		httpClient = apiclient.NewResilientHTTPClient(
			apiclient.DefaultRetryConfig(),
			apiclient.DefaultBreakerConfig(),
			cfg.Backend.Timeout,
		)
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.Backend.BaseURL,
		APIKey:     cfg.Backend.APIKey,
		HTTPClient: httpClient,
		Timeout:    cfg.Backend.Timeout,
	})
	if err != nil {
		return err
	}
	routes := apiclient.NewRoutes(client)

	policies, fallback, err := config.LoadPolicies(cfg.PolicyFile)
	if err != nil {
		return err
	}
	cache := resource.New(routes,
		resource.WithPolicies(policies),
		resource.WithDefaultPolicy(fallback),
		resource.WithLogger(log),
		resource.WithMetrics(m),
	)

	var bus resource.Bus = resource.NopBus{}
	if cfg.Redis.Addr != "" {
		redisBus, err := resource.NewRedisBus(ctx, resource.RedisBusConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Channel:  cfg.Redis.Channel,
		}, cache, log)
		if err != nil {
			return err
		}
		defer redisBus.Close()
		bus = redisBus
	}

	queue := notify.NewQueue()
	defer queue.Close()

	executor := mutation.NewExecutor(routes, cache, bus, queue, log, m)

	revalidator, err := resource.NewRevalidator(cache, cfg.Revalidate.Spec, log)
	if err != nil {
		return err
	}
	revalidator.Start()
	defer revalidator.Stop()

	if cfg.Realtime.Enabled {
		feed := realtime.NewFeed(cfg.Backend.BaseURL, cfg.Backend.APIKey, cache, log)
		if err := feed.Start(ctx); err != nil {
			return err
		}
		defer feed.Close()
	}

	srv := newServer(cfg, log, m, cache, executor, queue)
	srv.limiter.StartCleanup(ctx, 5*time.Minute, 30*time.Minute)
	httpSrv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("gateway listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
