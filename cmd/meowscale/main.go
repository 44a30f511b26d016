package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	adapthttp "meowscale/internal/adapter/http"
	"meowscale/internal/adapter/memory"
	"meowscale/internal/adapter/mongo"
	"meowscale/internal/adapter/notify"
	"meowscale/internal/adapter/postgres"
	"meowscale/internal/adapter/rediscache"
	"meowscale/internal/app"
	"meowscale/internal/config"
	"meowscale/internal/domain"
	"meowscale/internal/logging"
	"meowscale/internal/metrics"
	"meowscale/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// stores bundles the selected backend with its lifecycle hooks.
type stores struct {
	profiles domain.ProfileRepository
	weights  domain.WeightRepository
	ping     func(context.Context) error
	close    func(context.Context) error
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case "mongo":
		s, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.SlowThreshold)
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		return &stores{profiles: s, weights: s, ping: s.Ping, close: s.Close}, nil

	case "postgres":
		db, err := postgres.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return &stores{
			profiles: db,
			weights:  db,
			ping:     db.Ping,
			close:    func(context.Context) error { return db.Close() },
		}, nil

	default:
		slog.Warn("using in-memory store, data is lost on restart")
		db := memory.New()
		return &stores{
			profiles: db,
			weights:  db,
			ping:     func(context.Context) error { return nil },
			close:    func(context.Context) error { return nil },
		}, nil
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	logging.Setup(os.Stderr, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			slog.Error("closing store", "err", err)
		}
	}()

	profiles := st.profiles
	if cfg.Redis.Addr != "" {
		rdb, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SlowThreshold)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		profiles = rediscache.NewProfiles(profiles, rdb, cfg.Redis.TTL)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	bmi, err := cfg.BMI()
	if err != nil {
		return err
	}
	opts := []app.Option{app.WithLocation(loc), app.WithBMIThresholds(bmi)}

	var notifier domain.Notifier = notify.Log{}
	if cfg.Reminders.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.Reminders.WebhookURL, cfg.Reminders.Timeout)
	}

	m := metrics.New()
	svc := adapthttp.Services{
		Weights:   app.NewWeightService(st.weights, profiles, opts...),
		Profiles:  app.NewProfileService(profiles, opts...),
		Partners:  app.NewPartnerService(profiles),
		Dashboard: app.NewDashboardService(st.weights, profiles, opts...),
		Charts:    app.NewChartsService(st.weights, profiles, opts...),
	}

	serverOpts := []adapthttp.Option{adapthttp.WithMetrics(m), adapthttp.WithReadiness(st.ping)}
	if cfg.OIDCEnabled() {
		o := cfg.Auth.OIDC
		rp, err := adapthttp.NewOIDC(ctx, o.Issuer, o.ClientID, o.ClientSecret, o.RedirectURL)
		if err != nil {
			return err
		}
		serverOpts = append(serverOpts, adapthttp.WithOIDC(rp))
	}
	if cfg.Auth.ForwardAuth {
		serverOpts = append(serverOpts, adapthttp.WithForwardAuth())
	}
	api := adapthttp.New(svc, cfg.Server.WebDir, serverOpts...)
	if cfg.Auth.Disabled {
		slog.Warn("authentication disabled, trusting X-User-ID")
		api = api.WithoutAuth()
	}

	cron := scheduler.NewManager()
	if cfg.Reminders.Enabled {
		reminders := app.NewReminderService(profiles, st.weights, notifier, opts...)
		if err := cron.Register(cfg.Reminders.Spec, scheduler.NewReminderJob(reminders, m, cfg.Reminders.Timeout)); err != nil {
			return fmt.Errorf("reminders: %w", err)
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("listening", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	cron.Start()

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		cron.Stop(shutdownCtx)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown failed", "err", err)
		}
		return nil
	})

	return g.Wait()
}
