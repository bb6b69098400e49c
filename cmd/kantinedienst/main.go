package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	flag "github.com/spf13/pflag"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/config"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/engine"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/feed"
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/prefs"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	logLevel   string
}

func main() {
	appLog.Info("kantinedienst starting", "version", "0.1.0-dev")

	// .env is optional; it mainly carries KANTINE_API_PASSWORD in deployments.
	_ = godotenv.Load()

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	appLog.SetLevel(conf.LogLevel)

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"horizon_days", conf.HorizonDays,
		"feed_url", conf.Feed.URL,
		"home_venue", conf.Feed.HomeVenue,
		"once", flags.once,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	loc := conf.Location()
	store := prefs.Open(conf.PrefsPath)
	client := api.NewClient(conf.API.BaseURL, conf.API.Username, conf.API.Password)
	feedSvc := feed.NewService(conf.Feed.URL, conf.Feed.HomeVenue, loc, conf.HorizonDays)
	srv := web.NewServer(conf)

	// The engine runs confined to the dispatch goroutine below; the web
	// server only ever sees immutable snapshots pushed through the sink.
	var eng *engine.Engine
	eng = engine.New(engine.Config{
		Remote: client,
		Prefs:  store,
		Sink: func(events []engine.Event) {
			srv.SetSnapshot(events, eng.DayStatuses())
		},
		Notify: func(msg string) {
			appLog.Warn("user notification", "message", msg)
		},
	})

	// Dispatch loop: all engine work funnels through one goroutine.
	ops := make(chan func(), 16)
	go func() {
		for op := range ops {
			op()
		}
	}()
	dispatch := func(op func()) {
		select {
		case ops <- op:
		case <-ctx.Done():
		}
	}

	refresh := func() {
		fixtures, err := feedSvc.Refresh(ctx)
		if err != nil {
			metrics.FeedRefreshes.WithLabelValues("error").Inc()
			var fe *feed.FetchError
			if errors.As(err, &fe) {
				appLog.Warn("feed refresh failed", "hint", fe.Hint())
			}
			return
		}
		metrics.FeedRefreshes.WithLabelValues("ok").Inc()
		eng.SetFixtures(fixtures)
	}

	seedBoard := func() {
		members, err := client.ListVolunteers(ctx, "bestuur")
		if err != nil {
			appLog.Error("could not load board members", err)
			return
		}
		eng.SetBoardMembers(members)
	}

	initialLoad := func() {
		refresh()
		seedBoard()

		// Initial mount: hydrate the current month.
		now := time.Now().In(loc)
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		if err := eng.EnsureVisibleMonthsLoaded(ctx, engine.VisibleRange{
			Start:   first,
			End:     first.AddDate(0, 1, 0),
			View:    engine.ViewMonthGrid,
			Focused: first,
		}); err != nil {
			appLog.Error("initial month load failed", err)
		}
	}

	if flags.once {
		done := make(chan struct{})
		dispatch(func() {
			initialLoad()
			close(done)
		})
		select {
		case <-done:
		case <-ctx.Done():
		}
		appLog.Info("kantinedienst exiting (once)")
		return
	}

	dispatch(initialLoad)

	sched := cron.New()
	if _, err := sched.AddFunc(conf.RefreshCron, func() { dispatch(refresh) }); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := web.StartServer(conf, srv); err != nil {
			appLog.Error("HTTP server stopped", err)
			cancel()
		}
	}()

	<-ctx.Done()
	close(ops)
	appLog.Info("kantinedienst exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/kantinedienst/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one refresh+hydrate cycle and exit")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Minimum log level (overrides config if set)")

	flag.Parse()

	return cfg
}
