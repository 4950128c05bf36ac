package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CoinRadar/internal/collector"
	"CoinRadar/internal/config"
	"CoinRadar/internal/logger"
	"CoinRadar/internal/metrics"
	"CoinRadar/internal/notifier"
	"CoinRadar/internal/publisher"
	"CoinRadar/internal/recorder"
	"CoinRadar/internal/scheduler"
	"CoinRadar/internal/server"
	"CoinRadar/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	flag.StringVar(&cfgPath, "config", cfgPath, "path to the YAML config file")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "coinradar: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info().Str("config", cfgPath).Msg("CoinRadar starting")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Fetcher
	var fetcher collector.Fetcher
	switch cfg.Provider.Name {
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewCoinGeckoFetcher(cfg.Provider.BaseURL, cfg.Provider.APIKey, cfg.Proxy, cfg.Provider.Timeout)
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source selected")
	col := collector.NewCollector(fetcher, cfg.Provider.PerPage, cfg.Provider.VolumeDetailLimit, logger.Component(log, "collector"))

	// Recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger.Component(log, "recorder"))
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	pub := buildPublishers(cfg, log)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn().Err(err).Msg("close publishers")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		tn     *notifier.TelegramNotifier
		sender scheduler.Sender
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger.Component(log, "telegram"))
		sender = tn
	} else {
		log.Info().Msg("telegram disabled")
	}

	st := store.New()
	sched := scheduler.NewScheduler(ctx, col, rec, st, pub, sender, m, scheduler.Options{
		RefreshCron:     cfg.Schedule.RefreshCron,
		ConfidenceFloor: cfg.Engine.ConfidenceFloor,
		TopK:            cfg.Engine.TopK,
		Workers:         cfg.Engine.Workers,
		KeepCycles:      cfg.Database.KeepCycles,
	}, logger.Component(log, "scheduler"))
	if err := sched.Register(); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := server.NewServer(
		server.NewHandler(st, cfg.Engine.ConfidenceFloor, cfg.Engine.TopK, logger.Component(log, "api")),
		server.WithAddr(cfg.Server.Addr),
		server.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		server.WithLogger(logger.Component(log, "http")),
	)
	srv.Start()
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("stop http server")
		}
	}()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, refreshing now")
		go func() {
			if _, err := sched.RunCycle(ctx); err != nil {
				log.Error().Err(err).Msg("initial refresh failed")
			}
		}()
	}

	log.Info().Msg("CoinRadar is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	return nil
}

// buildPublishers connects the configured ranking sinks. A sink that cannot
// connect is skipped.
func buildPublishers(cfg *config.Config, log zerolog.Logger) *publisher.Multi {
	var sinks []publisher.Publisher
	if cfg.Redis.Addr != "" {
		rp, err := publisher.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix, cfg.Redis.TTL)
		if err != nil {
			log.Warn().Err(err).Msg("redis sink disabled")
		} else {
			sinks = append(sinks, rp)
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Warn().Err(err).Msg("kafka sink disabled")
		} else {
			sinks = append(sinks, kp)
		}
	}
	log.Info().Int("sinks", len(sinks)).Msg("ranking publishers ready")
	return publisher.NewMulti(sinks...)
}
