package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NiftyRSI/internal/collector"
	"NiftyRSI/internal/config"
	"NiftyRSI/internal/notifier"
	"NiftyRSI/internal/recorder"
	"NiftyRSI/internal/scheduler"
	"NiftyRSI/internal/web"

	"github.com/gin-gonic/gin"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] NiftyRSI starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	col := collector.NewCollector(fetcher, cfg.Indices, cfg.DataSource.Concurrency, cfg.Zones.Classify)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Watch task and Telegram are both optional
	var tn *notifier.TelegramNotifier
	var n scheduler.Notifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	}
	sched := scheduler.NewScheduler(ctx, col, n, rec, scheduler.WatchConfig{
		Indices:  cfg.WatchIndices(),
		Lookback: time.Duration(cfg.Watch.LookbackDays) * 24 * time.Hour,
		Window:   cfg.Defaults.Window,
	})
	if cfg.Watch.Cron != "" {
		if err := sched.RegisterWatch(cfg.Watch.Cron); err != nil {
			log.Fatalf("[FATAL] register watch task: %v", err)
		}
		sched.Start()
		defer sched.Stop()
	}
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// HTTP server
	start, end, err := cfg.DefaultRange()
	if err != nil {
		log.Fatalf("[FATAL] default range: %v", err)
	}
	srv, err := web.NewServer(col, rec, web.Options{
		DefaultStart:   start,
		DefaultEnd:     end,
		DefaultWindow:  cfg.Defaults.Window,
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	})
	if err != nil {
		log.Fatalf("[FATAL] init web server: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		log.Printf("[INFO] dashboard listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing watch task now")
		go sched.RunWatchNow()
	}

	log.Println("[INFO] NiftyRSI is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] http shutdown: %v", err)
	}
	log.Println("[INFO] NiftyRSI stopped")
}
