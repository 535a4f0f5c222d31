package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/TejjP/zyero-lead-accelerator/internal/admin"
	"github.com/TejjP/zyero-lead-accelerator/internal/api"
	"github.com/TejjP/zyero-lead-accelerator/internal/availability"
	"github.com/TejjP/zyero-lead-accelerator/internal/booking"
	"github.com/TejjP/zyero-lead-accelerator/internal/config"
	"github.com/TejjP/zyero-lead-accelerator/internal/google"
	"github.com/TejjP/zyero-lead-accelerator/internal/metrics"
	"github.com/TejjP/zyero-lead-accelerator/internal/notify"
	"github.com/TejjP/zyero-lead-accelerator/internal/store"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("ZYERO_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	client := store.NewClient(cfg.Store.BaseURL, cfg.Store.AdminToken)
	if cfg.Store.RatePerSecond > 0 {
		client.SetRateLimit(rate.Limit(cfg.Store.RatePerSecond), cfg.Store.RateBurst)
	}

	if cfg.Redis.Address != "" && cfg.Store.CacheTTLSeconds > 0 {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		client.UseRedisCache(rdb, cfg.StoreCacheTTL())
	}

	avail := availability.NewService(client, availability.NewCache(), availability.NewOverlay(), &logger)

	var notifier booking.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram notifier")
		}
		notifier = tg
	}

	flows := map[string]*booking.Flow{}
	for _, opts := range flowVariants() {
		flows[opts.Name] = booking.NewFlow(opts, client, avail, notifier, &logger)
	}

	console := admin.NewConsole(client, avail, cfg.Admin.Password, &logger)
	sessions := booking.NewSessionStore(30 * time.Minute)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Google.CredentialsFile != "" && cfg.Google.SpreadsheetID != "" {
		creds, err := os.ReadFile(cfg.Google.CredentialsFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("read sheets credentials")
		}
		sheetsSvc, err := google.NewSheetsService(ctx, creds, cfg.Google.SpreadsheetID)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets reader")
		}
		go reconcileLoop(ctx, sheetsSvc, console, &logger)
	}

	go sessionCleanupLoop(ctx, sessions, &logger)

	if cfg.Monitoring.HealthCheckPort > 0 {
		go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, &logger)
	}

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	router := api.NewRouter(api.RouterConfig{
		Availability: avail,
		Flows:        flows,
		Sessions:     sessions,
		Console:      console,
		Logger:       &logger,
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: router}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Int("port", cfg.Server.Port).Msg("booking coordination server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}

	// Let detached fetches and refreshes finish before exiting.
	avail.Wait()
	console.Wait()
}

// flowVariants configures the public booking pages. They share the flow
// machinery and differ only in redirect target and qualification set.
func flowVariants() []booking.Options {
	return []booking.Options{
		{
			Name:            "strategy-call",
			SuccessRedirect: "/thank-you",
			ExtraFields: []booking.ExtraField{
				{Key: "clientType", Label: "Role"},
				{Key: "marketingStatus", Label: "Ads"},
				{Key: "budget", Label: "Budget"},
			},
		},
		{
			Name:            "calendar-call",
			SuccessRedirect: "/thank-you",
			ExtraFields: []booking.ExtraField{
				{Key: "dealsClosed", Label: "Deals"},
				{Key: "clientSourcing", Label: "Sourcing"},
				{Key: "targetMarket", Label: "Market"},
				{Key: "role", Label: "Role"},
			},
		},
		{
			Name:            "book-calendar",
			SuccessRedirect: "/thank-you",
			ExtraFields: []booking.ExtraField{
				{Key: "dealsClosed", Label: "Deals"},
				{Key: "clientSourcing", Label: "Sourcing"},
				{Key: "targetMarket", Label: "Market"},
				{Key: "role", Label: "Role"},
			},
		},
	}
}

func sessionCleanupLoop(ctx context.Context, sessions *booking.SessionStore, logger *zerolog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := sessions.Cleanup(); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("expired booking sessions cleaned up")
			}
		}
	}
}

// reconcileLoop reads the booking sheet directly and compares it with
// the listing served by the automation endpoint. A mismatch usually
// means the endpoint's own cache is lagging behind a mutation.
func reconcileLoop(ctx context.Context, sheetsSvc *google.SheetsService, console *admin.Console, logger *zerolog.Logger) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rows, err := sheetsSvc.ListBookings(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("sheet reconcile read failed")
				continue
			}
			active := google.FilterActive(rows)
			cached := console.Bookings()
			if len(active) != len(cached) {
				logger.Warn().
					Int("sheet_rows", len(active)).
					Int("store_rows", len(cached)).
					Msg("booking sheet and store listing disagree")
			}
		}
	}
}

// startHealthServer runs a standalone liveness listener for deployments
// that probe a separate port.
func startHealthServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
