package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expo-portal/internal/auth"
	"expo-portal/internal/booking"
	"expo-portal/internal/config"
	"expo-portal/internal/expoapi"
	"expo-portal/internal/kafka"
	"expo-portal/internal/logger"
	"expo-portal/internal/portal"
	"expo-portal/internal/registration"
	"expo-portal/internal/session"
	"expo-portal/internal/visitors"

	"github.com/joho/godotenv"
)

// openStore picks the session backend. The memory store is swept in the
// background until ctx ends.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, func()) {
	if cfg.Session.Store == "redis" {
		client, err := session.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
		}
		return session.NewRedisStore(client), func() { client.Close() }
	}

	store := session.NewMemoryStore()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					log.Debug("SESSION", fmt.Sprintf("Swept %d expired session keys", n))
				}
			}
		}
	}()
	log.Warn("SESSION", "Using in-memory session store; sessions are lost on restart")
	return store, func() {}
}

func openPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) kafka.Publisher {
	if !cfg.Kafka.Enabled {
		log.Info("KAFKA", "Activity events disabled")
		return kafka.NoopPublisher{}
	}
	log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
	if err := kafka.EnsureTopicsExist(ctx, cfg.Kafka.Brokers, kafka.Topics(cfg.Kafka.TopicPrefix), log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		log.Info("KAFKA", "Activity topics ensured successfully")
	}
	return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, log)
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting expo portal initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	publisher := openPublisher(ctx, cfg, log)
	defer publisher.Close()

	api := expoapi.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, log)
	log.Info("API", "Expo API client targeting "+cfg.API.BaseURL)

	manager := session.NewManager(store, cfg.Session.CookieName, cfg.Session.CookieSecure, cfg.Session.TTL, log)
	manager.TokenTTL = auth.TokenTTL(cfg.Session.TTL)

	bookingService := booking.NewService(api, booking.NewGuard(store, cfg.Session.GuardTTL), publisher,
		cfg.Portal.DemoAmount, cfg.Portal.DefaultHall, log)
	registrationService := registration.NewService(api, log)
	visitorService := visitors.NewService(api, cfg.Portal.PublicOrigin, cfg.API.LookupTimeout,
		visitors.NewCardPDFGenerator(cfg.Portal.FontPath, "ECAMEX26"), publisher, log)

	handler, err := portal.NewHandler(api, registrationService, bookingService, visitorService,
		manager, cfg.Portal.DefaultHall, log)
	if err != nil {
		log.Fatal("APP", fmt.Sprintf("Failed to build portal handler: %v", err))
	}

	log.Info("HTTP", "Setting up router and middleware")
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", "🚀 Expo portal running on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Portal started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		log.Info("HTTP", "✅ Expo portal shutdown complete")
	}
}
