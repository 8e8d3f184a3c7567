package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"wacms/internal/config"
	"wacms/internal/handler"
	"wacms/internal/logger"
	"wacms/internal/models"
	"wacms/internal/queue"
	"wacms/internal/repository"
	"wacms/internal/service"
	"wacms/internal/store"
	"wacms/internal/ws"
)

const version = "1.0.0"

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local state
	persister, err := store.NewFilePersister(cfg.Storage.StateDir)
	if err != nil {
		log.Fatalf("Failed to open state directory: %v", err)
	}
	st, err := store.New(persister)
	if err != nil {
		log.Fatalf("Failed to load state: %v", err)
	}
	log.Printf("✅ State loaded from %s", cfg.Storage.StateDir)

	// Optional database
	var (
		db       *sql.DB
		pinger   service.Pinger
		archive  repository.LogArchiveRepository
		feedRepo repository.FeedMessageRepository
	)
	if cfg.DatabaseEnabled() {
		db, err = sql.Open("postgres", cfg.GetDatabaseDSN())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("Failed to ping database: %v", err)
		}
		log.Println("✅ Connected to database")

		pinger = db
		archive = repository.NewLogArchiveRepository(db)
		feedRepo = repository.NewFeedMessageRepository(db)
	} else {
		log.Warn("⚠️  POSTGRES_HOST not set, log archive and conversation feed disabled")
	}

	// Initialize services
	gateway := service.NewGatewayService(&http.Client{Timeout: cfg.WhatsApp.Timeout}, cfg.WhatsApp.GraphURL, st)
	templateSvc := service.NewTemplateService(st, gateway)
	contactSvc := service.NewContactService(st)
	campaignSvc := service.NewCampaignService(st, gateway, templateSvc, archive)
	logSvc := service.NewLogService(st)
	settingsSvc := service.NewSettingsService(st, gateway)

	queueURL := ""
	if cfg.RabbitMQEnabled() {
		queueURL = cfg.GetRabbitMQURL()
	}
	healthSvc := service.NewHealthService(pinger, queueURL, st, version)
	log.Println("✅ Services initialized")

	if st.Settings().HasCatalogCredentials() {
		syncCtx, syncCancel := context.WithTimeout(ctx, cfg.WhatsApp.Timeout)
		if _, err := templateSvc.SyncProviderTemplates(syncCtx); err != nil {
			log.WithError(err).Warn("⚠️  Initial template sync failed")
		}
		syncCancel()
	}

	handlers := handler.APIHandlers{
		Contacts:  handler.NewContactHandler(contactSvc),
		Templates: handler.NewTemplateHandler(templateSvc),
		Campaigns: handler.NewCampaignHandler(campaignSvc),
		Preview:   handler.NewPreviewHandler(campaignSvc),
		Logs:      handler.NewLogHandler(logSvc),
		Settings:  handler.NewSettingsHandler(settingsSvc),
		Health:    handler.NewHealthHandler(healthSvc),
	}

	// Conversation feed with live push
	var (
		conn     *queue.Connection
		consumer *queue.Consumer
	)
	if feedRepo != nil {
		feedSvc := service.NewFeedService(feedRepo)
		if err := feedSvc.Load(ctx); err != nil {
			log.Fatalf("Failed to load conversation feed: %v", err)
		}

		hub := ws.NewHub(func() *ws.Event {
			return &ws.Event{Type: ws.EventThreads, Data: feedSvc.Threads()}
		})
		go hub.Run(ctx)
		feedSvc.OnChange(hub.NotifyThreads)

		handlers.Feed = handler.NewFeedHandler(feedSvc)
		handlers.WebSocket = hub.ServeWs
		log.Println("✅ Conversation feed loaded")

		if cfg.RabbitMQEnabled() {
			conn, err = queue.NewConnection(queueURL)
			if err != nil {
				log.Fatalf("Failed to connect to RabbitMQ: %v", err)
			}
			defer conn.Close()
			log.Println("✅ Connected to RabbitMQ")

			consumer, err = queue.NewConsumer(conn, cfg.RabbitMQ.Exchange, "", func(_ context.Context, event models.FeedEvent) error {
				feedSvc.Apply(event)
				return nil
			})
			if err != nil {
				log.Fatalf("Failed to create consumer: %v", err)
			}
			if err := consumer.Start(ctx); err != nil {
				log.Fatalf("Failed to start consumer: %v", err)
			}
			log.Printf("✅ Subscribed to feed events on exchange %s (queue %s)", cfg.RabbitMQ.Exchange, consumer.QueueName())
		}
	}

	// Create server
	port := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              port,
		Handler:           handler.NewAPIRouter(handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 API Server starting on port %s", port)
		log.Printf("📍 Health check: http://localhost%s/health", port)
		log.Printf("🌍 Environment: %s", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error stopping server")
	}
	if err := campaignSvc.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Campaign runs did not finish in time")
	}
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			log.WithError(err).Error("Error stopping consumer")
		}
	}
	cancel()

	log.Println("✅ API Server stopped")
}
