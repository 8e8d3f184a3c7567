package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"wacms/internal/config"
	"wacms/internal/handler"
	"wacms/internal/logger"
	"wacms/internal/queue"
	"wacms/internal/store"
	"wacms/internal/webhook"
)

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	// Conversation files
	files, err := store.NewFilePersister(cfg.Storage.ConversationsDir)
	if err != nil {
		log.Fatalf("Failed to open conversations directory: %v", err)
	}
	conversations := webhook.NewConversationStore(files)

	// Server config file
	configDir, configFile := filepath.Split(cfg.Storage.ServerConfigFile)
	if configDir == "" {
		configDir = "."
	}
	configPersister, err := store.NewFilePersister(configDir)
	if err != nil {
		log.Fatalf("Failed to open config directory: %v", err)
	}
	serverConfig, err := webhook.NewConfigStore(configPersister, strings.TrimSuffix(configFile, ".json"))
	if err != nil {
		log.Fatalf("Failed to load server config: %v", err)
	}
	log.Printf("✅ Server config loaded from %s", cfg.Storage.ServerConfigFile)

	// Optional feed mirroring
	var (
		conn      *queue.Connection
		publisher webhook.EventPublisher
	)
	if cfg.RabbitMQEnabled() {
		conn, err = queue.NewConnection(cfg.GetRabbitMQURL())
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer conn.Close()
		log.Println("✅ Connected to RabbitMQ")

		p, err := queue.NewPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to create publisher: %v", err)
		}
		publisher = p
	} else {
		log.Warn("⚠️  RABBITMQ_HOST not set, messages will not be mirrored to the feed")
	}

	receiver := webhook.NewReceiver(conversations, publisher)
	webhookHandler := handler.NewWebhookHandler(receiver, serverConfig)
	static := handler.NewSPAHandler(cfg.Storage.StaticDir)

	// Create server
	port := ":" + cfg.Server.WebhookPort
	srv := &http.Server{
		Addr:              port,
		Handler:           handler.NewWebhookRouter(webhookHandler, static),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Webhook Server starting on port %s", port)
		log.Printf("📍 Webhook URL: http://localhost%s/webhook", port)
		log.Printf("📂 Conversations: %s", cfg.Storage.ConversationsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Error stopping server")
	}

	log.Println("✅ Webhook Server stopped")
}
