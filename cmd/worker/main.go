package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"wacms/internal/config"
	"wacms/internal/logger"
	"wacms/internal/metrics"
	"wacms/internal/models"
	"wacms/internal/queue"
	"wacms/internal/repository"
)

// archiveQueue is the durable queue bound to the feed exchange
const archiveQueue = "feed_archive"

func main() {
	// Load .env file (ignore error in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.Env)

	if !cfg.DatabaseEnabled() || !cfg.RabbitMQEnabled() {
		log.Fatal("Worker requires POSTGRES_HOST and RABBITMQ_HOST")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("✅ Connected to database")

	repo := repository.NewFeedMessageRepository(db)

	// Connect to RabbitMQ
	conn, err := queue.NewConnection(cfg.GetRabbitMQURL())
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	log.Println("✅ Connected to RabbitMQ")

	consumer, err := queue.NewConsumer(conn, cfg.RabbitMQ.Exchange, archiveQueue, newArchiveHandler(repo))
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}
	if err := consumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer: %v", err)
	}
	log.Printf("✅ Worker started, consuming from queue: %s", archiveQueue)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down gracefully...")

	if err := consumer.Stop(); err != nil {
		log.WithError(err).Error("Error stopping consumer")
	}
	cancel()

	log.Println("✅ Worker stopped")
}

// newArchiveHandler persists every feed event into the messages table.
// A returned error requeues the delivery once.
func newArchiveHandler(repo repository.FeedMessageRepository) queue.EventHandler {
	return func(ctx context.Context, event models.FeedEvent) error {
		msg := event.Message
		entry := logrus.WithFields(logrus.Fields{
			"type":  event.Type,
			"id":    msg.ID,
			"phone": msg.PhoneNumber,
		})

		inserted, err := repo.Upsert(ctx, &msg)
		if err != nil {
			entry.WithError(err).Error("❌ Failed to archive feed event")
			return err
		}

		metrics.FeedEvents.WithLabelValues(string(event.Type)).Inc()
		entry.WithField("inserted", inserted).Debug("📨 Feed event archived")
		return nil
	}
}
