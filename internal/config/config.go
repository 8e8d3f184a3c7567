package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	RabbitMQ RabbitMQConfig
	WhatsApp WhatsAppConfig
	Storage  StorageConfig
	Env      string
	LogLevel string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        string
	WebhookPort string
}

// DatabaseConfig holds PostgreSQL configuration.
// An empty Host disables the log archive and the conversation feed.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RabbitMQConfig holds RabbitMQ configuration.
// An empty Host disables feed event publishing and consumption.
type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Exchange string
}

// WhatsAppConfig holds settings for the provider HTTP client
type WhatsAppConfig struct {
	GraphURL string
	Timeout  time.Duration
}

// StorageConfig holds local file locations
type StorageConfig struct {
	StateDir         string
	ConversationsDir string
	ServerConfigFile string
	StaticDir        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			WebhookPort: getEnv("WEBHOOK_PORT", "3001"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "wacms"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			DBName:   getEnv("POSTGRES_DB", "wacms_db"),
		},
		RabbitMQ: RabbitMQConfig{
			Host:     getEnv("RABBITMQ_HOST", ""),
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_DEFAULT_USER", "guest"),
			Password: getEnv("RABBITMQ_DEFAULT_PASS", "guest"),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "message_events"),
		},
		WhatsApp: WhatsAppConfig{
			GraphURL: getEnv("WHATSAPP_GRAPH_URL", "https://graph.facebook.com"),
			Timeout:  getEnvAsDuration("WHATSAPP_HTTP_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			StateDir:         getEnv("STATE_DIR", "./data"),
			ConversationsDir: getEnv("CONVERSATIONS_DIR", "./conversations"),
			ServerConfigFile: getEnv("SERVER_CONFIG_FILE", "./server-config.json"),
			StaticDir:        getEnv("STATIC_DIR", "./dist"),
		},
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if config.DatabaseEnabled() && config.Database.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD is required when POSTGRES_HOST is set")
	}
	for name, port := range map[string]string{
		"PORT":         config.Server.Port,
		"WEBHOOK_PORT": config.Server.WebhookPort,
	} {
		if _, err := strconv.Atoi(port); err != nil {
			return nil, fmt.Errorf("%s must be numeric, got %q", name, port)
		}
	}

	return config, nil
}

// DatabaseEnabled reports whether PostgreSQL is configured
func (c *Config) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// RabbitMQEnabled reports whether RabbitMQ is configured
func (c *Config) RabbitMQEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// GetDatabaseDSN returns PostgreSQL connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetRabbitMQURL returns RabbitMQ connection URL
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		c.RabbitMQ.User,
		c.RabbitMQ.Password,
		c.RabbitMQ.Host,
		c.RabbitMQ.Port,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// getEnv gets environment variable or returns default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration parses values like "10s" or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
