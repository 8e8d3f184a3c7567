package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "WEBHOOK_PORT", "POSTGRES_HOST", "POSTGRES_PASSWORD", "RABBITMQ_HOST",
		"WHATSAPP_GRAPH_URL", "WHATSAPP_HTTP_TIMEOUT", "STATE_DIR", "ENV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "3001", cfg.Server.WebhookPort)
	assert.Equal(t, "https://graph.facebook.com", cfg.WhatsApp.GraphURL)
	assert.Equal(t, 10*time.Second, cfg.WhatsApp.Timeout)
	assert.Equal(t, "./conversations", cfg.Storage.ConversationsDir)
	assert.False(t, cfg.DatabaseEnabled())
	assert.False(t, cfg.RabbitMQEnabled())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_DatabaseRequiresPassword(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "db")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
}

func TestLoad_RejectsNonNumericPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
}

func TestLoad_ConnectionStrings(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("RABBITMQ_HOST", "mq")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=wacms password=secret dbname=wacms_db sslmode=disable", cfg.GetDatabaseDSN())
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.GetRabbitMQURL())
	assert.True(t, cfg.DatabaseEnabled())
	assert.True(t, cfg.RabbitMQEnabled())
}

func TestGetEnvAsDuration(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "duration string", value: "3s", want: 3 * time.Second},
		{name: "bare seconds", value: "7", want: 7 * time.Second},
		{name: "garbage falls back", value: "soon", want: time.Minute},
		{name: "empty falls back", value: "", want: time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("WACMS_TEST_DURATION", tc.value)
			assert.Equal(t, tc.want, getEnvAsDuration("WACMS_TEST_DURATION", time.Minute))
		})
	}
}
