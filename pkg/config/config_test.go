package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.AllowedOrigins)
	assert.Equal(t, "gpt-3.5-turbo", c.LLM.OpenAIModel)
	assert.Equal(t, 256, c.LLM.MaxTokens)
	assert.InDelta(t, 0.2, c.LLM.Temperature, 1e-9)
	assert.Equal(t, 60, c.RateLimit.PerMinute)
	assert.Equal(t, "0000320193", c.Sources.DefaultCIK)
	assert.Len(t, c.Sources.RSSURLs, 2)
	assert.Equal(t, 100, c.Queue.Size)
}

func TestLoadYAML(t *testing.T) {
	p := writeConfig(t, `
environment: production
server:
  port: 9090
  read_timeout: 5s
llm:
  provider: anthropic
  timeout: 10s
schedule:
  cron: "0 14 * * 1-5"
  tickers: [AAPL, MSFT]
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 5*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "anthropic", c.LLM.Provider)
	assert.Equal(t, 10*time.Second, c.LLM.Timeout)
	assert.Equal(t, []string{"AAPL", "MSFT"}, c.Schedule.Tickers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad provider", "llm:\n  provider: cohere\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"cron without tickers", "schedule:\n  cron: \"@hourly\"\n"},
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SCHEDULE_TICKERS", "AAPL,NVDA")

	c, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.Server.AllowedOrigins)
	assert.Equal(t, "sk-test", c.SummarizerKey())
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, []string{"AAPL", "NVDA"}, c.Schedule.Tickers)
}

func TestSummarizerKeyNone(t *testing.T) {
	c, err := Load(writeConfig(t, "llm:\n  provider: none\n  openai_api_key: sk\n"))
	require.NoError(t, err)
	assert.Empty(t, c.SummarizerKey())
}
