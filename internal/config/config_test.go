package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		Timezone:           "Local",
		DefaultPeriod:      30,
		ChartWidth:         640,
		ChartHeight:        400,
		RedrawDelay:        50 * time.Millisecond,
		ReloadWorkerCount:  2,
		ReloadQueueSize:    32,
		RenderCacheMaxCost: 1 << 20,
		SessionIdleTTL:     30 * time.Minute,
	}
}

func TestValidate_SessionIdleTTL(t *testing.T) {
	cfg := validConfig()
	cfg.SessionIdleTTL = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_IDLE_TTL")
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_Period(t *testing.T) {
	tests := []struct {
		name    string
		period  int
		wantErr bool
	}{
		{name: "zero", period: 0, wantErr: true},
		{name: "too long", period: 366, wantErr: true},
		{name: "week", period: 7},
		{name: "year", period: 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.DefaultPeriod = tt.period

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "DEFAULT_PERIOD")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_BackendURLs(t *testing.T) {
	cfg := validConfig()
	cfg.BackendURLs = []string{"http://localhost:3000", "127.0.0.1:3000"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"127.0.0.1:3000"`)
	assert.NotContains(t, err.Error(), `"http://localhost:3000"`)
}

func TestValidate_LogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.LogFormat = "JSON"
	assert.NoError(t, cfg.Validate())

	cfg.LogFormat = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		LogLevel:    "INVALID",
		Timezone:    "Mars/Olympus_Mons",
		RedrawDelay: -time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "TIMEZONE")
	assert.Contains(t, errStr, "DEFAULT_PERIOD")
	assert.Contains(t, errStr, "CHART_WIDTH")
	assert.Contains(t, errStr, "REDRAW_DELAY")
	assert.Contains(t, errStr, "RELOAD_WORKER_COUNT")
	assert.Contains(t, errStr, "RELOAD_QUEUE_SIZE")
	assert.Contains(t, errStr, "RENDER_CACHE_MAX_COST")
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, time.Local, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.Local, cfg.Location())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("BACKEND_URLS", "http://localhost:3000/, http://127.0.0.1:3000")
	t.Setenv("REDRAW_DELAY", "75ms")
	t.Setenv("RELOAD_QUEUE_SIZE", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.BackendURLs)
	assert.Equal(t, 75*time.Millisecond, cfg.RedrawDelay)
	assert.Equal(t, 32, cfg.ReloadQueueSize)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}
