package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"whalegen/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[log]
level = "debug"

[discovery]
api_key = "key"
engine_id = "2fcd0024cf7d6bee6"
limit = 5

[storage]
root = "/var/lib/whalegen"
endpoint = "http://localhost:9000"

[pixelate]
block_size = 10

[batch]
failure_policy = "ABORT"
workers = 4

[http]
timeout = "5s"
retry_attempts = 1

[telegram]
bot_token = "token"
chat_id = -1001
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.NoError(t, Read(writeConfig(t, sampleConfig)))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "key", cfg.Discovery.APIKey)
	assert.Equal(t, "2fcd0024cf7d6bee6", cfg.Discovery.EngineID)
	assert.Equal(t, "whale", cfg.Discovery.Query)
	assert.Equal(t, "nft", cfg.Discovery.ExcludeTerms)
	assert.Equal(t, 5, cfg.Discovery.Limit)
	assert.Equal(t, "/var/lib/whalegen", cfg.Storage.Root)
	assert.Equal(t, "whalecoin-img", cfg.Storage.ImageBucket)
	assert.Equal(t, "whalecoin-md", cfg.Storage.MetadataBucket)
	assert.Equal(t, "http://localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, 400, cfg.Pixelate.CanvasWidth)
	assert.Equal(t, 300, cfg.Pixelate.CanvasHeight)
	assert.Equal(t, 10, cfg.Pixelate.BlockSize)
	assert.Equal(t, domain.Abort, cfg.Batch.FailurePolicy)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, uint64(1), cfg.HTTP.RetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.HTTP.RetryBaseDelay)
	assert.Equal(t, "token", cfg.Telegram.BotToken)
	assert.Equal(t, int64(-1001), cfg.Telegram.ChatID)
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	SetDefaults()
	viper.Set("batch.urls", []string{"https://img.example.org/0.png"})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 6, cfg.Pixelate.BlockSize)
	assert.Equal(t, domain.Continue, cfg.Batch.FailurePolicy)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Equal(t, "https://whalecoin-img.s3.us-west-1.amazonaws.com", cfg.Storage.ImageBaseURI)
	assert.Equal(t, "us-west-1", cfg.Storage.Region)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"https://img.example.org/0.png"}, cfg.Batch.URLs)
}

func TestEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("WHALEGEN_PIXELATE_BLOCK_SIZE", "12")

	require.NoError(t, Read(writeConfig(t, sampleConfig)))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Pixelate.BlockSize)
}

func TestReadMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	err := Read(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Discovery: Discovery{APIKey: "key", EngineID: "cx"},
			Storage:   Storage{ImageBucket: "img", MetadataBucket: "md", ImageBaseURI: "https://cdn"},
			Pixelate:  Pixelate{CanvasWidth: 400, CanvasHeight: 300, BlockSize: 6},
			Batch:     Batch{FailurePolicy: domain.Continue, Workers: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "zero block size",
			mutate:  func(c *Config) { c.Pixelate.BlockSize = 0 },
			wantErr: true,
		},
		{
			name:    "block larger than canvas",
			mutate:  func(c *Config) { c.Pixelate.BlockSize = 301 },
			wantErr: true,
		},
		{
			name:    "empty canvas",
			mutate:  func(c *Config) { c.Pixelate.CanvasWidth = 0 },
			wantErr: true,
		},
		{
			name:    "unknown policy",
			mutate:  func(c *Config) { c.Batch.FailurePolicy = "retry" },
			wantErr: true,
		},
		{
			name:    "negative start index",
			mutate:  func(c *Config) { c.Batch.StartIndex = -1 },
			wantErr: true,
		},
		{
			name:    "no workers",
			mutate:  func(c *Config) { c.Batch.Workers = 0 },
			wantErr: true,
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Storage.MetadataBucket = "" },
			wantErr: true,
		},
		{
			name:    "missing discovery credentials",
			mutate:  func(c *Config) { c.Discovery.APIKey = "" },
			wantErr: true,
		},
		{
			name: "explicit urls need no discovery credentials",
			mutate: func(c *Config) {
				c.Discovery = Discovery{}
				c.Batch.URLs = []string{"https://img.example.org/0.png"}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)

			err := c.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateBlockSizeError(t *testing.T) {
	c := &Config{
		Storage:  Storage{ImageBucket: "img", MetadataBucket: "md", ImageBaseURI: "https://cdn"},
		Pixelate: Pixelate{CanvasWidth: 400, CanvasHeight: 300, BlockSize: -2},
		Batch:    Batch{FailurePolicy: domain.Abort, Workers: 1, URLs: []string{"u"}},
	}

	assert.ErrorIs(t, c.Validate(), domain.ErrUnsupportedBlockSize)
}
