package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steveyiyo/avatar-voice/internal/config"
)

func TestLoadDefaultsWithKeys(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("AZURE_API_KEY", "a-key")
	t.Setenv("PORT", "")
	t.Setenv("AUDIO_STORE", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "canadacentral", cfg.AzureRegion)
	assert.Equal(t, "en-US-JennyNeural", cfg.VoiceName)
	assert.Equal(t, config.StoreInline, cfg.AudioStore)
	assert.Equal(t, 120*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "http://localhost:5000", cfg.PublicBaseURL)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
}

func TestLoadFileThenEnv(t *testing.T) {
	tomlData := `
port = "9000"
gemini_api_key = "from-file"
azure_api_key = "from-file"
audio_store = "s3"
s3_bucket = "aidatingapp-audio"
request_timeout_seconds = 30
cors_origins = ["https://app.example.com"]
`
	path := filepath.Join(t.TempDir(), "avatar.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlData), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("AZURE_API_KEY", "")
	t.Setenv("PORT", "")
	t.Setenv("AUDIO_STORE", "")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "4")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "from-env", cfg.GeminiAPIKey)
	assert.Equal(t, "from-file", cfg.AzureAPIKey)
	assert.Equal(t, config.StoreS3, cfg.AudioStore)
	assert.Equal(t, "aidatingapp-audio", cfg.S3Bucket)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 4, cfg.MaxConcurrentRequests)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GEMINI_API_KEY", "g")
	t.Setenv("AZURE_API_KEY", "a")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg.GeminiAPIKey = "g"
	cfg.AzureAPIKey = "a"
	require.NoError(t, cfg.Validate())

	cfg.AudioStore = config.StoreS3
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg.AudioStore = "ftp"
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
}

func TestConfigTOMLRoundTripKeys(t *testing.T) {
	t.Parallel()

	var cfg config.Config
	err := toml.Unmarshal([]byte(`nats_url = "nats://10.0.0.1:4222"
nats_bucket = "AUDIO"
audio_ttl_seconds = 0`), &cfg)
	require.NoError(t, err)
	assert.Equal(t, "nats://10.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, "AUDIO", cfg.NATSBucket)
	assert.Zero(t, cfg.AudioTTL())
}
