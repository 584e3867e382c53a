package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	StoreInline = "inline"
	StoreMemory = "memory"
	StoreS3     = "s3"
	StoreNATS   = "nats"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Port                  string   `toml:"port"`
	GinMode               string   `toml:"gin_mode"`
	LogLevel              string   `toml:"log_level"`
	LogFile               string   `toml:"log_file"`
	LogMaxSizeMB          int      `toml:"log_max_size_mb"`
	LogMaxBackups         int      `toml:"log_max_backups"`
	RequestTimeoutSeconds int      `toml:"request_timeout_seconds"`
	MaxConcurrentRequests int      `toml:"max_concurrent_requests"`
	CORSOrigins           []string `toml:"cors_origins"`

	GeminiAPIKey string `toml:"gemini_api_key"`
	GeminiModel  string `toml:"gemini_model"`

	AzureAPIKey        string `toml:"azure_api_key"`
	AzureRegion        string `toml:"azure_region"`
	VoiceName          string `toml:"voice_name"`
	VoiceLang          string `toml:"voice_lang"`
	DefaultPersonality string `toml:"default_personality"`

	AudioStore      string `toml:"audio_store"`
	PublicBaseURL   string `toml:"public_base_url"`
	AudioTTLSeconds int    `toml:"audio_ttl_seconds"`
	S3Bucket        string `toml:"s3_bucket"`
	S3Region        string `toml:"s3_region"`
	S3PublicBaseURL string `toml:"s3_public_base_url"`
	NATSURL         string `toml:"nats_url"`
	NATSBucket      string `toml:"nats_bucket"`
}

func Defaults() Config {
	return Config{
		Port:                  "5000",
		GinMode:               "release",
		LogLevel:              "info",
		LogMaxSizeMB:          50,
		LogMaxBackups:         3,
		RequestTimeoutSeconds: 120,
		MaxConcurrentRequests: 1,
		CORSOrigins:           []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		GeminiModel:           "gemini-2.0-flash",
		AzureRegion:           "canadacentral",
		VoiceName:             "en-US-JennyNeural",
		VoiceLang:             "en-US",
		DefaultPersonality:    "friendly",
		AudioStore:            StoreInline,
		AudioTTLSeconds:       3600,
		S3Region:              "us-east-1",
		NATSURL:               "nats://127.0.0.1:4222",
		NATSBucket:            "AVATAR_AUDIO",
	}
}

// Load starts from Defaults, applies the TOML file named by CONFIG_FILE when
// set, then lets environment variables override.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	return cfg, cfg.Validate()
}

func applyEnv(c *Config) error {
	c.Port = getenv("PORT", c.Port)
	c.GinMode = getenv("GIN_MODE", c.GinMode)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getenv("LOG_FILE", c.LogFile)
	c.GeminiAPIKey = getenv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getenv("GEMINI_MODEL", c.GeminiModel)
	c.AzureAPIKey = getenv("AZURE_API_KEY", c.AzureAPIKey)
	c.AzureRegion = getenv("AZURE_REGION", c.AzureRegion)
	c.VoiceName = getenv("VOICE_NAME", c.VoiceName)
	c.VoiceLang = getenv("VOICE_LANG", c.VoiceLang)
	c.DefaultPersonality = getenv("DEFAULT_PERSONALITY", c.DefaultPersonality)
	c.AudioStore = strings.ToLower(getenv("AUDIO_STORE", c.AudioStore))
	c.PublicBaseURL = getenv("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.S3Bucket = getenv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getenv("S3_REGION", c.S3Region)
	c.S3PublicBaseURL = getenv("S3_PUBLIC_BASE_URL", c.S3PublicBaseURL)
	c.NATSURL = getenv("NATS_URL", c.NATSURL)
	c.NATSBucket = getenv("NATS_BUCKET", c.NATSBucket)
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	var err error
	if c.LogMaxSizeMB, err = getint("LOG_MAX_SIZE_MB", c.LogMaxSizeMB); err != nil {
		return err
	}
	if c.LogMaxBackups, err = getint("LOG_MAX_BACKUPS", c.LogMaxBackups); err != nil {
		return err
	}
	if c.MaxConcurrentRequests, err = getint("MAX_CONCURRENT_REQUESTS", c.MaxConcurrentRequests); err != nil {
		return err
	}
	if c.RequestTimeoutSeconds, err = getint("REQUEST_TIMEOUT", c.RequestTimeoutSeconds); err != nil {
		return err
	}
	if c.AudioTTLSeconds, err = getint("AUDIO_TTL", c.AudioTTLSeconds); err != nil {
		return err
	}
	return nil
}

// Validate checks that every selected backend has what it needs.
func (c Config) Validate() error {
	var errs []error
	if c.GeminiAPIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.AzureAPIKey == "" {
		errs = append(errs, errors.New("AZURE_API_KEY is required"))
	}
	if c.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if c.AudioTTLSeconds < 0 {
		errs = append(errs, errors.New("AUDIO_TTL must not be negative"))
	}
	if c.MaxConcurrentRequests < 0 {
		errs = append(errs, errors.New("MAX_CONCURRENT_REQUESTS must not be negative"))
	}
	switch c.AudioStore {
	case StoreInline, StoreMemory:
	case StoreS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 audio store"))
		}
	case StoreNATS:
		if c.NATSURL == "" || c.NATSBucket == "" {
			errs = append(errs, errors.New("NATS_URL and NATS_BUCKET are required for the nats audio store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIO_STORE %q", c.AudioStore))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// AudioTTL is how long served clips live; zero keeps them.
func (c Config) AudioTTL() time.Duration {
	return time.Duration(c.AudioTTLSeconds) * time.Second
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, k, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
