package config

import (
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultMaxUploadSize = 2 * 1024 * 1024 * 1024 // 2GB, MTProto bot ceiling
	DefaultWorkers       = 16
)

type Config struct {
	BotToken   string `envconfig:"BOT_TOKEN" required:"true"`
	AppID      int    `envconfig:"APP_ID" required:"true"`
	AppHash    string `envconfig:"APP_HASH" required:"true"`
	SessionDir string `envconfig:"SESSION_DIR" default:"data"`

	// DevID receives "contact the developer" messages and may run /stats.
	DevID int64 `envconfig:"DEV_ID"`

	VKStoryToken string `envconfig:"ACCESS_TOKEN"`
	VKMusicToken string `envconfig:"ACCESS_TOKEN_MUSIC"`

	YtdlpPath    string `envconfig:"YTDLP_PATH" default:"yt-dlp"`
	YtdlpCookies string `envconfig:"YTDLP_COOKIES"`
	TempDir      string `envconfig:"TEMP_DIR"`

	MaxUploadSize int64 `envconfig:"MAX_UPLOAD_SIZE" default:"2147483648"`
	Workers       int   `envconfig:"WORKERS" default:"16"`

	UploadThreadsMin int `envconfig:"UPLOAD_THREADS_MIN" default:"4"`
	UploadThreadsMax int `envconfig:"UPLOAD_THREADS_MAX" default:"16"`

	FormatsTimeout  time.Duration `envconfig:"FORMATS_TIMEOUT" default:"1m"`
	MetadataTimeout time.Duration `envconfig:"METADATA_TIMEOUT" default:"30s"`
	DownloadTimeout time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"10m"`
	SearchTimeout   time.Duration `envconfig:"SEARCH_TIMEOUT" default:"30s"`
	DeliveryTimeout time.Duration `envconfig:"DELIVERY_TIMEOUT" default:"10m"`
	PromptTimeout   time.Duration `envconfig:"PROMPT_TIMEOUT" default:"15s"`

	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	MediaCacheTTL time.Duration `envconfig:"MEDIA_CACHE_TTL" default:"24h"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	RateLimit float64 `envconfig:"RATE_LIMIT" default:"2"`
	RateBurst int     `envconfig:"RATE_BURST" default:"5"`

	CleanupSchedule string        `envconfig:"CLEANUP_SCHEDULE" default:"@every 30m"`
	CleanupMaxAge   time.Duration `envconfig:"CLEANUP_MAX_AGE" default:"1h"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

// Load reads envFile (if present) into the process environment and then
// decodes the environment into a Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", envFile)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxUploadSize < 0 {
		return errors.New("MAX_UPLOAD_SIZE must not be negative")
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = DefaultMaxUploadSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return errors.New("RATE_LIMIT and RATE_BURST must be positive")
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	return nil
}
