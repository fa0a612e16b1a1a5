package config

import (
	"fmt"
	"time"

	"sohbet-lite/credentials"

	"github.com/Netflix/go-env"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string `env:"LISTEN_ADDR,default=:3002"`
	LogLevel   string `env:"LOG_LEVEL,default=info"`

	// AppSecret keys every password digest. When empty a random secret is
	// generated at startup and all room cookies die with the process.
	AppSecret   string `env:"APP_SECRET"`
	SiteName    string `env:"SITE_NAME,default=Sohbet"`
	DefaultRoom string `env:"DEFAULT_ROOM,default=genel"`
	GuestName   string `env:"GUEST_NAME,default=misafir"`

	StorageType      string `env:"STORAGE_TYPE,default=memory"`
	DataSourceName   string `env:"DATA_SOURCE_NAME"`
	MediaStorageType string `env:"MEDIA_STORAGE_TYPE,default=memory"`
	UploadDir        string `env:"UPLOAD_DIR,default=uploads"`
	S3BucketName     string `env:"S3_BUCKET_NAME"`

	MaxContentLength int           `env:"MAX_CONTENT_LENGTH,default=10485760"`
	ModernWindow     int           `env:"MODERN_WINDOW,default=100"`
	LiteWindow       int           `env:"LITE_WINDOW,default=60"`
	ModernRefresh    time.Duration `env:"MODERN_REFRESH,default=12s"`
	LiteRefresh      time.Duration `env:"LITE_REFRESH,default=20s"`

	StrictRoomCookies bool   `env:"STRICT_ROOM_COOKIES,default=false"`
	PublicBaseURL     string `env:"PUBLIC_BASE_URL"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxContentLength <= 0 {
		return fmt.Errorf("config error: MAX_CONTENT_LENGTH must be positive")
	}
	if c.ModernWindow <= 0 || c.LiteWindow <= 0 {
		return fmt.Errorf("config error: message windows must be positive")
	}
	if c.ModernRefresh < time.Second || c.LiteRefresh < time.Second {
		return fmt.Errorf("config error: refresh intervals must be at least one second")
	}
	if c.MediaStorageType == "s3" && c.S3BucketName == "" {
		return fmt.Errorf("config error: S3_BUCKET_NAME must be set for s3 media storage")
	}
	return nil
}

// Secret returns the digest key. An unset APP_SECRET yields a fresh random key.
func (c *Config) Secret() ([]byte, error) {
	if c.AppSecret != "" {
		return []byte(c.AppSecret), nil
	}
	secret, err := credentials.GenerateSecret()
	if err != nil {
		return nil, err
	}
	logrus.Warn("APP_SECRET is not set, using a random secret; room cookies will not survive a restart")
	return secret, nil
}
