package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// unsetAll clears every key Config reads; t.Setenv restores them afterwards.
func unsetAll(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "LOG_LEVEL", "APP_SECRET", "SITE_NAME", "DEFAULT_ROOM", "GUEST_NAME",
		"STORAGE_TYPE", "DATA_SOURCE_NAME", "MEDIA_STORAGE_TYPE", "UPLOAD_DIR", "S3_BUCKET_NAME",
		"MAX_CONTENT_LENGTH", "MODERN_WINDOW", "LITE_WINDOW", "MODERN_REFRESH", "LITE_REFRESH",
		"STRICT_ROOM_COOKIES", "PUBLIC_BASE_URL", "CORS_ALLOWED_ORIGIN",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	req := require.New(t)
	unsetAll(t)

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":3002", cfg.ListenAddr)
	req.Equal("genel", cfg.DefaultRoom)
	req.Equal("misafir", cfg.GuestName)
	req.Equal("memory", cfg.StorageType)
	req.Equal(10*1024*1024, cfg.MaxContentLength)
	req.Equal(100, cfg.ModernWindow)
	req.Equal(60, cfg.LiteWindow)
	req.Equal(12*time.Second, cfg.ModernRefresh)
	req.Equal(20*time.Second, cfg.LiteRefresh)
	req.False(cfg.StrictRoomCookies)
}

func TestLoadOverrides(t *testing.T) {
	req := require.New(t)
	unsetAll(t)
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("LITE_WINDOW", "30")
	t.Setenv("STRICT_ROOM_COOKIES", "true")
	t.Setenv("LITE_REFRESH", "45s")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(":8080", cfg.ListenAddr)
	req.Equal(30, cfg.LiteWindow)
	req.True(cfg.StrictRoomCookies)
	req.Equal(45*time.Second, cfg.LiteRefresh)
}

func TestValidate(t *testing.T) {
	base := Config{MaxContentLength: 1, ModernWindow: 1, LiteWindow: 1, ModernRefresh: time.Second, LiteRefresh: time.Second}
	require.NoError(t, base.Validate())

	tests := map[string]func(c *Config){
		"zero content length": func(c *Config) { c.MaxContentLength = 0 },
		"zero window":         func(c *Config) { c.LiteWindow = 0 },
		"fast refresh":        func(c *Config) { c.ModernRefresh = time.Millisecond },
		"s3 without bucket":   func(c *Config) { c.MediaStorageType = "s3" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			require.Error(t, c.Validate())
		})
	}
}

func TestSecret(t *testing.T) {
	req := require.New(t)

	secret, err := (&Config{AppSecret: "gizli"}).Secret()
	req.NoError(err)
	req.Equal([]byte("gizli"), secret)

	a, err := (&Config{}).Secret()
	req.NoError(err)
	b, err := (&Config{}).Secret()
	req.NoError(err)
	req.Len(a, 16)
	req.NotEqual(a, b)
}
