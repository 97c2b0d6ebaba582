package server

import (
	"testing"

	"github.com/philly/imageblog/internal/adapters/media"
	"github.com/philly/imageblog/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env
	t.Setenv("PORT", "8080")
	t.Setenv("STORAGE_DRIVER", "Badger")
	t.Setenv("BADGER_PATH", "")
	t.Setenv("MEDIA_DRIVER", "local")
	t.Setenv("MEDIA_MAX_BYTES", "1024")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	config, err := LoadConfig(logger.NewBootstrapLogger())
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.ServerAddress)
	assert.Equal(t, StorageDriverBadger, config.StorageDriver)
	assert.Empty(t, config.BadgerPath)
	assert.Equal(t, MediaDriverLocal, config.MediaDriver)
	assert.Equal(t, int64(1024), config.MediaMaxBytes)
	assert.Equal(t, 2.5, config.RateLimitRPS)
	assert.Equal(t, 10, config.RateLimitBurst)
	assert.True(t, config.TrustProxy)
	assert.Equal(t, "http://localhost:8080", config.PublicBaseURL)
	assert.Equal(t, media.DefaultCloudinaryFolder, config.CloudinaryFolder)
}

func TestLoadConfig_CloudinaryNeedsCredentials(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "badger")
	t.Setenv("MEDIA_DRIVER", "cloudinary")
	t.Setenv("CLOUD_NAME", "")

	_, err := LoadConfig(logger.NewBootstrapLogger())
	assert.ErrorContains(t, err, "CLOUD_NAME")
}

func TestConfig_Normalize(t *testing.T) {
	c := Config{ServerAddress: "0.0.0.0:9000", PublicBaseURL: "https://blog.example.com/"}
	c.normalize()

	assert.Equal(t, "0.0.0.0:9000", c.ServerAddress)
	assert.Equal(t, "https://blog.example.com", c.PublicBaseURL)
	assert.Equal(t, int64(media.DefaultMaxBytes), c.MediaMaxBytes)

	c = Config{}
	c.normalize()
	assert.Equal(t, ":5000", c.ServerAddress)
	assert.Equal(t, "http://localhost:5000", c.PublicBaseURL)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		StorageDriver: StorageDriverPostgres,
		DatabaseURL:   "postgres://localhost/blog",
		MediaDriver:   MediaDriverLocal,
		MediaLocalDir: "media",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "unknown storage", mutate: func(c *Config) { c.StorageDriver = "sqlite" }, want: "STORAGE_DRIVER"},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseURL = "" }, want: "DATABASE_URL"},
		{name: "mongo without database", mutate: func(c *Config) {
			c.StorageDriver = StorageDriverMongo
			c.MongoURI = "mongodb://localhost"
		}, want: "MONGO_DATABASE"},
		{name: "unknown media", mutate: func(c *Config) { c.MediaDriver = "s3" }, want: "MEDIA_DRIVER"},
		{name: "local without dir", mutate: func(c *Config) { c.MediaLocalDir = "" }, want: "MEDIA_LOCAL_DIR"},
		{name: "issuer without jwks", mutate: func(c *Config) { c.JWTIssuer = "https://issuer" }, want: "JWKS_ENDPOINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}
