package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8083", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "listing-images", cfg.Storage.Bucket)
	assert.Equal(t, int64(32<<20), cfg.Storage.MaxUploadBytes)
	assert.True(t, cfg.Storage.CleanupOrphans)
	assert.Equal(t, "log", cfg.Notify.Driver)
	assert.Equal(t, model.DefaultLocation, cfg.DefaultLocation)
	assert.Equal(t, model.DefaultCategories, cfg.Categories)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/market")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("PUBLIC_BASE_URL", "https://market.example/")
	t.Setenv("CATEGORIES", "All, electronics ,vehicles")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CLEANUP_ORPHANS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "https://market.example", cfg.PublicBaseURL)
	assert.Equal(t, []string{"All", "electronics", "vehicles"}, cfg.Categories)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.Kafka.Brokers)
	assert.False(t, cfg.Storage.CleanupOrphans)
	require.NoError(t, cfg.Validate())

	cat, err := cfg.Catalog()
	require.NoError(t, err)
	assert.True(t, cat.Contains("vehicles"))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage_bucket: photos\ncategories:\n  - Everything\n  - boats\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "photos", cfg.Storage.Bucket)
	assert.Equal(t, []string{"Everything", "boats"}, cfg.Categories)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "MONGO_URI")

	cfg.DatabaseURL = "postgres://x"
	cfg.Mongo.URI = "mongodb://x"
	cfg.Notify.Driver = "smtp"
	assert.Error(t, cfg.Validate())
	cfg.Notify.SMTP.Host = "smtp.gmail.com"
	cfg.Notify.SMTP.From = "shop@example.com"
	assert.NoError(t, cfg.Validate())

	cfg.Notify.Driver = "pigeon"
	assert.Error(t, cfg.Validate())
}
