package config

import (
	"testing"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "rental-listing-service", cfg.ServiceName)
	assert.Equal(t, BackendMock, cfg.ListingBackend)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.True(t, cfg.StrictValidation)
	assert.Equal(t, time.Hour, cfg.ListingCacheTTL)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Empty(t, cfg.NATSURL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LISTING_BACKEND", "Remote-Store")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DEFAULT_PAGE_SIZE", "5")
	t.Setenv("STRICT_VALIDATION", "false")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, BackendRemoteStore, cfg.ListingBackend)
	assert.Equal(t, "9000", cfg.HTTPPort)
	assert.Equal(t, 5, cfg.DefaultPageSize)
	assert.False(t, cfg.StrictValidation)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.MinIOUseSSL)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "unknown backend", env: map[string]string{"LISTING_BACKEND": "firestore"}, want: "LISTING_BACKEND"},
		{name: "empty secret", env: map[string]string{"JWT_SECRET": ""}, want: "JWT_SECRET"},
		{name: "page size above max", env: map[string]string{"DEFAULT_PAGE_SIZE": "200"}, want: "DEFAULT_PAGE_SIZE"},
		{name: "remote without mongo", env: map[string]string{"LISTING_BACKEND": "remote-store", "MONGO_URI": ""}, want: "MONGO_URI"},
		{name: "admin email only", env: map[string]string{"ADMIN_EMAIL": "root@example.com"}, want: "ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(logger.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
