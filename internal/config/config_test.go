package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, v := range []string{"PORT", "API_BASE_URL", "CURRENCY", "REQUEST_TIMEOUT", "STORAGE", "FAKE_API"} {
		t.Setenv(v, "")
	}
	c := config.New()

	require.Equal(t, ":8081", c.GetPort())
	require.Equal(t, "http://localhost:8080/api/v1", c.GetAPIBaseURL())
	require.Equal(t, "NPR", c.GetCurrency())
	require.Equal(t, 10*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.StorageMemory, c.GetStorageBackend())
	require.False(t, c.GetFakeAPI())
}

func TestConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("API_BASE_URL", "https://shop.example.com/api/v1/")
	t.Setenv("CURRENCY", "usd")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("STORAGE", "REDIS")
	t.Setenv("FAKE_API", "true")
	c := config.New()

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://shop.example.com/api/v1", c.GetAPIBaseURL())
	require.Equal(t, "USD", c.GetCurrency())
	require.Equal(t, 3*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.StorageRedis, c.GetStorageBackend())
	require.True(t, c.GetFakeAPI())

	t.Run("invalid values fall back", func(t *testing.T) {
		t.Setenv("CURRENCY", "RUPEE")
		t.Setenv("REQUEST_TIMEOUT", "soon")
		t.Setenv("STORAGE", "disk")
		require.Equal(t, "NPR", c.GetCurrency())
		require.Equal(t, 10*time.Second, c.GetRequestTimeout())
		require.Equal(t, config.StorageMemory, c.GetStorageBackend())
	})
}
