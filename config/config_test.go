package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"MONGODB_URI": "mongodb://localhost:27017",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DBTypeMongo, cfg.DBType)
	assert.Equal(t, "catalog", cfg.MongoDatabase)
	assert.Equal(t, "projects", cfg.MongoCollection)
	assert.Equal(t, []string{"*"}, cfg.AcceptedOrigins)
	assert.Equal(t, "5-M", cfg.ContactRateLimit)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
	assert.False(t, cfg.ContactForwardingEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestFromViper_DatabaseFromURIPath(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"MONGODB_URI": "mongodb+srv://user:pw@cluster0.example.net/roofing?retryWrites=true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "roofing", cfg.MongoDatabase)
}

func TestFromViper_RequiresBackendConnectionString(t *testing.T) {
	_, err := FromViper(newViper(nil))
	assert.ErrorContains(t, err, "MONGODB_URI")

	_, err = FromViper(newViper(map[string]any{"DB_TYPE": "postgres"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = FromViper(newViper(map[string]any{"DB_TYPE": "sqlite"}))
	assert.ErrorContains(t, err, "unsupported DB_TYPE")
}

func TestFromViper_MemoryAndLists(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"DB_TYPE":               "Memory",
		"ACCEPTED_ORIGINS":      "https://a.example, https://b.example,",
		"CONTACT_RECIPIENTS":    "owner@example.com",
		"RESEND_API_KEY":        "re_123",
		"RESEND_FROM_EMAIL":     "site@example.com",
		"METRICS_ENABLED":       "false",
		"WRITE_TIMEOUT_SECONDS": "30",
	}))
	require.NoError(t, err)

	assert.Equal(t, DBTypeMemory, cfg.DBType)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AcceptedOrigins)
	assert.True(t, cfg.ContactForwardingEnabled())
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
}

func TestFromViper_MaintenanceRunsNeedTheirBackend(t *testing.T) {
	_, err := FromViper(newViper(map[string]any{
		"DB_TYPE":        "memory",
		"MIGRATE_LEGACY": "true",
	}))
	assert.ErrorContains(t, err, "MIGRATE_LEGACY")

	_, err = FromViper(newViper(map[string]any{
		"MONGODB_URI":   "mongodb://localhost:27017",
		"SCHEMA_REPORT": "yes",
	}))
	assert.ErrorContains(t, err, "SCHEMA_REPORT")
}

func TestFromViper_TrustedProxies(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"DB_TYPE":         "memory",
		"TRUSTED_PROXIES": "10.0.0.0/8, 192.168.1.7/24, 203.0.113.9, ::1",
	}))
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.0/24"),
		netip.MustParsePrefix("203.0.113.9/32"),
		netip.MustParsePrefix("::1/128"),
	}, cfg.TrustedProxies)

	cfg, err = FromViper(newViper(map[string]any{"DB_TYPE": "memory"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies)

	_, err = FromViper(newViper(map[string]any{
		"DB_TYPE":         "memory",
		"TRUSTED_PROXIES": "10.0.0.0/8,proxy.internal",
	}))
	assert.ErrorContains(t, err, "proxy.internal")
}

func TestGetInt(t *testing.T) {
	v := newViper(map[string]any{"N": "abc", "S": " 42 ", "I": 30})
	assert.Equal(t, 7, GetInt(v, "N", 7))
	assert.Equal(t, 3, GetInt(v, "MISSING", 3))
	assert.Equal(t, 42, GetInt(v, "S", 0))
	assert.Equal(t, 30, GetInt(v, "I", 0))
}
