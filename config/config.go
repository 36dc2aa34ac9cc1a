package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Supported store backends, selected with DB_TYPE
const (
	DBTypeMongo    = "mongo"
	DBTypePostgres = "postgres"
	DBTypeMemory   = "memory"
)

type Config struct {
	Port   string
	Env    string
	Level  string
	DBType string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	PostgresDSN        string
	PostgresReplicaDSN string

	RedisURL string

	AcceptedOrigins  []string
	// TrustedProxies may set the client address through X-Forwarded-For / X-Real-IP
	TrustedProxies   []netip.Prefix
	AdminJWTSecret   string
	ContactRateLimit string
	MetricsEnabled   bool

	ResendAPIKey      string
	ResendFromEmail   string
	ContactRecipients []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MigrateLegacy bool
	SchemaReport  bool
}

// LoadDotEnv loads a .env file from the working directory if there is one
func LoadDotEnv() error {
	return godotenv.Load()
}

// New returns a viper instance reading the environment and, when CONFIG_FILE
// names one, a config file. Environment variables win over the file.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		_ = v.ReadInConfig()
	}
	return v
}

// Load builds the typed configuration. Connection strings have no defaults:
// the selected backend's must be supplied.
func Load() (*Config, error) {
	return FromViper(New())
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:   GetString(v, "PORT", "8080"),
		Env:    GetString(v, "APP_ENV", "development"),
		Level:  GetString(v, "LOG_LEVEL", "info"),
		DBType: strings.ToLower(GetString(v, "DB_TYPE", DBTypeMongo)),

		MongoURI:        GetString(v, "MONGODB_URI", ""),
		MongoDatabase:   GetString(v, "MONGODB_DATABASE", ""),
		MongoCollection: GetString(v, "MONGODB_COLLECTION", "projects"),

		PostgresDSN:        GetString(v, "DATABASE_URL", ""),
		PostgresReplicaDSN: GetString(v, "DATABASE_REPLICA_URL", ""),

		RedisURL: GetString(v, "REDIS_URL", ""),

		AcceptedOrigins:  GetStrings(v, "ACCEPTED_ORIGINS", []string{"*"}),
		AdminJWTSecret:   GetString(v, "ADMIN_JWT_SECRET", ""),
		ContactRateLimit: GetString(v, "CONTACT_RATE_LIMIT", "5-M"),
		MetricsEnabled:   GetBool(v, "METRICS_ENABLED", true),

		ResendAPIKey:      GetString(v, "RESEND_API_KEY", ""),
		ResendFromEmail:   GetString(v, "RESEND_FROM_EMAIL", ""),
		ContactRecipients: GetStrings(v, "CONTACT_RECIPIENTS", nil),

		ReadTimeout:  time.Duration(GetInt(v, "READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout: time.Duration(GetInt(v, "WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:  time.Duration(GetInt(v, "IDLE_TIMEOUT_SECONDS", 60)) * time.Second,

		MigrateLegacy: GetBool(v, "MIGRATE_LEGACY", false),
		SchemaReport:  GetBool(v, "SCHEMA_REPORT", false),
	}

	trustedProxies, err := parseTrustedProxies(GetStrings(v, "TRUSTED_PROXIES", nil))
	if err != nil {
		return nil, err
	}
	cfg.TrustedProxies = trustedProxies

	switch cfg.DBType {
	case DBTypeMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when DB_TYPE=%s", DBTypeMongo)
		}
		if cfg.MongoDatabase == "" {
			cfg.MongoDatabase = databaseFromURI(cfg.MongoURI, "catalog")
		}
	case DBTypePostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", DBTypePostgres)
		}
	case DBTypeMemory:
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
	}

	if cfg.MigrateLegacy && cfg.DBType != DBTypeMongo {
		return nil, fmt.Errorf("MIGRATE_LEGACY is only supported with DB_TYPE=%s", DBTypeMongo)
	}
	if cfg.SchemaReport && cfg.DBType != DBTypePostgres {
		return nil, fmt.Errorf("SCHEMA_REPORT is only supported with DB_TYPE=%s", DBTypePostgres)
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("0.0.0.0:%s", c.Port)
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ContactForwardingEnabled reports whether contact messages are emailed
func (c *Config) ContactForwardingEnabled() bool {
	return c.ResendAPIKey != "" && c.ResendFromEmail != "" && len(c.ContactRecipients) > 0
}

func GetString(v *viper.Viper, key string, defaultValue string) string {
	if v == nil || !v.IsSet(key) {
		return defaultValue
	}
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	return defaultValue
}

func GetInt(v *viper.Viper, key string, defaultValue int) int {
	if v == nil || !v.IsSet(key) {
		return defaultValue
	}
	asInt, err := cast.ToIntE(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return defaultValue
	}
	return asInt
}

func GetBool(v *viper.Viper, key string, defaultValue bool) bool {
	if v == nil || !v.IsSet(key) {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(v.GetString(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

// GetStrings reads a comma separated list
func GetStrings(v *viper.Viper, key string, defaultValue []string) []string {
	raw := GetString(v, key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// parseTrustedProxies reads CIDR ranges; a bare address is a single host range
func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %q is not an address or CIDR range", entry)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// databaseFromURI returns the database named in a mongodb:// URI path
func databaseFromURI(uri, fallback string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return fallback
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return fallback
}
