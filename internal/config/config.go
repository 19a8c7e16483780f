package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DB          DBConfig
	Server      ServerConfig
	Session     SessionConfig
	OIDC        OIDCConfig
	Auth        AuthConfig
	Preferences PreferencesConfig
	Redis       RedisConfig
	Sentry      SentryConfig
	Locale      LocaleConfig
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type ServerConfig struct {
	Port        string
	FrontendURL string
	BackendURL  string
	BodyLimitMB int
}

type SessionConfig struct {
	Secret          string
	ExpirationHours int
	CookieName      string
	CookieSecure    bool
}

type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       string
}

// Enabled reports whether enough of the provider is configured to attempt a login.
func (o OIDCConfig) Enabled() bool {
	return o.IssuerURL != "" && o.ClientID != ""
}

type AuthConfig struct {
	// AllowedDomains holds lower-cased email domains whose first login
	// provisions an Observer account.
	AllowedDomains []string
}

type PreferencesConfig struct {
	Backend string
}

type RedisConfig struct {
	URL string
}

type SentryConfig struct {
	DSN              string
	Environment      string
	TracesSampleRate float64
}

type LocaleConfig struct {
	Currency string
	Language string
}

const defaultSessionSecret = "change-me-in-production"

func Load() *Config {
	backendURL := strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080/api"), "/")

	return &Config{
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "collabtrack"),
			Password:   getEnv("DB_PASSWORD", "collabtrack_secret"),
			Name:       getEnv("DB_NAME", "collabtrack"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "collabtrack.db"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
			BackendURL:  backendURL,
			BodyLimitMB: getEnvAsInt("SERVER_BODY_LIMIT_MB", 4),
		},
		Session: SessionConfig{
			Secret:          getEnv("SESSION_SECRET", defaultSessionSecret),
			ExpirationHours: getEnvAsInt("SESSION_EXPIRATION_HOURS", 24*7),
			CookieName:      getEnv("SESSION_COOKIE_NAME", "collabtrack_session"),
			CookieSecure:    getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		OIDC: OIDCConfig{
			IssuerURL:    strings.TrimRight(getEnv("OIDC_ISSUER_URL", ""), "/"),
			ClientID:     getEnv("OIDC_CLIENT_ID", ""),
			ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("OIDC_REDIRECT_URL", backendURL+"/auth/callback"),
			Scopes:       getEnv("OIDC_SCOPES", "openid,email,profile"),
		},
		Auth: AuthConfig{
			AllowedDomains: normalizeDomains(getEnvAsList("AUTH_ALLOWED_DOMAINS", nil)),
		},
		Preferences: PreferencesConfig{
			Backend: strings.ToLower(getEnv("PREFERENCES_BACKEND", "db")),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Environment:      getEnv("APP_ENV", "development"),
			TracesSampleRate: getEnvAsFloat("SENTRY_TRACES_SAMPLE_RATE", 0.2),
		},
		Locale: LocaleConfig{
			Currency: strings.ToUpper(getEnv("LOCALE_CURRENCY", "EUR")),
			Language: getEnv("LOCALE_LANGUAGE", "de"),
		},
	}
}

// Validate rejects configurations that must not reach production.
func (c *Config) Validate() error {
	if c.Sentry.Environment == "production" && c.Session.Secret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	switch c.Preferences.Backend {
	case "db", "redis":
	default:
		return errors.New("PREFERENCES_BACKEND must be db or redis")
	}
	return nil
}

func normalizeDomains(values []string) []string {
	domains := make([]string, 0, len(values))
	for _, value := range values {
		domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "@"))
		if domain != "" {
			domains = append(domains, domain)
		}
	}
	return domains
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
