package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is loaded once at startup and handed to every component that needs it.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Restaurant  RestaurantConfig  `yaml:"restaurant"`
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
	Billing     BillingConfig     `yaml:"billing"`
	Tabs        TabsConfig        `yaml:"tabs"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Seed        SeedConfig        `yaml:"seed"`
	LogFormat   string            `yaml:"log_format"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	GinMode        string   `yaml:"gin_mode"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, mysql or sqlite
	DSN    string `yaml:"dsn"`
}

// RestaurantConfig is the public-facing identity of the restaurant.
type RestaurantConfig struct {
	Name                string `yaml:"name"`
	BaseURL             string `yaml:"base_url"`
	Instagram           string `yaml:"instagram"`
	WhatsApp            string `yaml:"whatsapp"`
	StatementDescriptor string `yaml:"statement_descriptor"`
}

type MercadoPagoConfig struct {
	AccessToken       string `yaml:"access_token"`
	BaseURL           string `yaml:"base_url"`
	WebhookSecret     string `yaml:"webhook_secret"`
	Sandbox           bool   `yaml:"sandbox"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	DefaultPayerEmail string `yaml:"default_payer_email"`
}

func (m MercadoPagoConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

type BillingConfig struct {
	ServiceChargeRate float64 `yaml:"service_charge_rate"`
}

type TabsConfig struct {
	// AutoCloseOnApproval marks a tab paid (and frees its table) once the
	// processor confirms the payment. When false staff close tabs manually.
	AutoCloseOnApproval bool `yaml:"auto_close_on_approval"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// Enabled reports whether staff routes require a bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type SeedConfig struct {
	Enabled bool `yaml:"enabled"`
	Tables  int  `yaml:"tables"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "debug",
			TrustedProxies: []string{"127.0.0.1"},
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "comanda.db",
		},
		Restaurant: RestaurantConfig{
			Name:                "Comanda Digital",
			BaseURL:             "http://localhost:3000",
			StatementDescriptor: "COMANDA DIGITAL",
		},
		MercadoPago: MercadoPagoConfig{
			BaseURL:           "https://api.mercadopago.com",
			TimeoutSeconds:    5,
			DefaultPayerEmail: "customer@example.com",
		},
		Billing: BillingConfig{
			ServiceChargeRate: 0.10,
		},
		Tabs: TabsConfig{
			AutoCloseOnApproval: true,
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		RateLimit: RateLimitConfig{
			RPS:   20,
			Burst: 40,
		},
		Seed: SeedConfig{
			Tables: 10,
		},
		LogFormat: "text",
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional in every environment
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Restaurant.BaseURL = strings.TrimRight(cfg.Restaurant.BaseURL, "/")
	cfg.MercadoPago.BaseURL = strings.TrimRight(cfg.MercadoPago.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.GinMode, "GIN_MODE")
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = splitList(v)
	}

	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")

	setString(&c.Restaurant.Name, "RESTAURANT_NAME")
	setString(&c.Restaurant.BaseURL, "BASE_URL")
	setString(&c.Restaurant.Instagram, "RESTAURANT_INSTAGRAM")
	setString(&c.Restaurant.WhatsApp, "RESTAURANT_WHATSAPP")
	setString(&c.Restaurant.StatementDescriptor, "STATEMENT_DESCRIPTOR")

	setString(&c.MercadoPago.AccessToken, "MERCADO_PAGO_ACCESS_TOKEN")
	setString(&c.MercadoPago.BaseURL, "MERCADO_PAGO_BASE_URL")
	setString(&c.MercadoPago.WebhookSecret, "MERCADO_PAGO_WEBHOOK_SECRET")
	setString(&c.MercadoPago.DefaultPayerEmail, "MERCADO_PAGO_PAYER_EMAIL")

	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")

	setString(&c.LogFormat, "LOG_FORMAT")

	for _, b := range []struct {
		dst *bool
		key string
	}{
		{&c.MercadoPago.Sandbox, "MERCADO_PAGO_SANDBOX"},
		{&c.Tabs.AutoCloseOnApproval, "AUTO_CLOSE_PAID_TABS"},
		{&c.Seed.Enabled, "SEED_ON_START"},
	} {
		if err := setBool(b.dst, b.key); err != nil {
			return err
		}
	}

	for _, i := range []struct {
		dst *int
		key string
	}{
		{&c.MercadoPago.TimeoutSeconds, "MERCADO_PAGO_TIMEOUT_SECONDS"},
		{&c.Auth.TokenTTLHours, "JWT_TTL_HOURS"},
		{&c.RateLimit.Burst, "RATE_LIMIT_BURST"},
		{&c.Seed.Tables, "SEED_TABLES"},
	} {
		if err := setInt(i.dst, i.key); err != nil {
			return err
		}
	}

	if err := setFloat(&c.Billing.ServiceChargeRate, "SERVICE_CHARGE_RATE"); err != nil {
		return err
	}
	return setFloat(&c.RateLimit.RPS, "RATE_LIMIT_RPS")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported GIN_MODE %q", c.Server.GinMode)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.Restaurant.BaseURL == "" {
		return errors.New("BASE_URL is not set")
	}
	if c.Billing.ServiceChargeRate < 0 || c.Billing.ServiceChargeRate > 1 {
		return fmt.Errorf("SERVICE_CHARGE_RATE must be between 0 and 1, got %v", c.Billing.ServiceChargeRate)
	}
	if c.MercadoPago.TimeoutSeconds <= 0 {
		return errors.New("MERCADO_PAGO_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	*dst = f
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
