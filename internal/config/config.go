package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values for STORE_DRIVER.
const (
	StoreDriverFirestore = "firestore"
	StoreDriverMongo     = "mongo"
	StoreDriverMemory    = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"` // debug, release or test

	StoreDriver string `mapstructure:"STORE_DRIVER"` // firestore, mongo or memory

	// Firestore. Credentials come from a file path or a base64 service account.
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	// MongoDB. MONGODB_URI wins over the user/password/host triple.
	MongoURI      string `mapstructure:"MONGODB_URI"`
	MongoUser     string `mapstructure:"DB_USER"`
	MongoPassword string `mapstructure:"DB_PASSWORD"`
	MongoHost     string `mapstructure:"MONGODB_HOST"`
	MongoDatabase string `mapstructure:"MONGODB_DATABASE"`

	// Stripe checkout and the URLs it redirects back to.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	SiteDomain          string `mapstructure:"SITE_DOMAIN"`
	ClientURL           string `mapstructure:"CLIENT_URL"`

	// Premium plan pricing. The list price is converted with EXCHANGE_RATE
	// into SETTLEMENT_CURRENCY before it is sent to Stripe.
	PremiumProductName string  `mapstructure:"PREMIUM_PRODUCT_NAME"`
	PremiumPriceAmount float64 `mapstructure:"PREMIUM_PRICE_AMOUNT"`   // In major units of PremiumCurrency
	PremiumCurrency    string  `mapstructure:"PREMIUM_PRICE_CURRENCY"`
	SettlementCurrency string  `mapstructure:"SETTLEMENT_CURRENCY"`
	ExchangeRate       float64 `mapstructure:"EXCHANGE_RATE"`          // Settlement units per list unit
	CheckoutRateLimit  float64 `mapstructure:"CHECKOUT_RATE_LIMIT_RPS"`
	CheckoutRateBurst  int     `mapstructure:"CHECKOUT_RATE_LIMIT_BURST"`

	RedisURL     string        `mapstructure:"REDIS_URL"` // Optional; enables the role cache
	RoleCacheTTL time.Duration `mapstructure:"ROLE_CACHE_TTL"`

	AMQPURL string `mapstructure:"AMQP_URL"` // Optional; enables domain event publishing
}

// envKeys are bound explicitly so Unmarshal sees them even without a config file.
var envKeys = []string{
	"PORT", "GIN_MODE", "STORE_DRIVER",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"MONGODB_URI", "DB_USER", "DB_PASSWORD", "MONGODB_HOST", "MONGODB_DATABASE",
	"STRIPE_SECRET_KEY", "STRIPE_SECR", "STRIPE_WEBHOOK_SECRET", "SITE_DOMAIN", "CLIENT_URL",
	"PREMIUM_PRODUCT_NAME", "PREMIUM_PRICE_AMOUNT", "PREMIUM_PRICE_CURRENCY", "SETTLEMENT_CURRENCY",
	"EXCHANGE_RATE", "CHECKOUT_RATE_LIMIT_RPS", "CHECKOUT_RATE_LIMIT_BURST",
	"REDIS_URL", "ROLE_CACHE_TTL", "AMQP_URL",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a local .env file is loaded first; variables already
// present in the environment win. CONFIG_FILE may point at an additional
// YAML/JSON/TOML file whose values sit below the environment.
func LoadConfig() (*Config, error) {
	// Load .env for local development; a missing file is not an error.
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	v.SetDefault("PORT", "3000")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORE_DRIVER", StoreDriverFirestore)
	v.SetDefault("MONGODB_DATABASE", "life_notes_db")
	v.SetDefault("PREMIUM_PRODUCT_NAME", "Premium Plan – Lifetime")
	v.SetDefault("PREMIUM_PRICE_AMOUNT", 1500)
	v.SetDefault("PREMIUM_PRICE_CURRENCY", "bdt")
	v.SetDefault("SETTLEMENT_CURRENCY", "usd")
	v.SetDefault("EXCHANGE_RATE", 0.0083)
	v.SetDefault("CHECKOUT_RATE_LIMIT_RPS", 1)
	v.SetDefault("CHECKOUT_RATE_LIMIT_BURST", 5)
	v.SetDefault("ROLE_CACHE_TTL", "5m")

	// Bind environment variables
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	// Read the optional config file
	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	// Older deployments export the Stripe key as STRIPE_SECR.
	if cfg.StripeSecretKey == "" {
		cfg.StripeSecretKey = v.GetString("STRIPE_SECR")
	}
	// CORS falls back to the site the checkout redirects to.
	if cfg.ClientURL == "" {
		cfg.ClientURL = cfg.SiteDomain
	}
	cfg.SiteDomain = strings.TrimRight(cfg.SiteDomain, "/")
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields for the selected store driver and the checkout flow.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when STORE_DRIVER=firestore")
		}
	case StoreDriverMongo:
		if c.MongoConnectionURI() == "" {
			return errors.New("MONGODB_URI (or DB_USER, DB_PASSWORD and MONGODB_HOST) is required when STORE_DRIVER=mongo")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want firestore, mongo or memory)", c.StoreDriver)
	}

	// Checkout cannot work without Stripe credentials and a redirect domain.
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if c.SiteDomain == "" {
		return errors.New("SITE_DOMAIN is required")
	}
	if c.PremiumPriceAmount <= 0 {
		return errors.New("PREMIUM_PRICE_AMOUNT must be positive")
	}
	if c.ExchangeRate <= 0 {
		return errors.New("EXCHANGE_RATE must be positive")
	}
	if c.SettlementCurrency == "" {
		return errors.New("SETTLEMENT_CURRENCY is required")
	}
	return nil
}

// MongoConnectionURI returns MONGODB_URI, or builds an Atlas SRV URI from the
// DB_USER/DB_PASSWORD/MONGODB_HOST triple. It returns "" when neither is set.
func (c *Config) MongoConnectionURI() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	if c.MongoUser == "" || c.MongoPassword == "" || c.MongoHost == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=LifeNotes",
		url.QueryEscape(c.MongoUser), url.QueryEscape(c.MongoPassword), c.MongoHost)
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
