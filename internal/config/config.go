package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort        string
	GRPCPort        string
	UpstreamBaseURL string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	EventSink    string
	KafkaBrokers []string
	NATSURL      string
	OutboxPoll   time.Duration

	JWTSecretKey string
	SignInURL    string

	Pricing              d.Pricing
	ClearAttempts        int
	CartReplaceSupported bool
	Location             *time.Location

	LogLevel  string
	LogFormat string

	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real environment variables
// win over it.
func Load(log logrus.FieldLogger) *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to read .env file")
	}

	defaults := d.DefaultPricing()
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		GRPCPort:        getEnv("GRPC_PORT", "50060"),
		UpstreamBaseURL: getEnv("UPSTREAM_BASE_URL", "http://localhost:8000"),
		RequestTimeout:  getDuration(log, "REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration(log, "SHUTDOWN_TIMEOUT", 10*time.Second),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "storefront"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "storefront"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		EventSink:    strings.ToLower(getEnv("EVENT_SINK", "kafka")),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		OutboxPoll:   getDuration(log, "OUTBOX_POLL_INTERVAL", 2*time.Second),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		SignInURL:    getEnv("SIGN_IN_URL", "/sign-in"),

		Pricing: d.Pricing{
			TaxRate:               getDecimal(log, "TAX_RATE", defaults.TaxRate),
			FreeDeliveryThreshold: getDecimal(log, "FREE_DELIVERY_THRESHOLD", defaults.FreeDeliveryThreshold),
			DeliveryFee:           getDecimal(log, "DELIVERY_FEE", defaults.DeliveryFee),
			Currency:              getEnv("CURRENCY", defaults.Currency),
		},
		ClearAttempts:        getInt(log, "CLEAR_ATTEMPTS", 3),
		CartReplaceSupported: getBool(log, "CART_REPLACE_SUPPORTED", false),
		Location:             getLocation(log, "TIMEZONE"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		BreakerFailures: uint32(getInt(log, "BREAKER_FAILURES", 5)),
		BreakerCooldown: getDuration(log, "BREAKER_COOLDOWN", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(log logrus.FieldLogger, key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid duration, using default")
		return defaultValue
	}
	return v
}

func getInt(log logrus.FieldLogger, key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.WithField("key", key).Warn("invalid integer, using default")
		return defaultValue
	}
	return v
}

func getDecimal(log logrus.FieldLogger, key string, defaultValue decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid decimal, using default")
		return defaultValue
	}
	return v
}

func getBool(log logrus.FieldLogger, key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("invalid boolean, using default")
		return defaultValue
	}
	return v
}

// getLocation resolves an IANA zone name; reservations are interpreted in it.
func getLocation(log logrus.FieldLogger, key string) *time.Location {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(raw)
	if err != nil {
		log.WithField("key", key).WithError(err).Warn("unknown time zone, using local")
		return time.Local
	}
	return loc
}
