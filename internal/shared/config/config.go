package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// StoreDriver selects the persistence backend: "postgres" or "memory"
	StoreDriver string

	// EventTransport selects how outbox events reach collaborators: "kafka" or "inprocess"
	EventTransport string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Email     EmailConfig
	Stripe    StripeConfig
	Engine    EngineConfig
	Policy    DefaultPolicyConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	CacheTTL time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	BookingRequests int           `json:"booking_requests"`
	VenueRequests   int           `json:"venue_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// KafkaConfig holds broker configuration for the outbox relay and its consumers
type KafkaConfig struct {
	Brokers             []string
	EventsTopic         string
	NotificationGroupID string
	PaymentGroupID      string
	ConsumerWorkers     int
}

// EmailConfig holds email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// StripeConfig holds escrow gateway configuration. An empty key selects the logging gateway.
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// EngineConfig holds the admission and waitlist tunables
type EngineConfig struct {
	OfferTTL              time.Duration
	ClockSkewTolerance    time.Duration
	MaxBookingHorizon     time.Duration
	DefaultDuration       time.Duration
	OverlapBuffer         time.Duration
	AdmissionMaxAttempts  int
	AdmissionRetryBackoff time.Duration
	LockTTL               time.Duration
	LockWait              time.Duration
	PromotionTimeout      time.Duration
	SweepInterval         time.Duration
	SweepBatchSize        int
	OutboxPollInterval    time.Duration
	OutboxBatchSize       int
	OutboxMaxAttempts     int
}

// DefaultPolicyConfig is applied to venues that have no cancellation policy row
type DefaultPolicyConfig struct {
	CancellationEnabled       bool
	FreeCancellationHours     int
	PenaltyPercent            int
	ModificationEnabled       bool
	ModificationDeadlineHours int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", "postgres")),
		EventTransport: strings.ToLower(getEnv("EVENT_TRANSPORT", "kafka")),

		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "venuebook_db"),
			User:     getEnv("DB_USER", "venuebook_user"),
			Password: getEnv("DB_PASSWORD", "venuebook_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},

		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("REDIS_CACHE_TTL", 10*time.Minute),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			BookingRequests: getIntEnv("RATE_LIMIT_BOOKING_REQUESTS", 20),
			VenueRequests:   getIntEnv("RATE_LIMIT_VENUE_REQUESTS", 120),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		Kafka: KafkaConfig{
			Brokers:             getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventsTopic:         getEnv("KAFKA_EVENTS_TOPIC", "venuebook.reservation-events"),
			NotificationGroupID: getEnv("KAFKA_NOTIFICATION_GROUP_ID", "venuebook-notifications"),
			PaymentGroupID:      getEnv("KAFKA_PAYMENT_GROUP_ID", "venuebook-payments"),
			ConsumerWorkers:     getIntEnv("KAFKA_CONSUMER_WORKERS", 2),
		},

		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getIntEnv("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@venuebook.app"),
			FromName:     getEnv("SMTP_FROM_NAME", "Venuebook"),
		},

		Stripe: StripeConfig{
			SecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:  getEnv("STRIPE_CURRENCY", "eur"),
		},

		Engine: EngineConfig{
			OfferTTL:              getDurationEnv("OFFER_TTL", 30*time.Minute),
			ClockSkewTolerance:    getDurationEnv("CLOCK_SKEW_TOLERANCE", 5*time.Minute),
			MaxBookingHorizon:     getDurationEnv("MAX_BOOKING_HORIZON", 365*24*time.Hour),
			DefaultDuration:       getDurationEnv("DEFAULT_RESERVATION_DURATION", 2*time.Hour),
			OverlapBuffer:         getDurationEnv("OVERLAP_BUFFER", 6*time.Hour),
			AdmissionMaxAttempts:  getIntEnv("ADMISSION_MAX_ATTEMPTS", 3),
			AdmissionRetryBackoff: getDurationEnv("ADMISSION_RETRY_BACKOFF", 25*time.Millisecond),
			LockTTL:               getDurationEnv("LOCK_TTL", 5*time.Second),
			LockWait:              getDurationEnv("LOCK_WAIT", 2*time.Second),
			PromotionTimeout:      getDurationEnv("PROMOTION_TIMEOUT", 30*time.Second),
			SweepInterval:         getDurationEnv("WAITLIST_SWEEP_INTERVAL", 1*time.Minute),
			SweepBatchSize:        getIntEnv("WAITLIST_SWEEP_BATCH_SIZE", 100),
			OutboxPollInterval:    getDurationEnv("OUTBOX_POLL_INTERVAL", 2*time.Second),
			OutboxBatchSize:       getIntEnv("OUTBOX_BATCH_SIZE", 100),
			OutboxMaxAttempts:     getIntEnv("OUTBOX_MAX_ATTEMPTS", 5),
		},

		Policy: DefaultPolicyConfig{
			CancellationEnabled:       getBoolEnv("DEFAULT_CANCELLATION_ENABLED", true),
			FreeCancellationHours:     getIntEnv("DEFAULT_FREE_CANCELLATION_HOURS", 24),
			PenaltyPercent:            getIntEnv("DEFAULT_PENALTY_PERCENT", 50),
			ModificationEnabled:       getBoolEnv("DEFAULT_MODIFICATION_ENABLED", true),
			ModificationDeadlineHours: getIntEnv("DEFAULT_MODIFICATION_DEADLINE_HOURS", 24),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// UsesMemoryStore reports whether repositories are backed by the in-memory store
func (c *Config) UsesMemoryStore() bool {
	return c.StoreDriver == "memory"
}

// UsesKafka reports whether outbox events are relayed through Kafka
func (c *Config) UsesKafka() bool {
	return c.EventTransport == "kafka"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
