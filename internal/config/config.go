package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-notify-agent/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	// Storefront backend the agent polls. Tokens are issued by the external
	// auth collaborator; the agent only carries them.
	BackendBaseURL string `validate:"required,url"`
	AdminToken     string
	ClientToken    string
	RequestTimeout time.Duration

	// Channels holds the audiences this agent instance mounts.
	Channels            []string `validate:"required,min=1,dive,oneof=admin client"`
	AdminPollInterval   time.Duration
	ClientPollInterval  time.Duration
	FetchLimit          int `validate:"min=1,max=50"`
	PermissionStatePath string

	// Public key used to verify storefront-issued JWTs on the local API.
	JWTPublicKeyPath string

	AllowedOrigins []string // CORS allowed origins

	Escalation Escalation
}

// Escalation configures out-of-band delivery for admin alerts that stay
// unacknowledged past Delay. Zero Delay disables escalation.
type Escalation struct {
	Delay        time.Duration
	SMSNumber    string
	EmailTo      string
	SNSRegion    string
	AWSEndpoint  string // empty in prod, LocalStack URL in dev
	AWSAccessKey string
	AWSSecretKey string
	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
}

// Load reads all configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort: getEnv("APP_PORT", "4600"),
		AppEnv:  getEnv("APP_ENV", "development"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8080/api"),
		AdminToken:     getEnv("ADMIN_BEARER_TOKEN", ""),
		ClientToken:    getEnv("CLIENT_BEARER_TOKEN", ""),
		RequestTimeout: getEnvDuration("BACKEND_REQUEST_TIMEOUT", 8*time.Second),

		Channels:            strings.Split(getEnv("CHANNELS", "admin,client"), ","),
		AdminPollInterval:   getEnvDuration("ADMIN_POLL_INTERVAL", 10*time.Second),
		ClientPollInterval:  getEnvDuration("CLIENT_POLL_INTERVAL", 30*time.Second),
		FetchLimit:          getEnvInt("FETCH_LIMIT", 15),
		PermissionStatePath: getEnv("PERMISSION_STATE_PATH", "./notify-permission.json"),

		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		Escalation: Escalation{
			Delay:        getEnvDuration("ESCALATION_DELAY", 0),
			SMSNumber:    getEnv("ESCALATION_SMS_NUMBER", ""),
			EmailTo:      getEnv("ESCALATION_EMAIL_TO", ""),
			SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
			AWSEndpoint:  getEnv("AWS_ENDPOINT_URL", ""),
			AWSAccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			SMTPHost:     getEnv("SMTP_HOST", "localhost"),
			SMTPPort:     getEnv("SMTP_PORT", "1025"),
			SMTPFrom:     getEnv("SMTP_FROM", "alerts@example.com"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// PollInterval returns the configured interval for an audience. The admin
// feed polls tighter than the client bell; both are tunables, not
// correctness parameters.
func (c *Config) PollInterval(audience string) time.Duration {
	if audience == "admin" {
		return c.AdminPollInterval
	}
	return c.ClientPollInterval
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
