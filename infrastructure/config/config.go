// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress   string
	Environment     string
	Stage           string
	ShutdownTimeout time.Duration

	// AWS configuration
	AWSRegion        string
	DynamoDBEndpoint string // set for DynamoDB Local
	EventBusName     string
	MetricsNamespace string

	// Tables
	AnswersTable       string
	QuestionsTable     string
	StateFormsTable    string
	FormTypesTable     string
	FormTemplatesTable string
	UsersTable         string
	RateLimitTable     string
	ConfirmationsTable string
	StateFormIndex     string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret        string
	JWTPublicKeyPEM  string
	JWTIssuer        string
	JWTAudience      string
	JWTSigningMethod string

	// Rate limiting, requests per minute
	IPRateLimit   int
	UserRateLimit int

	// Caching and confirmations
	CacheTTL        int // seconds
	ConfirmationTTL time.Duration

	// Domain rules file; empty uses the built-in defaults
	DomainConfigPath string

	// CORS
	AllowedOrigins []string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	stage := getEnv("STAGE", "dev")

	cfg := &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		Stage:           stage,
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		EventBusName:     getEnv("EVENT_BUS_NAME", stage+"-seds-events"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "SEDS"),

		AnswersTable:       getEnv("FORM_ANSWERS_TABLE_NAME", stage+"-form-answers"),
		QuestionsTable:     getEnv("FORM_QUESTIONS_TABLE_NAME", stage+"-form-questions"),
		StateFormsTable:    getEnv("STATE_FORMS_TABLE_NAME", stage+"-state-forms"),
		FormTypesTable:     getEnv("FORMS_TABLE_NAME", stage+"-forms"),
		FormTemplatesTable: getEnv("FORM_TEMPLATES_TABLE_NAME", stage+"-form-templates"),
		UsersTable:         getEnv("AUTH_USER_TABLE_NAME", stage+"-auth-user"),
		RateLimitTable:     getEnv("RATE_LIMIT_TABLE_NAME", ""),
		ConfirmationsTable: getEnv("CONFIRMATIONS_TABLE_NAME", stage+"-confirmations"),
		StateFormIndex:     getEnv("STATE_FORM_INDEX", "state-form-index"),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTPublicKeyPEM:  getEnv("JWT_PUBLIC_KEY", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "seds"),
		JWTAudience:      getEnv("JWT_AUDIENCE", ""),
		JWTSigningMethod: getEnv("JWT_SIGNING_METHOD", "HS256"),

		IPRateLimit:   getEnvInt("IP_RATE_LIMIT", 300),
		UserRateLimit: getEnvInt("USER_RATE_LIMIT", 120),

		CacheTTL:        getEnvInt("CACHE_TTL_SECONDS", 300),
		ConfirmationTTL: getEnvDuration("CONFIRMATION_TTL", 5*time.Minute),

		DomainConfigPath: getEnv("DOMAIN_CONFIG_PATH", ""),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if cfg.LambdaFunctionName != "" {
		cfg.IsLambda = true
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Stage == "" {
		return fmt.Errorf("STAGE is required")
	}
	if c.JWTSigningMethod != "HS256" && c.JWTSigningMethod != "RS256" {
		return fmt.Errorf("JWT_SIGNING_METHOD must be HS256 or RS256, got %q", c.JWTSigningMethod)
	}
	if c.IsProduction() {
		// a Lambda behind the API Gateway authorizer may run without signing keys
		if !c.IsLambda && c.JWTSigningMethod == "HS256" && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if !c.IsLambda && c.JWTSigningMethod == "RS256" && c.JWTPublicKeyPEM == "" {
			return fmt.Errorf("JWT_PUBLIC_KEY is required in production")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must not be negative")
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
