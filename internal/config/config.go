package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt wraps hashing errors
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings normalizes the admin username

	"github.com/joho/godotenv" // godotenv loads an optional .env file before reading the environment

	"github.com/iliyamo/movie-catalog/internal/utils" // bcrypt helpers for the admin credential
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time‑to‑live in minutes
	BcryptCost   int    // bcrypt cost for password hashing
	AdminUser    string // username of the built-in administrator
	AdminEmail   string // email reported for the built-in administrator
	AdminPass    string // plaintext admin password; hashed once by NewAdminCredential
	LogLevel     string // zap level (debug, info, warn, error)
	LogEncoding  string // zap encoding (json or console)
	RabbitURL    string // AMQP url for audit events; empty disables publishing
	AuditLogPath string // file the audit consumer appends to
}

// Load reads an optional .env file and then configuration values from
// environment variables.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not load .env: %v", err)
	}
	return Config{
		Env:          must("APP_ENV"),                            // environment (dev/test/prod)
		Port:         must("APP_PORT"),                           // port to bind the HTTP server
		DBUser:       must("DB_USER"),                            // database user
		DBPass:       os.Getenv("DB_PASS"),                       // database password (empty allowed)
		DBHost:       must("DB_HOST"),                            // database host
		DBPort:       must("DB_PORT"),                            // database port
		DBName:       must("DB_NAME"),                            // database name
		JWTSecret:    must("JWT_SECRET"),                         // secret used for signing JWTs
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),            // TTL for access tokens in minutes
		BcryptCost:   mustInt("BCRYPT_COST"),                     // bcrypt cost factor
		AdminUser:    must("ADMIN_USER"),                         // admin username
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),                   // admin email (optional)
		AdminPass:    must("ADMIN_PASS"),                         // admin password, plaintext in env only
		LogLevel:     getenv("LOG_LEVEL", "info"),                // logger level
		LogEncoding:  getenv("LOG_ENCODING", "json"),             // logger encoding
		RabbitURL:    rabbitURL(),                                // broker for audit events
		AuditLogPath: getenv("AUDIT_LOG_PATH", "logs/audit.log"), // audit consumer output
	}
}

// AdminCredential is the fixed administrator login.  It is built once at
// startup and handed to the user service; the plaintext never leaves Load.
type AdminCredential struct {
	Username     string
	Email        string
	PasswordHash string
}

// NewAdminCredential hashes the configured admin password with the
// configured bcrypt cost.
func NewAdminCredential(cfg Config) (AdminCredential, error) {
	hash, err := utils.HashPassword(cfg.AdminPass, cfg.BcryptCost)
	if err != nil {
		return AdminCredential{}, fmt.Errorf("hash admin password: %w", err)
	}
	return AdminCredential{
		Username:     strings.TrimSpace(cfg.AdminUser),
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
	}, nil
}

// rabbitURL mirrors the lookup order used by the queue package: RABBITMQ_URL
// first, then AMQP_URL.  An empty result disables audit publishing.
func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
