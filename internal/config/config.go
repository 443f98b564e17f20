package config // package config loads application configuration from environment variables

import (
	"fmt"      // fmt assembles the database connection string
	"log"      // log is used to report configuration errors and halt execution
	"os"       // os provides access to environment variables
	"strconv"  // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time‑to‑live in minutes
	RefreshTTLDays int    // refresh token time‑to‑live in days
	BcryptCost     int    // bcrypt cost for password hashing
	IngestionURL   string // endpoint of the external ingestion worker
	UploadDir      string // directory where uploaded document files are stored
	FrontendURL    string // allowed CORS origin for the browser frontend
	AdminEmail     string // bootstrap admin account email
	AdminPassword  string // bootstrap admin account password
	AdminFirstName string // bootstrap admin first name
	AdminLastName  string // bootstrap admin last name
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Values with sane
// defaults (TTLs, bcrypt cost, bootstrap admin identity) fall back via
// getenvDefault()/envIntDefault() so a development setup only needs the
// secrets and the database coordinates.
func Load() Config {
	return Config{
		Env:            getenvDefault("APP_ENV", "dev"),   // environment (dev/test/prod)
		Port:           getenvDefault("APP_PORT", "3000"), // port to bind the HTTP server
		DBUser:         must("DB_USER"),                   // database user
		DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
		DBHost:         must("DB_HOST"),                   // database host
		DBPort:         must("DB_PORT"),                   // database port
		DBName:         must("DB_NAME"),                   // database name
		JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
		AccessTTLMin:   envIntDefault("ACCESS_TOKEN_TTL_MIN", 15),  // TTL for access tokens in minutes
		RefreshTTLDays: envIntDefault("REFRESH_TOKEN_TTL_DAYS", 7), // TTL for refresh tokens in days
		BcryptCost:     envIntDefault("BCRYPT_COST", 12),  // bcrypt cost factor, unified for all create paths
		IngestionURL:   getenvDefault("INGESTION_ENDPOINT", "http://python-backend.local/ingest"),
		UploadDir:      getenvDefault("UPLOAD_DIR", "uploads"),
		FrontendURL:    getenvDefault("FRONTEND_URL", "http://localhost:4200"),
		AdminEmail:     getenvDefault("ADMIN_EMAIL", "admin@doc.com"),
		AdminPassword:  getenvDefault("ADMIN_PASSWORD", "Pass@123"),
		AdminFirstName: getenvDefault("ADMIN_FIRST_NAME", "Admin"),
		AdminLastName:  getenvDefault("ADMIN_LAST_NAME", "User"),
	}
}

// DSN assembles the MySQL connection string from the DB_* values.  parseTime
// maps DATETIME columns onto time.Time and loc pins them to UTC, matching how
// every timestamp in the schema is written.
func (c Config) DSN() string {
	cred := c.DBUser
	if c.DBPass != "" {
		cred += ":" + c.DBPass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, c.DBHost, c.DBPort, c.DBName)
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

// getenvDefault returns the value of an environment variable or a default
// when it is unset or empty.
func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envIntDefault reads an integer environment variable, falling back to def
// when the variable is unset.  A malformed value is a configuration error
// and aborts startup.
func envIntDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
