package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
)

type TransportMode string

const (
	// DefaultSchemaSampleSize is the default number of instances to sample per
	// label or relationship type when inferring the schema.
	DefaultSchemaSampleSize int           = 1000
	DefaultReadTimeout      time.Duration = 30 * time.Second
	TransportModeStdio      TransportMode = "stdio"
	TransportModeHTTP       TransportMode = "http"
)

// ValidTransportModes defines the allowed transport mode values
var ValidTransportModes = []TransportMode{TransportModeStdio, TransportModeHTTP}

// Config holds the application configuration. It is loaded once at startup
// and treated as immutable afterwards; every component reads it by reference.
type Config struct {
	URI                string
	Username           string
	Password           string
	Database           string
	Namespace          string        // Optional prefix applied to every tool name
	ReadTimeout        time.Duration // Hard upper bound on read query execution
	ResponseTokenLimit int           // Approximate response size cap, 0 = unlimited
	ReadOnly           bool          // If true, disables write tools
	SchemaSampleSize   int           // Instances sampled per label/type for schema inference
	LogLevel           string
	LogFormat          string
	TransportMode      TransportMode // MCP transport mode ("stdio" or "http")
	HTTPPort           string        // HTTP server port (default: "8000")
	HTTPHost           string        // HTTP server host (default: "127.0.0.1")
	HTTPPath           string        // HTTP endpoint path (default: "/mcp/")
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is required but was nil")
	}

	if c.URI == "" {
		return fmt.Errorf("Neo4j URI is required but was empty")
	}
	if c.Username == "" {
		return fmt.Errorf("Neo4j username is required but was empty")
	}
	if c.Password == "" {
		return fmt.Errorf("Neo4j password is required but was empty")
	}

	// Default to stdio if not provided (keeps tests constructing Config directly working)
	if c.TransportMode == "" {
		c.TransportMode = TransportModeStdio
	}
	if !slices.Contains(ValidTransportModes, c.TransportMode) {
		return fmt.Errorf("invalid transport mode '%s', must be one of %v", c.TransportMode, ValidTransportModes)
	}

	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.SchemaSampleSize <= 0 {
		return fmt.Errorf("schema sample size must be positive, got %d", c.SchemaSampleSize)
	}
	if c.ResponseTokenLimit < 0 {
		return fmt.Errorf("response token limit must not be negative, got %d", c.ResponseTokenLimit)
	}

	return nil
}

// LoadConfig loads configuration from environment variables and validates it.
// Returns an error if required configuration is missing or invalid.
func LoadConfig() (*Config, error) {
	logLevel := GetEnvWithDefault("NEO4J_LOG_LEVEL", "info")
	logFormat := GetEnvWithDefault("NEO4J_LOG_FORMAT", "text")

	// Validate log level and use default if invalid
	if !slices.Contains(logger.ValidLogLevels, logLevel) {
		fmt.Fprintf(os.Stderr, "Warning: invalid NEO4J_LOG_LEVEL '%s', using default 'info'. Valid values: %v\n", logLevel, logger.ValidLogLevels)
		logLevel = "info"
	}
	if !slices.Contains(logger.ValidLogFormats, logFormat) {
		fmt.Fprintf(os.Stderr, "Warning: invalid NEO4J_LOG_FORMAT '%s', using default 'text'. Valid values: %v\n", logFormat, logger.ValidLogFormats)
		logFormat = "text"
	}

	cfg := &Config{
		URI:                GetEnv("NEO4J_URI"),
		Username:           GetEnv("NEO4J_USERNAME"),
		Password:           GetEnv("NEO4J_PASSWORD"),
		Database:           GetEnvWithDefault("NEO4J_DATABASE", "neo4j"),
		Namespace:          GetEnv("NEO4J_NAMESPACE"),
		ReadTimeout:        time.Duration(ParseInt(GetEnv("NEO4J_READ_TIMEOUT"), int(DefaultReadTimeout/time.Second))) * time.Second,
		ResponseTokenLimit: ParseInt(GetEnv("NEO4J_RESPONSE_TOKEN_LIMIT"), 0),
		ReadOnly:           ParseBool(GetEnv("NEO4J_READ_ONLY"), false),
		SchemaSampleSize:   ParseInt(GetEnv("NEO4J_SCHEMA_SAMPLE_SIZE"), DefaultSchemaSampleSize),
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		TransportMode:      GetTransportModeWithDefault("NEO4J_MCP_TRANSPORT", TransportModeStdio),
		HTTPPort:           GetEnvWithDefault("NEO4J_MCP_HTTP_PORT", "8000"),
		HTTPHost:           GetEnvWithDefault("NEO4J_MCP_HTTP_HOST", "127.0.0.1"),
		HTTPPath:           GetEnvWithDefault("NEO4J_MCP_HTTP_PATH", "/mcp/"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEnv returns the value of an environment variable or empty string if not set
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvWithDefault returns the value of an environment variable or a default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetTransportModeWithDefault returns the value of an environment variable or a default value
func GetTransportModeWithDefault(key string, defaultValue TransportMode) TransportMode {
	if value := os.Getenv(key); value != "" {
		return TransportMode(value)
	}
	return defaultValue
}

// ParseBool parses a string to bool using strconv.ParseBool.
// Returns the default value if the string is empty or invalid.
// Logs a warning if the value is non-empty but invalid.
func ParseBool(value string, defaultValue bool) bool {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: Invalid boolean value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}

// ParseInt parses a string to int.
// Returns the default value if the string is empty or invalid.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Invalid integer value %q, using default: %v", value, defaultValue)
		return defaultValue
	}
	return parsed
}
