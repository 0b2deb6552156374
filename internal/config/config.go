// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables; command line
// flags override them per run.
type Config struct {
	Store   StoreConfig
	Ingest  IngestConfig
	Report  ReportConfig
	Server  ServerConfig
	Logging LoggingConfig
}

// StoreConfig holds the location and pool settings of the relational store.
type StoreConfig struct {
	// URL selects the backend: postgres://... or duckdb://<path>, a *.duckdb
	// path, or :memory: (default: duckdb://database/ecom.duckdb)
	URL string `env:"STORE_URL" envAlt:"DATABASE_URL" default:"duckdb://database/ecom.duckdb"`

	// MaxConns is the maximum number of pooled connections (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Timeout bounds a whole load or report run (default: 10m)
	Timeout time.Duration `env:"STORE_TIMEOUT" default:"10m"`
}

// IngestConfig holds source reading and validation settings.
type IngestConfig struct {
	// DataDir is the directory holding <entity>.csv files (default: data)
	DataDir string `env:"DATA_DIR" default:"data"`

	// Strict aborts an entity, and everything referencing it, on any rejected row (default: false)
	Strict bool `env:"INGEST_STRICT" default:"false"`

	// MaxFileSize is the maximum allowed source file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"104857600"`

	// Audit records load_runs and load_rejections (default: true)
	Audit bool `env:"INGEST_AUDIT" default:"true"`
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	// Output is the CSV file written by the report (default: output/customer_revenue_output.csv)
	Output string `env:"REPORT_OUTPUT" default:"output/customer_revenue_output.csv"`

	// TopN is the size of the revenue ranking (default: 10)
	TopN int `env:"REPORT_TOP_N" default:"10"`

	// Currency prefixes amounts in console output (default: Rs.)
	Currency string `env:"REPORT_CURRENCY" default:"Rs."`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
