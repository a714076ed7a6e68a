// Package config provides centralized configuration management for the dataset build.
// It loads configuration from environment variables with defaults that reproduce the
// standard project layout, and validates all settings on startup to fail fast on
// misconfiguration.
package config

import "path/filepath"

// Config holds all build configuration.
// All settings can be configured via environment variables.
type Config struct {
	Paths   PathsConfig
	Build   BuildConfig
	Raw     RawConfig
	Parquet ParquetConfig
	Export  ExportConfig
	Logging LoggingConfig
}

// PathsConfig holds filesystem locations. Relative paths resolve against Root.
type PathsConfig struct {
	// Root is the project root (default: current directory)
	Root string `env:"ACCIDENTS_ROOT" default:"."`

	// RawDir holds the yearly raw extracts (default: data/raw)
	RawDir string `env:"RAW_DIR" default:"data/raw"`

	// Dictionary is the column name dictionary (default: docs/dictionnaire_des_variables.csv)
	Dictionary string `env:"DICTIONARY_PATH" default:"docs/dictionnaire_des_variables.csv"`

	// Output is the parquet dataset written by the build (default: data/processed/dataset.parquet)
	Output string `env:"OUTPUT_PATH" default:"data/processed/dataset.parquet"`
}

// BuildConfig holds dataset build settings.
type BuildConfig struct {
	// Years is the closed set of years to build (default: 2021,2022,2023)
	Years []int `env:"BUILD_YEARS" default:"2021,2022,2023"`

	// Parallelism is how many years are built at once (default: 1)
	Parallelism int `env:"BUILD_PARALLELISM" default:"1"`
}

// RawConfig controls how raw CSV extracts are decoded.
type RawConfig struct {
	// Delimiter is the field separator, a single character (default: ;)
	Delimiter string `env:"RAW_DELIMITER" default:";"`

	// Encoding is the file charset: utf-8, latin1, windows-1252 (default: utf-8)
	Encoding string `env:"RAW_ENCODING" default:"utf-8"`

	// SanitizeUTF8 replaces invalid UTF-8 bytes instead of rejecting the file (default: false)
	SanitizeUTF8 bool `env:"RAW_SANITIZE_UTF8" default:"false"`
}

// ParquetConfig holds parquet output settings.
type ParquetConfig struct {
	// Compression is the column codec: snappy, zstd, gzip, none (default: snappy)
	Compression string `env:"PARQUET_COMPRESSION" default:"snappy"`

	// RowGroupSize is the maximum number of rows per row group (default: 65536)
	RowGroupSize int64 `env:"PARQUET_ROW_GROUP_SIZE" default:"65536"`
}

// ExportConfig holds persistence settings shared by all sinks.
type ExportConfig struct {
	// TextColumns are forced to text before persistence (default: nombre_voies)
	TextColumns []string `env:"EXPORT_TEXT_COLUMNS" default:"nombre_voies"`

	// DatabaseURL enables the PostgreSQL sink when set.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// PostgresTable is the target table of the PostgreSQL sink (default: accidents_dataset)
	PostgresTable string `env:"EXPORT_PG_TABLE" default:"accidents_dataset"`

	// SQLitePath enables the SQLite sink when set.
	SQLitePath string `env:"EXPORT_SQLITE_PATH"`

	// SQLiteTable is the target table of the SQLite sink (default: accidents_dataset)
	SQLiteTable string `env:"EXPORT_SQLITE_TABLE" default:"accidents_dataset"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Resolve returns p joined to Root unless p is absolute.
func (c *PathsConfig) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// RawDirPath returns the resolved raw extract directory.
func (c *PathsConfig) RawDirPath() string { return c.Resolve(c.RawDir) }

// DictionaryPath returns the resolved dictionary path.
func (c *PathsConfig) DictionaryPath() string { return c.Resolve(c.Dictionary) }

// OutputPath returns the resolved parquet output path.
func (c *PathsConfig) OutputPath() string { return c.Resolve(c.Output) }

// DelimiterRune returns the raw delimiter as a rune.
func (c *RawConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}
