package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		// Split comma-separated values, trim whitespace
		parts := splitList(value)
		switch field.Type().Elem().Kind() {
		case reflect.String:
			field.Set(reflect.ValueOf(parts))
		case reflect.Int:
			result := make([]int, 0, len(parts))
			for _, p := range parts {
				i, err := strconv.Atoi(p)
				if err != nil {
					return fmt.Errorf("invalid integer in list: %w", err)
				}
				result = append(result, i)
			}
			field.Set(reflect.ValueOf(result))
		default:
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Paths validation
	if strings.TrimSpace(c.Paths.RawDir) == "" {
		errs = append(errs, "RAW_DIR must not be empty")
	}
	if strings.TrimSpace(c.Paths.Dictionary) == "" {
		errs = append(errs, "DICTIONARY_PATH must not be empty")
	}
	if strings.TrimSpace(c.Paths.Output) == "" {
		errs = append(errs, "OUTPUT_PATH must not be empty")
	}

	// Build validation
	if len(c.Build.Years) == 0 {
		errs = append(errs, "BUILD_YEARS must list at least one year")
	}
	seen := make(map[int]bool, len(c.Build.Years))
	for _, y := range c.Build.Years {
		if y < 1900 || y > 9999 {
			errs = append(errs, fmt.Sprintf("BUILD_YEARS entry %d must be a four-digit year", y))
		}
		if seen[y] {
			errs = append(errs, fmt.Sprintf("BUILD_YEARS lists %d more than once", y))
		}
		seen[y] = true
	}
	if c.Build.Parallelism <= 0 {
		errs = append(errs, "BUILD_PARALLELISM must be positive")
	}

	// Raw CSV validation
	if n := utf8.RuneCountInString(c.Raw.Delimiter); n != 1 {
		errs = append(errs, fmt.Sprintf("RAW_DELIMITER (%q) must be a single character", c.Raw.Delimiter))
	} else if d := c.Raw.DelimiterRune(); d == '"' || d == '\r' || d == '\n' || d == utf8.RuneError {
		errs = append(errs, fmt.Sprintf("RAW_DELIMITER (%q) is not a valid field separator", c.Raw.Delimiter))
	}
	if _, err := rawcsv.LookupEncoding(c.Raw.Encoding); err != nil {
		errs = append(errs, fmt.Sprintf("RAW_ENCODING: %v", err))
	}

	// Parquet validation
	validCodecs := map[string]bool{"snappy": true, "zstd": true, "gzip": true, "none": true, "uncompressed": true}
	if !validCodecs[strings.ToLower(c.Parquet.Compression)] {
		errs = append(errs, fmt.Sprintf("PARQUET_COMPRESSION (%q) must be one of: snappy, zstd, gzip, none", c.Parquet.Compression))
	}
	if c.Parquet.RowGroupSize <= 0 {
		errs = append(errs, "PARQUET_ROW_GROUP_SIZE must be positive")
	}

	// Export validation
	if c.Export.DatabaseURL != "" && !validIdentifier(c.Export.PostgresTable) {
		errs = append(errs, fmt.Sprintf("EXPORT_PG_TABLE (%q) must be a plain SQL identifier", c.Export.PostgresTable))
	}
	if c.Export.SQLitePath != "" && !validIdentifier(c.Export.SQLiteTable) {
		errs = append(errs, fmt.Sprintf("EXPORT_SQLITE_TABLE (%q) must be a plain SQL identifier", c.Export.SQLiteTable))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// validIdentifier reports whether s is a plain SQL identifier: a letter or
// underscore followed by letters, digits or underscores.
func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// String returns a safe string representation of the config for logging.
// Sensitive values like database URLs are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Paths: {Root: %q, RawDir: %q, Dictionary: %q, Output: %q}, ",
		c.Paths.Root, c.Paths.RawDir, c.Paths.Dictionary, c.Paths.Output))
	b.WriteString(fmt.Sprintf("Build: {Years: %v, Parallelism: %d}, ", c.Build.Years, c.Build.Parallelism))
	b.WriteString(fmt.Sprintf("Raw: {Delimiter: %q, Encoding: %q, SanitizeUTF8: %v}, ",
		c.Raw.Delimiter, c.Raw.Encoding, c.Raw.SanitizeUTF8))
	b.WriteString(fmt.Sprintf("Parquet: {Compression: %q, RowGroupSize: %d}, ",
		c.Parquet.Compression, c.Parquet.RowGroupSize))
	dbURL := ""
	if c.Export.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}
	b.WriteString(fmt.Sprintf("Export: {TextColumns: %v, DatabaseURL: %q, PostgresTable: %q, SQLitePath: %q, SQLiteTable: %q}, ",
		c.Export.TextColumns, dbURL, c.Export.PostgresTable, c.Export.SQLitePath, c.Export.SQLiteTable))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
