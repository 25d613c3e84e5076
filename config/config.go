package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPrefix is prepended to every environment variable name unless
// LoadOptions.Prefix says otherwise.
const DefaultPrefix = "BEAVER_"

// ErrNotStructPointer is returned when Load is given anything but a pointer to a struct.
var ErrNotStructPointer = errors.New("config: target must be a non-nil pointer to a struct")

// LoadOptions defines options for loading configuration from environment variables.
type LoadOptions struct {
	Prefix string // Prefix to prepend to environment variable names (default: "BEAVER_")
	Debug  bool   // Enable debug logging of configuration loading process
	// EnvFiles are loaded before the environment is read. Defaults to ".env".
	// Missing files are ignored and never override variables already set.
	EnvFiles []string
}

// Load populates a struct from .env file and environment variables using reflection.
// This function automatically loads .env files from the current directory and then
// reads environment variables to populate the provided struct.
//
// The function uses struct field tags to determine environment variable names:
//   - `env:"VAR_NAME"`: Maps the field to the specified environment variable
//   - `env:"VAR_NAME,default:value"`: Provides a default value if env var is not set
//   - `envDefault:"value"`: Alternative spelling of the default
//
// Environment variable names are automatically prefixed with the value specified
// in LoadOptions.Prefix (defaults to "BEAVER_").
//
// Example:
//
//	type Config struct {
//	    RedisURL string        `env:"KV_URL"`
//	    Expire   time.Duration `env:"FILEKIT_WXWORK_EXPIRE,default:72h"`
//	}
//
//	var cfg Config
//	err := config.Load(&cfg, config.LoadOptions{Prefix: "MYAPP_"})
//	// Will look for MYAPP_KV_URL and MYAPP_FILEKIT_WXWORK_EXPIRE
func Load(cfg interface{}, opts ...LoadOptions) error {
	options := LoadOptions{Prefix: DefaultPrefix}
	if len(opts) > 0 {
		options = opts[0]
	}

	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrNotStructPointer
	}

	files := options.EnvFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// Silently ignore missing files
		_ = godotenv.Load(f)
	}

	v := rv.Elem()
	t := v.Type()
	printDebug := options.Debug || os.Getenv(DefaultPrefix+"CONFIG_DEBUG") == "true"

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" || !field.IsExported() {
			continue
		}

		envName, defaultValue := parseTag(envTag)
		if d, ok := field.Tag.Lookup("envDefault"); ok && defaultValue == "" {
			defaultValue = d
		}

		fullEnvName := options.Prefix + envName
		value, ok := os.LookupEnv(fullEnvName)
		if !ok || value == "" {
			value = defaultValue
		}
		if printDebug {
			fmt.Printf("[BEAVER] %s=%s\n", fullEnvName, redact(fullEnvName, value))
		}

		if value != "" {
			if err := setFieldValue(v.Field(i), value); err != nil {
				return fmt.Errorf("config: %s: %w", fullEnvName, err)
			}
		}
	}

	return nil
}

// parseTag splits `NAME,default:value,...` into its name and default.
func parseTag(tag string) (name, def string) {
	parts := strings.Split(tag, ",")
	name = parts[0]
	for _, part := range parts[1:] {
		if strings.HasPrefix(part, "default:") {
			def = strings.TrimPrefix(part, "default:")
			break
		}
	}
	return name, def
}

func redact(name, value string) string {
	upper := strings.ToUpper(name)
	for _, s := range []string{"SECRET", "PASSWORD", "TOKEN", "KEY"} {
		if strings.Contains(upper, s) && value != "" {
			return "******"
		}
	}
	return value
}

// setFieldValue sets the value of a struct field using reflection and type conversion.
//
// Supported types:
//   - string
//   - int, int64 and unsigned variants
//   - float64
//   - bool
//   - time.Duration
//   - []string (comma-separated)
//
// Unsupported kinds are skipped silently.
func setFieldValue(field reflect.Value, value string) error {
	// Check for time.Duration first
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return nil
		}
		var items []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		field.Set(reflect.ValueOf(items))
	default:
		// Skip unsupported field types silently
		return nil
	}
	return nil
}
