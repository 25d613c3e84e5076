// Package config loads struct configuration from environment variables,
// with optional .env files read first.
//
// # Basic Usage
//
// Define a configuration struct with environment variable tags:
//
//	type Config struct {
//	    Prefix string        `env:"FILEKIT_WXWORK_PREFIX,default:work"`
//	    Expire time.Duration `env:"FILEKIT_WXWORK_EXPIRE,default:72h"`
//	    Debug  bool          `env:"DEBUG" envDefault:"false"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Every name is prefixed with "BEAVER_" unless LoadOptions.Prefix is set:
//
//	err := config.Load(&cfg, config.LoadOptions{Prefix: "MYAPP_"})
//
// # Builder Pattern
//
// Packages in this module expose WithPrefix builders on top of Load:
//
//	store, err := kvstore.WithPrefix("BEAVER_METADATA_").New()
//	client, err := wecom.WithPrefix("BEAVER_WECOM_SALES_").New()
//
// # Supported Types
//
//   - string
//   - int, int8 ... int64 and the unsigned variants
//   - float32, float64
//   - bool ("true", "false", "1", "0")
//   - time.Duration ("72h", "30s")
//   - []string (comma-separated)
//
// # Environment Files
//
// ".env" in the working directory is loaded through godotenv before the
// environment is read. Variables already present in the process environment
// win over file values. Set BEAVER_CONFIG_DEBUG=true (or LoadOptions.Debug)
// to print every lookup; values of names containing SECRET, PASSWORD, TOKEN
// or KEY are masked.
package config
