// Package config loads the todo service configuration.
//
// Values are resolved in priority order:
//  1. Defaults
//  2. Config file given by --config (.yaml/.yml or .toml)
//  3. Environment variables
//  4. CLI flags
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"gopkg.in/yaml.v3"

	"github.com/wondertwin-ai/todo-service/internal/store"
)

const (
	DefaultMongoURI       = "mongodb://127.0.0.1:27017/mydb"
	DefaultPort           = 3000
	DefaultDatabase       = "mydb"
	DefaultRequestTimeout = 10 * time.Second
)

// Config is the service configuration. Field names in files match the
// yaml/toml tags.
type Config struct {
	MongoURI       string        `yaml:"mongo_uri" toml:"mongo_uri"`
	Port           int           `yaml:"port" toml:"port"`
	Store          string        `yaml:"store" toml:"store"`
	Database       string        `yaml:"database" toml:"database"`
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`
	LogLevel       string        `yaml:"log_level" toml:"log_level"`
	LogFormat      string        `yaml:"log_format" toml:"log_format"`
	Verbose        bool          `yaml:"verbose" toml:"verbose"`

	// File is the config file that was read, if any.
	File string `yaml:"-" toml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MongoURI:       DefaultMongoURI,
		Port:           DefaultPort,
		RequestTimeout: DefaultRequestTimeout,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// Load resolves the configuration from args (without the program name) and
// the environment lookup getenv. Invalid values are reported as errors.
func Load(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("todo-service", flag.ContinueOnError)
	var (
		file      = fs.String("config", "", "path to a .yaml or .toml config file")
		mongoURI  = fs.String("mongo-uri", "", "database connection string")
		port      = fs.Int("port", 0, "HTTP listen port")
		backend   = fs.String("store", "", "store backend: mongo, postgres or memory")
		database  = fs.String("database", "", "MongoDB database name")
		timeout   = fs.Duration("request-timeout", 0, "per-request timeout")
		logLevel  = fs.String("log-level", "", "log level: debug, info, warn or error")
		logFormat = fs.String("log-format", "", "log format: json or text")
		verbose   = fs.Bool("verbose", false, "log every request at info level")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()

	if *file != "" {
		if err := loadFile(cfg, *file); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", *file, err)
		}
		cfg.File = *file
	}

	if err := loadFromEnv(cfg, getenv); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mongo-uri":
			cfg.MongoURI = *mongoURI
		case "port":
			cfg.Port = *port
		case "store":
			cfg.Store = *backend
		case "database":
			cfg.Database = *database
		case "request-timeout":
			cfg.RequestTimeout = *timeout
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-format":
			cfg.LogFormat = *logFormat
		case "verbose":
			cfg.Verbose = *verbose
		}
	})

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes a config file over cfg, picking the format by extension.
func loadFile(cfg *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.DecodeFile(path, cfg)
		return err
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

func loadFromEnv(cfg *Config, getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// finalize validates cfg and fills the values derived from the URI.
func (c *Config) finalize() error {
	if c.MongoURI == "" {
		return fmt.Errorf("mongo_uri must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log_format %q", c.LogFormat)
	}

	if c.Store == "" {
		c.Store = string(store.BackendForURI(c.MongoURI))
	}
	switch store.Backend(c.Store) {
	case store.BackendMongo:
		if c.Database == "" {
			cs, err := connstring.ParseAndValidate(c.MongoURI)
			if err != nil {
				return fmt.Errorf("invalid mongo_uri: %w", err)
			}
			c.Database = cs.Database
		}
		if c.Database == "" {
			c.Database = DefaultDatabase
		}
	case store.BackendPostgres, store.BackendMemory:
	default:
		return fmt.Errorf("invalid store %q", c.Store)
	}
	return nil
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:  store.Backend(c.Store),
		URI:      c.MongoURI,
		Database: c.Database,
	}
}
