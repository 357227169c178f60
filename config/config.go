// Package config loads the dailyagent settings from a YAML file, DAILYAGENT_
// environment variables and the provider API key variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/smallnest/dailyagent/llm"
	"github.com/smallnest/dailyagent/log"
	"github.com/smallnest/dailyagent/newspaper"
	"github.com/smallnest/dailyagent/tool"
	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned by Validate when a required API key is not set.
var ErrMissingCredentials = errors.New("missing credentials")

// EnvPrefix prefixes every environment variable that maps onto a config key.
const EnvPrefix = "DAILYAGENT"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// DefaultMaxRuns is how many runs the memory driver keeps by default.
const DefaultMaxRuns = 100

// Config holds all settings of the application.
type Config struct {
	Models      ModelsConfig      `mapstructure:"models"`
	Topics      TopicsConfig      `mapstructure:"topics"`
	Search      SearchConfig      `mapstructure:"search"`
	Graph       GraphConfig       `mapstructure:"graph"`
	Store       StoreConfig       `mapstructure:"store"`
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
}

// ModelsConfig selects the chat models.
type ModelsConfig struct {
	Main      string `mapstructure:"main"`
	Newspaper string `mapstructure:"newspaper"`
	BaseURL   string `mapstructure:"base_url"`
}

// TopicsConfig holds the topics used for general news requests.
type TopicsConfig struct {
	Default []string `mapstructure:"default"`
}

// SearchConfig selects the web search provider.
type SearchConfig struct {
	Provider   string `mapstructure:"provider"`
	MaxResults int    `mapstructure:"max_results"`
	MaxRounds  int    `mapstructure:"max_rounds"`
	// Depth is the Tavily search depth, basic or advanced. Brave ignores it.
	Depth string `mapstructure:"depth"`
}

// GraphConfig tunes the graph runner.
type GraphConfig struct {
	RecursionLimit int `mapstructure:"recursion_limit"`
}

// StoreConfig selects where step checkpoints are kept.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	// MaxRuns bounds the runs the memory driver keeps. Zero keeps all.
	MaxRuns int `mapstructure:"max_runs"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig sets the log level: debug, info, warn, error or none.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CredentialsConfig holds the provider API keys. Each key is also read from
// its conventional variable, e.g. GROQ_API_KEY.
type CredentialsConfig struct {
	GroqAPIKey   string `mapstructure:"groq_api_key"`
	TavilyAPIKey string `mapstructure:"tavily_api_key"`
	BraveAPIKey  string `mapstructure:"brave_api_key"`
}

var credentialEnv = map[string]string{
	"credentials.groq_api_key":   "GROQ_API_KEY",
	"credentials.tavily_api_key": "TAVILY_API_KEY",
	"credentials.brave_api_key":  "BRAVE_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("models.main", "moonshotai/kimi-k2-instruct")
	v.SetDefault("models.newspaper", "openai/gpt-oss-120b")
	v.SetDefault("models.base_url", llm.DefaultBaseURL)
	v.SetDefault("topics.default", newspaper.DefaultTopics)
	v.SetDefault("search.provider", tool.ProviderTavily)
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.max_rounds", newspaper.DefaultMaxSearchRounds)
	v.SetDefault("search.depth", tool.DepthBasic)
	v.SetDefault("graph.recursion_limit", newspaper.DefaultRecursionLimit)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_runs", DefaultMaxRuns)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	for key := range credentialEnv {
		v.SetDefault(key, "")
	}
}

// Load reads the configuration. An empty path looks for dailyagent.yaml in
// the working directory and in $HOME/.dailyagent; a missing file there is not
// an error. Environment variables override the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("dailyagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".dailyagent"))
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range credentialEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Debug("no config file found, using defaults and environment")
	} else {
		log.Debug("using config file %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Search.Provider = strings.ToLower(strings.TrimSpace(cfg.Search.Provider))
	cfg.Search.Depth = strings.ToLower(strings.TrimSpace(cfg.Search.Depth))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	return &cfg, nil
}

// Validate checks the settings and that the credentials needed by the
// selected providers are present. Missing credentials are reported together
// as ErrMissingCredentials.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if !slices.Contains([]string{tool.ProviderTavily, tool.ProviderBrave}, c.Search.Provider) {
		return fmt.Errorf("search.provider: %w: %q", tool.ErrUnknownProvider, c.Search.Provider)
	}
	if !slices.Contains([]string{DriverMemory, DriverSQLite, DriverRedis, DriverPostgres}, c.Store.Driver) {
		return fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver)
	}
	if c.Store.Driver != DriverMemory && strings.TrimSpace(c.Store.DSN) == "" {
		return fmt.Errorf("store.dsn is required for driver %s", c.Store.Driver)
	}
	if c.Store.MaxRuns < 0 {
		return fmt.Errorf("store.max_runs must not be negative")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be greater than zero")
	}
	if !slices.Contains([]string{tool.DepthBasic, tool.DepthAdvanced}, c.Search.Depth) {
		return fmt.Errorf("search.depth must be %s or %s, got %q", tool.DepthBasic, tool.DepthAdvanced, c.Search.Depth)
	}
	if c.Search.MaxRounds <= 0 {
		return fmt.Errorf("search.max_rounds must be greater than zero")
	}
	if c.Graph.RecursionLimit <= 0 {
		return fmt.Errorf("graph.recursion_limit must be greater than zero")
	}
	if strings.TrimSpace(c.Models.Main) == "" || strings.TrimSpace(c.Models.Newspaper) == "" {
		return fmt.Errorf("models.main and models.newspaper are required")
	}

	var missing []string
	if c.Credentials.GroqAPIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	if key, env := c.SearchAPIKey(); key == "" {
		missing = append(missing, env)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// SearchAPIKey returns the key of the selected search provider and the
// variable it is read from.
func (c *Config) SearchAPIKey() (key, env string) {
	if c.Search.Provider == tool.ProviderBrave {
		return c.Credentials.BraveAPIKey, "BRAVE_API_KEY"
	}
	return c.Credentials.TavilyAPIKey, "TAVILY_API_KEY"
}

// LogLevel returns the parsed log.level setting.
func (c *Config) LogLevel() (log.LogLevel, error) {
	return log.ParseLevel(c.Log.Level)
}
