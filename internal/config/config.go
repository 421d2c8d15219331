package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("graph-mcp version %s, commit %s, built at %s", version, commit, date)
}

const (
	// DefaultBaseURL is the Graph API host requests are sent to unless overridden.
	DefaultBaseURL = "https://graph.facebook.com"
	// DefaultTimeout bounds a single Graph request.
	DefaultTimeout = 30 * time.Second
)

type Config struct {
	Server          ServerConfig  `mapstructure:"server"`
	Logging         LoggingConfig `mapstructure:"logging"`
	Graph           GraphConfig   `mapstructure:"graph"`
	App             AppConfig     `mapstructure:"app"`
	Auth            AuthConfig    `mapstructure:"auth"`
	AdjustmentsFile string        `mapstructure:"adjustments_file"`
}

// GraphConfig describes the remote Graph endpoint and the credential used for it.
type GraphConfig struct {
	BaseURL     string            `json:"base_url" mapstructure:"base_url"`
	AccessToken string            `json:"access_token" mapstructure:"access_token"`
	Timeout     string            `json:"timeout" mapstructure:"timeout"`
	Headers     map[string]string `json:"headers" mapstructure:"headers"`
}

// TimeoutDuration parses Timeout, falling back to DefaultTimeout when unset.
func (g *GraphConfig) TimeoutDuration() (time.Duration, error) {
	if g.Timeout == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(g.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid graph.timeout %q: %w", g.Timeout, err)
	}
	return d, nil
}

// AppConfig holds the application credentials used to verify session cookies.
type AppConfig struct {
	ID     string `mapstructure:"id"`
	Secret string `mapstructure:"secret"`
}

// AuthConfig controls cookie-session authentication on the SSE and HTTP transports.
type AuthConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type ServerMode string

const (
	ServerModeSSE   ServerMode = "sse"
	ServerModeSTDIO ServerMode = "stdio"
	ServerModeHTTP  ServerMode = "http"
)

type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Mode    ServerMode `mapstructure:"mode"`
	Name    string     `mapstructure:"name"`
	Version string     `mapstructure:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags registers command line flags on fs (without parsing)
func InitFlags(fs *pflag.FlagSet) {
	fs.String("mode", string(ServerModeSTDIO), "Server mode (stdio|sse|http)")
	fs.String("access-token", "", "Graph API access token")
	fs.String("base-url", "", "Graph API base URL")
	fs.String("adjustments-file", "", "Path to the tool adjustments file")
	fs.String("config", "", "Path to a config file")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", string(ServerModeSTDIO))
	v.SetDefault("server.name", "Graph MCP")
	v.SetDefault("server.version", version)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("graph.base_url", DefaultBaseURL)
	v.SetDefault("graph.timeout", DefaultTimeout.String())
	v.SetDefault("graph.access_token", "")
	v.SetDefault("app.id", "")
	v.SetDefault("app.secret", "")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("adjustments_file", "")
}

// Load reads configuration from defaults, config files, the environment and
// the given flag set, in increasing order of precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GRAPH_MCP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, err
		}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/graph-mcp")
	}

	if err := v.ReadInConfig(); err != nil {
		// config files are optional, everything can come from env and flags
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	//Loading additionals config files
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		v.SetConfigFile("/config/config.yaml")
		if err := v.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Flags use dashes, config keys use nested sections
	if mode := v.GetString("mode"); mode != "" && fs != nil && fs.Changed("mode") {
		config.Server.Mode = ServerMode(mode)
	}
	if token := v.GetString("access-token"); token != "" {
		config.Graph.AccessToken = token
	}
	if baseURL := v.GetString("base-url"); baseURL != "" {
		config.Graph.BaseURL = baseURL
	}
	if adjustmentsFile := v.GetString("adjustments-file"); adjustmentsFile != "" {
		config.AdjustmentsFile = adjustmentsFile
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks cross-field constraints that viper cannot express.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case ServerModeSSE, ServerModeSTDIO, ServerModeHTTP:
	default:
		return fmt.Errorf("unsupported server mode %q, expected one of stdio, sse, http", c.Server.Mode)
	}

	u, err := url.Parse(c.Graph.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("graph.base_url must be an absolute URL, got %q", c.Graph.BaseURL)
	}

	if _, err := c.Graph.TimeoutDuration(); err != nil {
		return err
	}

	if c.Auth.Enabled && (c.App.ID == "" || c.App.Secret == "") {
		return fmt.Errorf("auth.enabled requires app.id and app.secret, please adjust the config or set GRAPH_MCP_APP_ID and GRAPH_MCP_APP_SECRET")
	}
	return nil
}
