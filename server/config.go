package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendGCS    = "gcs"
)

// Config is the configuration for the wiki server.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Form      FormConfig      `mapstructure:"form"`
	Markdown  MarkdownConfig  `mapstructure:"markdown"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type StoreConfig struct {
	Backend   string    `mapstructure:"backend"`   // file, memory or gcs
	Dir       string    `mapstructure:"dir"`       // entries directory for the file backend
	Extension string    `mapstructure:"extension"` // appended to every title
	GCS       GCSConfig `mapstructure:"gcs"`
}

type GCSConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
}

type FormConfig struct {
	TitleMaxLength int `mapstructure:"title_max_length"`
}

type MarkdownConfig struct {
	Unsafe     bool     `mapstructure:"unsafe"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	Extensions []string `mapstructure:"extensions"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.dir", "entries")
	v.SetDefault("store.extension", ".md")
	v.SetDefault("store.gcs.bucket", "")
	v.SetDefault("store.gcs.prefix", "")
	v.SetDefault("form.title_max_length", 20)
	v.SetDefault("markdown.unsafe", false)
	v.SetDefault("markdown.hard_wraps", false)
	v.SetDefault("markdown.extensions", []string{})
	v.SetDefault("telemetry.service_name", "go-wiki")
	v.SetDefault("telemetry.otlp_endpoint", "")
}

// LoadConfig reads defaults, the optional config file at path and WIKI_*
// environment variables, in increasing order of precedence. Flags bound to
// v take precedence over all of them.
func LoadConfig(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix("wiki")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.Dir == "" {
			return fmt.Errorf("store.dir is required for the %s backend", BackendFile)
		}
	case BackendMemory:
	case BackendGCS:
		if c.Store.GCS.Bucket == "" {
			return fmt.Errorf("store.gcs.bucket is required for the %s backend", BackendGCS)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Form.TitleMaxLength < 0 {
		return fmt.Errorf("form.title_max_length must not be negative")
	}
	return nil
}
