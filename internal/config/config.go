// Package config loads carepath settings from defaults, an optional
// carepath.yaml file, CAREPATH_* environment variables and command flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/carepath/pkg/layout"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. CAREPATH_HTTP_ADDR.
const EnvPrefix = "CAREPATH"

// FileName is the config file looked up in the working directory and in
// the user config directory when no explicit path is given.
const FileName = "carepath"

// Config holds application configuration.
type Config struct {
	Log    LogConfig     `mapstructure:"log"`
	Layout layout.Config `mapstructure:"layout"`
	View   ViewConfig    `mapstructure:"view"`
	HTTP   HTTPConfig    `mapstructure:"http"`
	Redis  RedisConfig   `mapstructure:"redis"`
	MCP    MCPConfig     `mapstructure:"mcp"`
	Export ExportConfig  `mapstructure:"export"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN ERROR"`
}

type ViewConfig struct {
	// Padding is the margin kept around the fitted viewport.
	Padding float64 `mapstructure:"padding" validate:"gte=0"`
	// Debounce delays remote snapshot publishing; zero publishes every snapshot.
	Debounce time.Duration `mapstructure:"debounce" validate:"gte=0"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// SessionTTL evicts sessions idle for longer. Zero keeps them until deleted.
	SessionTTL time.Duration `mapstructure:"session_ttl" validate:"gte=0"`
}

// RedisConfig enables snapshot publishing when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	Channel  string        `mapstructure:"channel" validate:"required"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" validate:"oneof=stdio sse"`
	Addr      string `mapstructure:"addr"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format" validate:"oneof=yaml json md"`
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind command flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	d := layout.DefaultConfig()
	v.SetDefault("log.level", "info")
	v.SetDefault("layout.node_width", d.NodeWidth)
	v.SetDefault("layout.node_height", d.NodeHeight)
	v.SetDefault("layout.rank_gap", d.RankGap)
	v.SetDefault("layout.node_gap", d.NodeGap)
	v.SetDefault("layout.iterations", d.Iterations)
	v.SetDefault("layout.char_width", d.CharWidth)
	v.SetDefault("layout.label_height", d.LabelHeight)
	v.SetDefault("layout.label_padding", d.LabelPadding)
	v.SetDefault("view.padding", 24.0)
	v.SetDefault("view.debounce", 50*time.Millisecond)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.session_ttl", 30*time.Minute)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "carepath:snapshots")
	v.SetDefault("redis.ttl", time.Hour)
	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.addr", ":8081")
	v.SetDefault("export.dir", "summaries")
	v.SetDefault("export.format", "md")

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file into v and decodes the result. An explicit path
// must exist; otherwise carepath.yaml is optional.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "carepath"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
