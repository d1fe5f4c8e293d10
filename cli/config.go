package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// defaultConfigFile is loaded automatically when present in the working directory.
const defaultConfigFile = "boxsolver.toml"

// Config mirrors boxsolver.toml. Flags take precedence over file values.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

type LayoutConfig struct {
	Tolerance float64 `toml:"tolerance"`  // mm
	OriginTop bool    `toml:"origin_top"` // default for pages without an origin
}

type RenderConfig struct {
	Format string  `toml:"format"` // pdf | png | json
	DPI    float64 `toml:"dpi"`    // png only
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig is the configuration used when no file is loaded.
func DefaultConfig() *Config {
	return &Config{
		Layout: LayoutConfig{Tolerance: 0.01, OriginTop: true},
		Render: RenderConfig{Format: formatPDF, DPI: 150},
		Log:    LogConfig{Level: "info"},
	}
}

// LoadConfig reads the TOML file at path over the defaults. An empty path
// tries boxsolver.toml and falls back to the defaults when it is missing.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("配置 %s 含有未知字段: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("配置 %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Layout.Tolerance < 0 {
		return fmt.Errorf("layout.tolerance 不能为负数: %g", c.Layout.Tolerance)
	}
	if err := validateFormat(c.Render.Format); err != nil {
		return err
	}
	if c.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi 必须大于 0: %g", c.Render.DPI)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// logLevel returns the configured level; verbose always means debug.
func (c *Config) logLevel(verbose bool) log.Level {
	if verbose {
		return log.DebugLevel
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
