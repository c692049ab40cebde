package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Regex engines
const (
	EngineRE2        = "re2"
	EngineECMAScript = "ecmascript"
)

// Report formats
const (
	FormatAuto       = "auto"
	FormatText       = "text"
	FormatTerminal   = "terminal"
	FormatJSON       = "json"
	FormatCheckstyle = "checkstyle"
)

// Config is the fully merged rulelint configuration
type Config struct {
	Rules   RulesConfig   `koanf:"rules"`
	Regex   RegexConfig   `koanf:"regex"`
	Run     RunConfig     `koanf:"run"`
	Watch   WatchConfig   `koanf:"watch"`
	Metrics MetricsConfig `koanf:"metrics"`

	// raw keeps the merged key tree for display
	raw map[string]interface{}
}

// RulesConfig controls rule document discovery and validation
type RulesConfig struct {
	Dir            string   `koanf:"dir"`
	Extensions     []string `koanf:"extensions"`
	DescriptionMax int      `koanf:"description_max"`
}

// RegexConfig selects the regular expression engine
type RegexConfig struct {
	Engine string `koanf:"engine"`
}

// RunConfig controls target evaluation
type RunConfig struct {
	Workers     int      `koanf:"workers"`
	Format      string   `koanf:"format"`
	Ignore      []string `koanf:"ignore"`
	MaxFileSize int64    `koanf:"max_file_size"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	File string `koanf:"file"`
}

// Formats lists the accepted report formats
func Formats() []string {
	return []string{FormatAuto, FormatText, FormatTerminal, FormatJSON, FormatCheckstyle}
}

// postProcessConfig validates the merged values and fills derived defaults
func postProcessConfig(cfg *Config) error {
	if cfg.Rules.Dir == "" {
		return fmt.Errorf("rules.dir must not be empty")
	}
	if len(cfg.Rules.Extensions) == 0 {
		return fmt.Errorf("rules.extensions must not be empty")
	}
	for i, ext := range cfg.Rules.Extensions {
		ext = strings.TrimSpace(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Rules.Extensions[i] = ext
	}
	if cfg.Rules.DescriptionMax <= 0 {
		cfg.Rules.DescriptionMax = 120
	}

	switch cfg.Regex.Engine {
	case EngineRE2, EngineECMAScript:
	case "":
		cfg.Regex.Engine = EngineRE2
	default:
		return fmt.Errorf("regex.engine %q is not one of %s, %s", cfg.Regex.Engine, EngineRE2, EngineECMAScript)
	}

	if !validFormat(cfg.Run.Format) {
		return fmt.Errorf("run.format %q is not one of %s", cfg.Run.Format, strings.Join(Formats(), ", "))
	}
	if cfg.Run.Workers <= 0 {
		cfg.Run.Workers = runtime.NumCPU()
	}
	if cfg.Run.MaxFileSize < 0 {
		return fmt.Errorf("run.max_file_size must not be negative")
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}
