package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/rulelint/pkg/errors"
	"github.com/arthur-debert/rulelint/pkg/logging"
)

// EnvPrefix is the prefix of environment variables read into the config.
// RULELINT_RUN_WORKERS=4 sets run.workers.
const EnvPrefix = "RULELINT_"

// UserConfigPath is the config file looked up under the XDG config dirs
const UserConfigPath = "rulelint/config.toml"

// ProjectConfigNames are looked up in the working directory, first match wins
var ProjectConfigNames = []string{".rulelint.toml", "rulelint.toml"}

// LoadOptions selects the configuration layers
type LoadOptions struct {
	// WorkDir is searched for a project config. Defaults to ".".
	WorkDir string
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// SkipUserConfig disables the XDG user config layer.
	SkipUserConfig bool
	// SkipEnv disables the environment layer.
	SkipEnv bool
	// Overrides are applied last, keyed by dotted path ("run.workers").
	Overrides map[string]interface{}
}

// Load merges all configuration layers and returns the validated config
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config
	if !opts.SkipUserConfig {
		xdg.Reload()
		if path, err := xdg.SearchConfigFile(UserConfigPath); err == nil {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
			logger.Debug().Str("path", path).Msg("Loaded user config")
		}
	}

	// 3. Project config
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	for _, name := range ProjectConfigNames {
		path := filepath.Join(workDir, name)
		if _, err := os.Stat(path); err == nil {
			if err := loadFile(k, path); err != nil {
				return nil, err
			}
			logger.Debug().Str("path", path).Msg("Loaded project config")
			break
		}
	}

	// 4. Explicit config file
	if opts.ConfigFile != "" {
		if _, err := os.Stat(opts.ConfigFile); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s", opts.ConfigFile)
		}
		if err := loadFile(k, opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	// 5. Environment
	if !opts.SkipEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
		}
	}

	// 6. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcessConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
	}
	cfg.raw = k.Raw()

	return &cfg, nil
}

// Default returns the configuration made of the embedded defaults only
func Default() *Config {
	cfg, err := Load(LoadOptions{WorkDir: os.DevNull, SkipUserConfig: true, SkipEnv: true})
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	return cfg
}

func loadFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
			WithDetail(errors.DetailFile, path)
	}
	return nil
}

// envKey maps RULELINT_RUN_MAX_FILE_SIZE to run.max_file_size
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
