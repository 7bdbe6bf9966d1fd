package cli

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/fdkevin0/htmltree"
	"github.com/fdkevin0/htmltree/internal/configsource"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type runtimeConfig struct {
	App        *htmltree.Config
	Input      string
	OutputFile string
	Offline    bool
	Debug      bool
	ConfigFile string
}

type runtimeConfigValues struct {
	htmltree.Config `mapstructure:",squash"`
	OutputFile      string `mapstructure:"output"`
	Offline         bool   `mapstructure:"offline"`
	Debug           bool   `mapstructure:"debug"`
}

func buildRuntimeConfig(cmd *cobra.Command, args []string) (*runtimeConfig, error) {
	cfg, err := decodeRuntimeConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	if err := validateRuntimeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeRuntimeConfig merges defaults, config file, env and flags without
// validating the result.
func decodeRuntimeConfig(cmd *cobra.Command, args []string) (*runtimeConfig, error) {
	v, err := configsource.NewViperForCommand(cmd, flagConfigFile)
	if err != nil {
		return nil, err
	}

	values := runtimeConfigValues{
		Config: *htmltree.NewDefaultConfig(),
	}
	if err := v.Unmarshal(&values, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))); err != nil {
		return nil, htmltree.NewConfigError("failed to decode configuration", err)
	}

	values.HTTPUserAgent = strings.TrimSpace(values.HTTPUserAgent)
	values.ParseMode = strings.ToLower(strings.TrimSpace(values.ParseMode))
	values.Selector = strings.TrimSpace(values.Selector)
	values.XPath = strings.TrimSpace(values.XPath)
	values.Format = strings.ToLower(strings.TrimSpace(values.Format))
	values.CacheDir = strings.TrimSpace(values.CacheDir)
	values.OutputFile = strings.TrimSpace(values.OutputFile)
	if values.HTTPCustomHeaders == nil {
		values.HTTPCustomHeaders = make(map[string]string)
	}

	cfg := &runtimeConfig{
		App:        &values.Config,
		OutputFile: values.OutputFile,
		Offline:    values.Offline,
		Debug:      values.Debug,
		ConfigFile: v.ConfigFileUsed(),
	}
	if len(args) > 0 {
		cfg.Input = strings.TrimSpace(args[0])
	}
	return cfg, nil
}

func validateRuntimeConfig(cfg *runtimeConfig) error {
	if cfg.Input == "" {
		return htmltree.NewValidationError("an input file or URL is required")
	}
	if err := cfg.App.Validate(); err != nil {
		return err
	}
	if cfg.Offline && !htmltree.IsURL(cfg.Input) {
		return htmltree.NewValidationError("--offline only applies to URL inputs")
	}
	if cfg.Offline && !cfg.App.CacheEnableCache {
		return htmltree.NewValidationError("--offline cannot be combined with --no-cache")
	}
	if cfg.App.CacheEnableCache && cfg.App.CacheDir == "" {
		return htmltree.NewValidationError("cache-dir must not be empty when the page cache is enabled")
	}
	return nil
}

func durationDecodeHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}

		switch value := data.(type) {
		case int:
			return time.Duration(value) * time.Second, nil
		case int64:
			return time.Duration(value) * time.Second, nil
		case float64:
			return time.Duration(value * float64(time.Second)), nil
		case string:
			trimmed := strings.TrimSpace(value)
			if trimmed == "" {
				return time.Duration(0), nil
			}
			if strings.ContainsAny(trimmed, "hmsuµn") {
				parsed, err := time.ParseDuration(trimmed)
				if err != nil {
					return nil, fmt.Errorf("invalid duration %q: %w", trimmed, err)
				}
				return parsed, nil
			}
			return time.ParseDuration(trimmed + "s")
		default:
			return data, nil
		}
	}
}
