package configsource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fdkevin0/htmltree"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "HTMLTREE"

func NewViperForCommand(cmd *cobra.Command, configFlagValue string) (*viper.Viper, error) {
	v := viper.New()
	applyViperDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := bindViperFlags(v, cmd); err != nil {
		return nil, err
	}

	configPath, explicit, err := resolveConfigFilePath(cmd, configFlagValue)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok && !explicit {
				return v, nil
			}
			return nil, htmltree.NewConfigError(fmt.Sprintf("failed to read config file %q", configPath), err)
		}
	}

	applyCompatibilityOverrides(v, cmd)
	return v, nil
}

// DefaultConfigPath is where `config init` writes when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(".", htmltree.AppName+".toml")
}

func applyViperDefaults(v *viper.Viper) {
	defaultConfig := htmltree.NewDefaultConfig()
	v.SetDefault("timeout", int(defaultConfig.HTTPTimeout.Seconds()))
	v.SetDefault("user_agent", defaultConfig.HTTPUserAgent)
	v.SetDefault("max_retries", defaultConfig.HTTPMaxRetries)
	v.SetDefault("retry_delay", int(defaultConfig.HTTPRetryDelay.Seconds()))
	v.SetDefault("header", defaultConfig.HTTPCustomHeaders)
	v.SetDefault("parse_mode", defaultConfig.ParseMode)
	v.SetDefault("select", defaultConfig.Selector)
	v.SetDefault("xpath", defaultConfig.XPath)
	v.SetDefault("max_depth", defaultConfig.MaxDepth)
	v.SetDefault("format", defaultConfig.Format)
	v.SetDefault("enable_cache", defaultConfig.CacheEnableCache)
	v.SetDefault("cache_dir", defaultConfig.CacheDir)
}

func bindViperFlags(v *viper.Viper, cmd *cobra.Command) error {
	visited := make(map[string]struct{})
	var bindErr error
	bindFlag := func(f *pflag.Flag) {
		if f == nil || bindErr != nil {
			return
		}
		if _, ok := visited[f.Name]; ok {
			return
		}
		visited[f.Name] = struct{}{}
		configName := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(configName, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag %q to key %q: %w", f.Name, configName, err)
		}
	}

	// InheritedFlags merges persistent flags into Flags, so visit it first.
	cmd.InheritedFlags().VisitAll(bindFlag)
	cmd.Flags().VisitAll(bindFlag)
	return bindErr
}

func applyCompatibilityOverrides(v *viper.Viper, cmd *cobra.Command) {
	_, hasEnvNoCache := os.LookupEnv(EnvPrefix + "_NO_CACHE")
	if flagChanged(cmd, "no-cache") || hasEnvNoCache || v.InConfig("no_cache") {
		v.Set("enable_cache", !v.GetBool("no_cache"))
	}
}

func resolveConfigFilePath(cmd *cobra.Command, configFlagValue string) (string, bool, error) {
	if flagChanged(cmd, "config") {
		path := strings.TrimSpace(configFlagValue)
		if path == "" {
			return "", true, errors.New("--config must not be empty")
		}
		return path, true, nil
	}

	if value := strings.TrimSpace(os.Getenv(EnvPrefix + "_CONFIG")); value != "" {
		return value, true, nil
	}

	candidates := []string{
		DefaultConfigPath(),
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil && userConfigDir != "" {
		candidates = append(candidates, filepath.Join(userConfigDir, htmltree.AppName, "config.toml"))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, false, nil
		}
	}

	return "", false, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Changed
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil {
		return f.Changed
	}
	return false
}
