package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kubedo8/web-ui/cmd/util"
	"github.com/kubedo8/web-ui/pkg/config"
)

// addConfigFlags declares the flags shared by every command working on a snapshot.
func addConfigFlags(flags *pflag.FlagSet) {
	defaultConfig := config.DefaultConfig()

	flags.String("log-format", defaultConfig.Log.Format, "the log format to output logs in")
	flags.String("log-level", defaultConfig.Log.Level, "the log level to use")

	flags.Int64("cache-max-documents", defaultConfig.Cache.MaxDocuments, "the maximum number of documents whose data values are cached")
	flags.Int64("cache-max-link-instances", defaultConfig.Cache.MaxLinkInstances, "the maximum number of link instances whose data values are cached")
	flags.Int64("cache-max-selectors", defaultConfig.Cache.MaxSelectors, "the maximum number of memoized selector results")
	flags.Duration("cache-ttl", defaultConfig.Cache.TTL, "how long cached data values are kept")

	flags.Bool("push-channel-enabled", defaultConfig.PushChannel.Enabled, "enable/disable applying push channel events")
	flags.StringSlice("experimentals", defaultConfig.Experimentals, "a list of experimental features to enable")
}

// bindConfigFlagsFunc binds the cobra cmd flags to the equivalent config value being managed
// by viper. Binding happens before the command runs so commands sharing a flag do not override
// each other.
func bindConfigFlagsFunc(flags *pflag.FlagSet) func(*cobra.Command, []string) {
	return func(command *cobra.Command, args []string) {
		util.MustBindPFlag("log.format", flags.Lookup("log-format"))
		util.MustBindEnv("log.format", "LUMEER_LOG_FORMAT")

		util.MustBindPFlag("log.level", flags.Lookup("log-level"))
		util.MustBindEnv("log.level", "LUMEER_LOG_LEVEL")

		util.MustBindPFlag("cache.maxDocuments", flags.Lookup("cache-max-documents"))
		util.MustBindEnv("cache.maxDocuments", "LUMEER_CACHE_MAX_DOCUMENTS", "LUMEER_CACHE_MAXDOCUMENTS")

		util.MustBindPFlag("cache.maxLinkInstances", flags.Lookup("cache-max-link-instances"))
		util.MustBindEnv("cache.maxLinkInstances", "LUMEER_CACHE_MAX_LINK_INSTANCES", "LUMEER_CACHE_MAXLINKINSTANCES")

		util.MustBindPFlag("cache.maxSelectors", flags.Lookup("cache-max-selectors"))
		util.MustBindEnv("cache.maxSelectors", "LUMEER_CACHE_MAX_SELECTORS", "LUMEER_CACHE_MAXSELECTORS")

		util.MustBindPFlag("cache.ttl", flags.Lookup("cache-ttl"))
		util.MustBindEnv("cache.ttl", "LUMEER_CACHE_TTL")

		util.MustBindPFlag("pushChannel.enabled", flags.Lookup("push-channel-enabled"))
		util.MustBindEnv("pushChannel.enabled", "LUMEER_PUSH_CHANNEL_ENABLED", "LUMEER_PUSHCHANNEL_ENABLED")

		util.MustBindPFlag("experimentals", flags.Lookup("experimentals"))
		util.MustBindEnv("experimentals", "LUMEER_EXPERIMENTALS")
	}
}

// ReadConfig returns the configuration based on the values provided in 'config.yaml', the environment
// and the command flags. The 'config.yaml' file is loaded from '/etc/lumeer', '$HOME/.lumeer', or the
// current working directory. If no configuration file is present, the default values are returned.
func ReadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()

	viper.SetTypeByDefaultValue(true)
	err := viper.ReadInConfig()
	if err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	return cfg, nil
}
