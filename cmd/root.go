// Package cmd contains all the commands included in the binary file.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand enables all children commands to read flags from CLI flags, environment variables prefixed with LUMEER, or config.yaml (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("LUMEER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/lumeer", "$HOME/.lumeer", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	return &cobra.Command{
		Use:   "lumeer",
		Short: "Resolve queries, permissions and perspective configs over a Lumeer workspace snapshot",
		Long: `Resolve queries, permissions and perspective configs over a Lumeer workspace snapshot.

Snapshots are YAML or JSON files holding the schema, the documents and the link instances of one workspace
together with the current user. Every command works offline on such a snapshot.`,
		SilenceUsage: true,
	}
}
