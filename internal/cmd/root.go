package cmd

import (
	"strings"

	"github.com/AGLOP-1354/taskboard/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "Kanban task board with live sync",
	Long: `Taskboard keeps a collection of tasks in a store and shows them as a
three-column kanban board (To Do, In Progress, Completed) that updates live
whenever the collection changes.

Tasks can be managed from the interactive board or with one-shot commands.
Several boards, terminals and machines can share one collection through the
file, redis or remote store backends.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/taskboard/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "store backend: file, memory, redis or remote")
	rootCmd.PersistentFlags().String("collection", "", "task collection name")
	bindFlags()
}

// bindFlags lets the global flags override configuration values.
func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("store.collection", rootCmd.PersistentFlags().Lookup("collection"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/taskboard")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TASKBOARD")
	// Replace dots with underscores for nested keys in env vars
	// e.g., TASKBOARD_STORE_BACKEND for store.backend
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
