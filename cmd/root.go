package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/aita/heapdb/logger"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "heapdb",
	Short:         "Store fixed-length tuples in slotted heap files",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.heapdb.yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.String("log-output", "stderr", "log destination: stderr, stdout or a file path")
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.format", flags.Lookup("log-format"))
	viper.BindPFlag("log.output", flags.Lookup("log-output"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".heapdb")
	}
	viper.SetEnvPrefix("heapdb")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; every setting has a flag default.
	viper.ReadInConfig()
}

func newLogger() (*zap.Logger, func() error, error) {
	return logger.New(logger.Config{
		Level:      viper.GetString("log.level"),
		Format:     viper.GetString("log.format"),
		OutputFile: viper.GetString("log.output"),
	})
}
