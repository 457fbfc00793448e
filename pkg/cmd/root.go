// Package cmd implements the syscallguard command line.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hed1ad/syscallguard/pkg/detectors"
	"github.com/hed1ad/syscallguard/pkg/errors"
	"github.com/hed1ad/syscallguard/pkg/log"
)

const envPrefix = "SYSCALLGUARD"

// logger is configured by the root command before any subcommand runs.
var logger = zerolog.Nop()

var RootCmd = &cobra.Command{
	Use:   "syscallguard",
	Short: "syscall-frequency intrusion detector",
	Long:  "Scores process behaviour profiles with an isolation forest and flags intrusions.",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configFile := viper.GetString("config"); configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "load config %s", configFile)
			}
		}

		var err error
		logger, err = log.New("syscallguard", log.Options{
			Level:  viper.GetString("log-level"),
			Pretty: viper.GetBool("log-pretty"),
			Writer: cmd.ErrOrStderr(),
		})
		return err
	},
}

func init() {
	defaults := detectors.DefaultConfig()

	RootCmd.PersistentFlags().String("config", "", "config file (yaml)")
	RootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().Bool("log-pretty", true, "human readable log output instead of json")

	RootCmd.PersistentFlags().Int("trees", defaults.NumTrees, "number of isolation trees")
	RootCmd.PersistentFlags().Int("subsample", defaults.SubsampleSize, "samples drawn per tree")
	RootCmd.PersistentFlags().Int("max-depth", defaults.MaxDepth, "maximum tree depth")
	RootCmd.PersistentFlags().Float64("threshold", defaults.Threshold, "anomaly score threshold")
	RootCmd.PersistentFlags().Float64("contamination", defaults.Contamination, "expected anomaly fraction; overrides --threshold when positive")
	RootCmd.PersistentFlags().Int64("seed", defaults.Seed, "random seed; 0 picks one from the clock and logs it, so a fixed seed of 0 is not available")
	RootCmd.PersistentFlags().Int("workers", defaults.Workers, "goroutines used for training and scoring")

	RootCmd.PersistentFlags().String("metrics-file", "", "write prometheus metrics to this textfile after the run")
}

// bindConfig layers flags, environment and config file through viper.
func bindConfig() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Enable environment variable binding, the env vars are not overloaded yet.
	viper.AutomaticEnv()

	// Once the flags are defined, we can bind config keys with flags.
	return viper.BindPFlags(RootCmd.PersistentFlags())
}

// loadConfig returns the detector configuration from viper on top of the defaults.
// A zero seed is replaced by a clock seed and logged, so the run can be repeated.
func loadConfig() (detectors.Config, error) {
	cfg := detectors.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decode detector config")
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger.Info().Int64("seed", cfg.Seed).Msg("using random seed")

	return cfg, nil
}

func Execute() {
	if err := executeWith(bindConfig); err != nil {
		os.Exit(1)
	}
}

// executeWith binds configuration with bind and runs RootCmd. Failures are written to
// the command's error output; the logger is not configured yet at this point.
func executeWith(bind func() error) error {
	if err := bind(); err != nil {
		fmt.Fprintf(RootCmd.ErrOrStderr(), "Error: failed to bind persistent flags. please check the flag settings: %v\n", err)
		return err
	}
	return RootCmd.Execute()
}
