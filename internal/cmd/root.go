package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/trackstore/internal/config"
	"github.com/Iron-Ham/trackstore/internal/logging"
	"github.com/Iron-Ham/trackstore/internal/tracking"
)

var rootCmd = &cobra.Command{
	Use:   "trackstore",
	Short: "Read and update resolver tracking files",
	Long: `Trackstore reads and updates the small key=value tracking files a
dependency resolver keeps next to cached artifacts. Every access takes an
advisory lock, so several trackstore processes (and any other program using
the same locking discipline) can share one cache directory safely.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/trackstore/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	bindFlags()
}

func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
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
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TRACKSTORE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., TRACKSTORE_TRACKING_LOCK_RETRIES for tracking.lock_retries
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newManager builds a tracking manager from the effective configuration.
// The returned close function flushes and closes the log file, if any.
func newManager() (*tracking.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	mgr := tracking.NewManager(
		// Several processes may share a log file; pid tells them apart.
		tracking.WithLogger(logger.WithComponent("tracking").With("pid", os.Getpid())),
		tracking.WithRetry(cfg.Tracking.LockRetries, cfg.Tracking.LockRetryDelay()),
		tracking.WithHeader(cfg.Tracking.Header),
	)
	return mgr, func() { _ = logger.Close() }, nil
}
