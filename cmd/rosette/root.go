// Package rosette implements the rosette command-line tool, a thin front
// end over the client binding for exercising the Rosette API from a shell.
package rosette

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/basistech/rosette-go/pkg/config"
	rosetteLogger "github.com/basistech/rosette-go/pkg/logger"
	"github.com/basistech/rosette-go/pkg/rosette"
	"github.com/basistech/rosette-go/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string

	// telemetryHandler buffers failed-request records for the lifetime of
	// the process; Execute flushes it so short runs still persist them.
	telemetryHandler *telemetry.ParquetHandler

	rootCmd = &cobra.Command{
		Use:   "rosette",
		Short: "Rosette: text analytics from the command line",
		Long: `Rosette sends text to the Rosette API and prints the analysis results.

Supported operations include language identification, sentence and token
segmentation, morphology, entity extraction, categorization, sentiment,
relationship extraction, name translation and name similarity.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	flushTelemetry()
	return err
}

// flushTelemetry writes any buffered telemetry records before the process
// exits.
func flushTelemetry() {
	if telemetryHandler == nil {
		return
	}
	if err := telemetryHandler.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "failed to flush telemetry:", err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rosette.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("key", "", "Rosette API key (or set ROSETTE_API_KEY)")
	rootCmd.PersistentFlags().String("service-url", "", "Rosette service URL")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format (json, yaml)")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("api.key", rootCmd.PersistentFlags().Lookup("key"))
	viper.BindPFlag("api.service_url", rootCmd.PersistentFlags().Lookup("service-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".rosette" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rosette")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newClient builds a rosette.Client from the loaded configuration.
func newClient() (*rosette.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := rosetteLogger.ParseLevel(cfg.Log.Level)
	log := rosetteLogger.NewLogger(os.Stderr, level, cfg.Log.Format)
	if cfg.Telemetry.ParquetPath != "" {
		handler, err := telemetry.NewParquetHandler(log.Handler(), cfg.Telemetry.ParquetPath)
		if err != nil {
			log.Warn("telemetry disabled", "path", cfg.Telemetry.ParquetPath, "error", err)
		} else {
			telemetryHandler = handler
			log = slog.New(handler)
		}
	}

	opts := []rosette.Option{
		rosette.WithServiceURL(cfg.API.ServiceURL),
		rosette.WithRetries(cfg.API.Retries),
		rosette.WithRefreshDuration(cfg.API.RefreshDuration),
		rosette.WithDebug(cfg.API.Debug),
		rosette.WithLogger(log),
	}
	if cfg.API.Key != "" {
		opts = append(opts, rosette.WithUserKey(cfg.API.Key))
	}
	if !cfg.API.ReuseConnection {
		opts = append(opts, rosette.WithoutConnectionReuse())
	}
	if cfg.CircuitBreaker.Enabled {
		opts = append(opts, rosette.WithCircuitBreaker(rosette.BreakerConfig{
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         time.Duration(cfg.CircuitBreaker.Interval) * time.Second,
			Timeout:          time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
			ReadyToTripRatio: cfg.CircuitBreaker.ReadyToTripRatio,
		}))
	}

	return rosette.NewClient(opts...), nil
}
