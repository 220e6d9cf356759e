package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vatmonitor/internal/config"
	"vatmonitor/internal/engine"
	"vatmonitor/internal/logger"
)

var (
	cfgFile string
	cfg     config.Config
	log     = zerolog.Nop()
	rootCmd = &cobra.Command{
		Use:   "vatmon",
		Short: "VAT collection monitoring dashboard",
		Long: `vatmon aggregates VAT-bearing transactions by sector, business, region
and period, and serves the results as a JSON dashboard API.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/vatmon/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("data-dir", "", "fixture directory (default: embedded sample data)")
	flags.String("timezone", "UTC", "timezone transaction dates are read in")
	flags.String("as-of", "", "reference time for trend windows, RFC3339 (default: latest transaction)")

	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("data.dir", flags.Lookup("data-dir"))
	_ = viper.BindPFlag("data.timezone", flags.Lookup("timezone"))
	_ = viper.BindPFlag("engine.as_of", flags.Lookup("as-of"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(exportCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		viper.AddConfigPath(fmt.Sprintf("%s/.config/vatmon", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VATMON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	c, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	l, err := logger.New(c.Log.Level, c.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cfg, log = c, l
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug().Str("file", used).Msg("config loaded")
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return nil
}

// loadEngine reads the configured fixtures and builds the dashboard engine.
func loadEngine(ctx context.Context) (*engine.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := cfg.EngineOptions()
	l := logger.FromContext(ctx)
	store, err := engine.LoadStore(ctx, cfg.DataFS(), engine.LoadOptions{
		Location:   loc,
		Normalizer: opts.Normalizer,
		Logger:     &l,
	})
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	return engine.New(store, opts), nil
}
