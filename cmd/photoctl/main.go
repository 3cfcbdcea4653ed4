// Command photoctl is the maintenance CLI for property photos: slug and
// path previews, bulk import, the orphan sweep, geocode backfill and admin
// user creation
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rental-portal/internal/config"
	"rental-portal/internal/server"
	"rental-portal/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "photoctl",
		Short:         "Manage rental property photos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "config/config.yaml", "Path to the YAML config file")
	root.PersistentFlags().Bool("verbose", false, "Log to stderr at debug level")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = v.BindEnv("config", "CONFIG_PATH")
	_ = v.BindEnv("verbose", "PHOTOCTL_VERBOSE")

	root.AddCommand(
		newSlugCmd(),
		newPathCmd(),
		newImportCmd(v),
		newSweepCmd(v),
		newGeocodeCmd(v),
		newCreateUserCmd(v),
	)
	return root
}

// loadConfig reads the same file and environment as the API server
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := v.GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(v *viper.Viper) (*zap.Logger, error) {
	if v.GetBool("verbose") {
		return logger.NewDevelopment(), nil
	}
	return logger.New("warn")
}

// openApp wires the full application without starting the scheduler or
// an HTTP listener
func openApp(ctx context.Context, v *viper.Viper) (*server.App, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(v)
	if err != nil {
		return nil, err
	}
	return server.NewApp(ctx, cfg, log)
}
