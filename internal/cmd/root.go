package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	. "github.com/defval/di"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ely.by/tailor/internal/di"
	"ely.by/tailor/internal/otel"
	"ely.by/tailor/internal/version"
)

var configFile string
var otelShutdown func(context.Context) error

var RootCmd = &cobra.Command{
	Use:           "tailor",
	Short:         "Obtains signed Minecraft textures properties and builds unsigned ones",
	Version:       version.Version(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := di.InitConfig(configFile)
		if err != nil {
			return fmt.Errorf("unable to read the config: %w", err)
		}

		return initLogging(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if otelShutdown == nil {
			return nil
		}

		return otelShutdown(context.Background())
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to the config file (yaml, json or toml)")
}

func shouldGetContainer() (*Container, error) {
	container, err := di.New()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the application: %w", err)
	}

	return container, nil
}

// CLI output goes to stdout, so the logs are written to stderr unless they're exported through OTLP
func initLogging(ctx context.Context) error {
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.traces", true)
	viper.SetDefault("otel.metrics", true)
	viper.SetDefault("otel.logs", true)
	viper.SetDefault("otel.instance_id", "")

	var level slog.Level
	err := level.UnmarshalText([]byte(viper.GetString("log.level")))
	if err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if viper.GetBool("otel.enabled") {
		sdk, err := otel.SetupSDK(ctx, otel.Config{
			Traces:     viper.GetBool("otel.traces"),
			Metrics:    viper.GetBool("otel.metrics"),
			Logs:       viper.GetBool("otel.logs"),
			LogLevel:   level,
			InstanceId: viper.GetString("otel.instance_id"),
		})
		if err != nil {
			return fmt.Errorf("unable to setup OpenTelemetry: %w", err)
		}

		otelShutdown = sdk.Shutdown
		if sdk.Logger != nil {
			logger = sdk.Logger
		}
	}

	slog.SetDefault(logger)

	return nil
}
