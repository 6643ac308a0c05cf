package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/VisionGate/internal/config"
	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
)

// NewServeCmd runs the gateway until SIGINT or SIGTERM.
func NewServeCmd() *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference gateway",
		Long:  "Start the HTTP gateway (and the gRPC health service when enabled) and\nserve until interrupted. log.level is re-read when the config file changes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			cfg := cliCtx.Config
			if cliCtx.LogLevel != "" {
				cfg.Log.Level = cliCtx.LogLevel
			}
			logger, err := logging.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			logging.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			gw, err := buildGateway(ctx, cfg, logger)
			if err != nil {
				logger.Error("gateway initialization failed", logging.Err(err))
				return err
			}

			if cliCtx.ConfigPath != "" && !noWatch {
				watchLogLevel(cliCtx.ConfigPath, cliCtx.LogLevel, logger)
			}

			logger.Info("starting VisionGate",
				logging.String("version", Version),
				logging.String("addr", cfg.Server.Addr()),
				logging.String("backend", cfg.Backend.BaseURL),
				logging.String("default_model", gw.registry.Default()),
				logging.Bool("grpc", cfg.GRPC.Enabled),
				logging.Bool("cache", cfg.Cache.Enabled),
				logging.Bool("events", cfg.Events.Enabled),
			)
			return runGateway(ctx, gw)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch the config file for changes")
	return cmd
}

func runGateway(ctx context.Context, gw *gateway) error {
	if err := gw.run(ctx, nil); err != nil {
		gw.logger.Error("gateway stopped with error", logging.Err(err))
		return err
	}
	gw.logger.Info("gateway stopped")
	return nil
}

// watchLogLevel applies log.level from every config change. A level given
// on the command line wins over the file.
func watchLogLevel(path, override string, logger logging.Logger) {
	setter, ok := logger.(logging.LevelSetter)
	if !ok || override != "" {
		return
	}
	err := config.Watch(path, func(cfg *config.Config) {
		applyLogLevel(setter, cfg.Log.Level, logger)
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.String("path", path), logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.String("path", path), logging.Err(err))
	}
}

func applyLogLevel(setter logging.LevelSetter, level string, logger logging.Logger) {
	if level == "" || level == setter.Level() {
		return
	}
	prev := setter.Level()
	if err := setter.SetLevel(level); err != nil {
		logger.Warn("invalid log level in config", logging.String("level", level), logging.Err(err))
		return
	}
	logger.Info("log level changed", logging.String("from", prev), logging.String("to", level))
}

//Personal.AI order the ending
