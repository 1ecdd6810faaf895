package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SSK015/Workload-Profiling/internal/config"
	"github.com/SSK015/Workload-Profiling/pkg/logutil"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logutil.InitLogger("info")

	go func() {
		sigch := make(chan os.Signal, 1)
		signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigch
		logutil.GetLogger().Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	cmd := &cli.Command{
		Name:  "memhot",
		Usage: "infer working-set address ranges and hot-set persistence from perf memory samples",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars("MEMHOT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("MEMHOT_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			rangeCommand(),
			persistCommand(),
			pointsCommand(),
			filterCommand(),
			rescaleCommand(),
		},
	}

	err := cmd.Run(ctx, os.Args)
	logger := logutil.GetLogger()
	defer logger.Sync()
	if err != nil {
		logger.Error("memhot failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// setup loads the configuration file, starts the logger and applies the
// flags that were set explicitly on the command line.
func setup(c *cli.Command, apply ...func(*cli.Command, *config.Config) error) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := logutil.InitLogger(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: log_level: %w", config.ErrInvalidConfig, err)
	}
	for _, fn := range apply {
		if err := fn(c, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
