package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"inspect-sim/config"
	telegram "inspect-sim/internal/api"
	"inspect-sim/internal/container"
	"inspect-sim/internal/infrastructure/scene"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inspect-sim",
	Short: "Defect inspection simulator",
	Long: `inspect-sim scores photographs of defects taken by an inspection drone.

Each captured defect is graded on distance, viewing angle and classification;
the final card covers every defect in the scene, including missed ones.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)

		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	RunE:  runBot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	replayCmd.Flags().StringVar(&replayScene, "scene", "", "Scene file (default: INSPECT_SCENE)")
	replayCmd.Flags().StringVar(&replayShots, "shots", "", "Shots file")
	_ = replayCmd.MarkFlagRequired("shots")

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	sc, err := scene.Load(cfg.ScenePath)
	if err != nil {
		return err
	}
	logger.Info("scene loaded", zap.String("name", sc.Name), zap.Int("targets", len(sc.Targets)))

	appContainer := container.New(cfg, sc, logger)

	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, logger)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot is running")
	return bot.Run(ctx)
}
