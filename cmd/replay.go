package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"inspect-sim/internal/container"
	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/infrastructure/scene"
	"inspect-sim/internal/infrastructure/terminal"
)

var (
	replayScene string
	replayShots string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a scripted run and print the report and final grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := replayScene
		if path == "" {
			path = cfg.ScenePath
		}

		sc, err := scene.Load(path)
		if err != nil {
			return err
		}
		shots, err := scene.LoadShots(replayShots)
		if err != nil {
			return err
		}

		_, err = replay(cmd.Context(), container.New(cfg, sc, logger), shots, cmd.OutOrStdout())
		return err
	},
}

// replay прогоняет сценарий через новую сессию и печатает отчёт и итог
func replay(ctx context.Context, c *container.Container, shots []scene.Shot, out io.Writer) (entity.FinalGrade, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	printer := terminal.NewPrinter(out)
	session, camera, err := c.NewSession(container.Sinks{Report: printer, Grade: printer})
	if err != nil {
		return entity.FinalGrade{}, err
	}
	defer camera.Close()
	defer session.Close()

	for i, shot := range shots {
		if shot.Camera != nil {
			session.SetCamera(*shot.Camera)
		}

		if shot.AimOnly {
			sig := session.Aim(ctx, shot.Ray())
			c.Logger.Info("aim", zap.Int("shot", i), zap.Bool("on_target", sig.OnTarget), zap.Float64("score", sig.Score))
			continue
		}

		res, err := session.Shoot(ctx, shot.Ray())
		if err != nil {
			c.Logger.Warn("shot failed", zap.Int("shot", i), zap.Error(err))
		}
		fields := []zap.Field{zap.Int("shot", i), zap.String("outcome", string(res.Outcome))}
		if res.Defect != nil {
			fields = append(fields, zap.String("defect_id", res.Defect.ID), zap.Int("score", res.Defect.TotalScore()))
		}
		c.Logger.Info("shoot", fields...)
	}

	if _, err := session.ToggleReport(ctx); err != nil {
		return entity.FinalGrade{}, fmt.Errorf("render report: %w", err)
	}
	return session.Finish(ctx), nil
}

