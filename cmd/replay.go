package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/standwait/app"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/replay"
	"github.com/kilianp07/standwait/infra/logger"
)

var replayFlags struct {
	date          string
	bucketMinutes int
	speed         float64
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a historical day as JSON lines",
	RunE:  runReplay,
}

func init() {
	f := replayCmd.Flags()
	f.StringVar(&replayFlags.date, "date", "", "day to replay (YYYY-MM-DD)")
	f.IntVar(&replayFlags.bucketMinutes, "bucket-minutes", 0, "bucket width in minutes (default from config)")
	f.Float64Var(&replayFlags.speed, "speed", 0, "replay speed multiplier (default from config)")
	_ = replayCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(replayCmd)
}

func parseDate(v string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func bucketWidth(minutes, def, limit int) (time.Duration, error) {
	if minutes == 0 {
		minutes = def
	}
	if minutes < 1 || minutes > limit {
		return 0, fmt.Errorf("--bucket-minutes must be between 1 and %d", limit)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	date, err := parseDate(replayFlags.date)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	cfg, done, err := bootstrap()
	if err != nil {
		return err
	}
	defer done()

	width, err := bucketWidth(replayFlags.bucketMinutes, cfg.Replay.BucketMinutes, cfg.Replay.MaxBucketMinutes)
	if err != nil {
		return err
	}
	speed := replayFlags.speed
	if speed <= 0 {
		speed = cfg.Replay.Speed
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.StartOutputs(ctx)

	session, err := svc.Planner.Load(ctx, svc.Store, date, width)
	if err != nil {
		return err
	}
	streamer := replay.Streamer{
		Interval:  svc.Planner.Config().Step(width, speed),
		Date:      date.Format("2006-01-02"),
		Publisher: svc.Bus,
		Logger:    logger.New("replay"),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	return streamer.Run(ctx, session, func(_ context.Context, seq int, snap model.Snapshot) error {
		return enc.Encode(struct {
			Seq      int            `json:"seq"`
			Snapshot model.Snapshot `json:"snapshot"`
		}{seq, snap})
	})
}
