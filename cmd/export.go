package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/standwait/app"
	"github.com/kilianp07/standwait/core/model"
	"github.com/kilianp07/standwait/core/reference"
	"github.com/kilianp07/standwait/core/replay"
	"github.com/kilianp07/standwait/infra/logger"
	"github.com/kilianp07/standwait/pkg/export"
)

var exportFlags struct {
	date          string
	bucketMinutes int
	format        string
	out           string
	s3            bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the time buckets of a day as JSON or CSV",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportFlags.date, "date", "", "day to export (YYYY-MM-DD)")
	f.IntVar(&exportFlags.bucketMinutes, "bucket-minutes", 0, "bucket width in minutes (default from config)")
	f.StringVar(&exportFlags.format, "format", "", "json or csv (default from config)")
	f.StringVarP(&exportFlags.out, "out", "o", "", "output file, - for stdout (default <dir>/<conventional name>)")
	f.BoolVar(&exportFlags.s3, "s3", false, "upload to the configured S3 bucket")
	_ = exportCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(exportCmd)
}

// exportDay writes the buckets of date to w and returns how many were written.
func exportDay(ctx context.Context, store reference.Store, date time.Time, width time.Duration, format string, w io.Writer) (int, error) {
	evs, err := store.Transactions(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("%w: transactions: %v", model.ErrReference, err)
	}
	if len(evs) == 0 {
		return 0, fmt.Errorf("%w for %s", model.ErrNoData, date.Format("2006-01-02"))
	}
	buckets := replay.BuildBuckets(evs, width)
	return len(buckets), export.Write(w, format, buckets)
}

func runExport(cmd *cobra.Command, args []string) error {
	date, err := parseDate(exportFlags.date)
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

	width, err := bucketWidth(exportFlags.bucketMinutes, cfg.Replay.BucketMinutes, cfg.Replay.MaxBucketMinutes)
	if err != nil {
		return err
	}
	format := cfg.Export.Format
	if exportFlags.format != "" {
		format = exportFlags.format
	}
	if format != export.FormatJSON && format != export.FormatCSV {
		return fmt.Errorf("--format must be %s or %s", export.FormatJSON, export.FormatCSV)
	}

	store, closeStore, err := app.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	var buf bytes.Buffer
	n, err := exportDay(ctx, store, date, width, format, &buf)
	if err != nil {
		return err
	}

	name := export.FileName(date, width, format)
	var dest string
	switch {
	case exportFlags.s3 || cfg.Export.S3.Enabled:
		s3cfg := cfg.Export.S3
		s3cfg.Enabled = true
		up, err := export.NewS3Uploader(ctx, s3cfg)
		if err != nil {
			return err
		}
		key, err := up.Upload(ctx, name, export.ContentType(format), buf.Bytes())
		if err != nil {
			return err
		}
		dest = fmt.Sprintf("s3://%s/%s", s3cfg.Bucket, key)
	case exportFlags.out == "-":
		if _, err := buf.WriteTo(cmd.OutOrStdout()); err != nil {
			return err
		}
		dest = "stdout"
	default:
		dest = exportFlags.out
		if dest == "" {
			dest = filepath.Join(cfg.Export.Dir, name)
		}
		if err := os.WriteFile(dest, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
	}
	logger.New("export").Infof("wrote %d buckets to %s", n, dest)
	return nil
}
