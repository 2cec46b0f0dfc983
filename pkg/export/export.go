// Package export writes replay bucket timelines as JSON or CSV and uploads
// them to S3.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/standwait/core/model"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config selects the export format and destination.
type Config struct {
	Format string   `json:"format"`
	Dir    string   `json:"dir"`
	S3     S3Config `json:"s3"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	c.S3.SetDefaults()
}

// Validate checks the format and the S3 section.
func (c Config) Validate() error {
	if c.Format != FormatJSON && c.Format != FormatCSV {
		return fmt.Errorf("export: unknown format %q", c.Format)
	}
	return c.S3.Validate()
}

// Write encodes buckets in the given format.
func Write(w io.Writer, format string, buckets []model.TimeBucket) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, buckets)
	case FormatCSV:
		return WriteCSV(w, buckets)
	default:
		return fmt.Errorf("export: unknown format %q", format)
	}
}

// WriteJSON writes the buckets to w in JSON format.
func WriteJSON(w io.Writer, buckets []model.TimeBucket) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buckets)
}

// WriteCSV writes one row per bucket. Top items are joined as item:qty pairs.
func WriteCSV(w io.Writer, buckets []model.TimeBucket) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"location", "index", "start", "end", "order_count", "quantity", "top_items"}); err != nil {
		return err
	}
	for _, b := range buckets {
		top := make([]string, 0, len(b.TopItems))
		for _, it := range b.TopItems {
			top = append(top, it.Item+":"+strconv.Itoa(it.Quantity))
		}
		rec := []string{
			b.Location,
			strconv.Itoa(b.Index),
			b.Start.Format(time.RFC3339),
			b.End.Format(time.RFC3339),
			strconv.Itoa(b.OrderCount),
			strconv.Itoa(b.Quantity),
			strings.Join(top, ";"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the conventional name of an export for a day and width.
func FileName(date time.Time, width time.Duration, format string) string {
	return fmt.Sprintf("buckets_%s_%dm.%s", date.Format("2006-01-02"), int(width.Minutes()), format)
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}
