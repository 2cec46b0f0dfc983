package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/standwait/core/model"
)

var start = time.Date(2024, 4, 5, 19, 0, 0, 0, time.UTC)

func sampleBuckets() []model.TimeBucket {
	return []model.TimeBucket{
		{
			Location: "North Grill", Index: 0, Start: start, End: start.Add(5 * time.Minute),
			OrderCount: 3, Quantity: 5,
			TopItems: []model.ItemQuantity{{Item: "Hot Dog", Quantity: 4}, {Item: "Fries", Quantity: 1}},
		},
		{Location: "South Taps", Index: 1, Start: start.Add(5 * time.Minute), End: start.Add(10 * time.Minute), OrderCount: 1, Quantity: 2},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleBuckets()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "top_items", rows[0][6])
	assert.Equal(t, []string{"North Grill", "0", "2024-04-05T19:00:00Z", "2024-04-05T19:05:00Z", "3", "5", "Hot Dog:4;Fries:1"}, rows[1])
	assert.Equal(t, "", rows[2][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleBuckets()))

	var got []model.TimeBucket
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Hot Dog", got[0].TopItems[0].Item)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(io.Discard, "xml", nil))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "buckets_2024-04-05_5m.csv", FileName(start, 5*time.Minute, FormatCSV))
	assert.Equal(t, "text/csv", ContentType(FormatCSV))
	assert.Equal(t, "application/json", ContentType(FormatJSON))
}

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	fp := &fakePutter{}
	u := NewS3UploaderWithClient(fp, "exports", "venue")
	w := u.NewWriter(context.Background(), FileName(start, 5*time.Minute, FormatJSON), ContentType(FormatJSON))
	require.NoError(t, WriteJSON(w, sampleBuckets()))
	assert.Empty(t, fp.inputs)
	require.NoError(t, w.Close())

	require.Len(t, fp.inputs, 1)
	assert.Equal(t, "exports", *fp.inputs[0].Bucket)
	assert.Equal(t, "venue/buckets_2024-04-05_5m.json", *fp.inputs[0].Key)
	assert.Equal(t, "application/json", *fp.inputs[0].ContentType)
	assert.Contains(t, string(fp.bodies[0]), "North Grill")
}

func TestS3UploadError(t *testing.T) {
	u := NewS3UploaderWithClient(&fakePutter{err: errors.New("denied")}, "exports", "")
	_, err := u.Upload(context.Background(), "a.json", "application/json", []byte("{}"))
	assert.ErrorContains(t, err, "denied")
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.NoError(t, c.Validate())
	c.S3.Enabled = true
	assert.Error(t, c.Validate())
	c.Format = "xml"
	assert.Error(t, c.Validate())
}
