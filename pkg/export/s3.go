package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the upload target.
type S3Config struct {
	Enabled      bool   `json:"enabled"`
	Bucket       string `json:"bucket"`
	Region       string `json:"region"`
	Prefix       string `json:"prefix"`
	Endpoint     string `json:"endpoint"`
	UsePathStyle bool   `json:"use_path_style"`
}

// SetDefaults applies sane defaults.
func (c *S3Config) SetDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Prefix == "" {
		c.Prefix = "standwait"
	}
}

// Validate checks mandatory fields when uploads are enabled.
func (c S3Config) Validate() error {
	if c.Enabled && c.Bucket == "" {
		return fmt.Errorf("export: s3 bucket is required")
	}
	return nil
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores exports under a key prefix.
type S3Uploader struct {
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Uploader builds an uploader from the default AWS credential chain.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3UploaderWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewS3UploaderWithClient wraps an existing client.
func NewS3UploaderWithClient(client ObjectPutter, bucket, prefix string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key for name.
func (u *S3Uploader) Key(name string) string {
	return path.Join(u.prefix, name)
}

// Upload stores body under name and returns the object key.
func (u *S3Uploader) Upload(ctx context.Context, name, contentType string, body []byte) (string, error) {
	key := u.Key(name)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload %s to s3://%s: %w", key, u.bucket, err)
	}
	return key, nil
}

// Writer buffers writes and uploads them on Close.
type Writer struct {
	ctx         context.Context
	uploader    *S3Uploader
	name        string
	contentType string
	buf         bytes.Buffer
}

// NewWriter returns a Writer that uploads to name when closed.
func (u *S3Uploader) NewWriter(ctx context.Context, name, contentType string) *Writer {
	return &Writer{ctx: ctx, uploader: u, name: name, contentType: contentType}
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Close uploads the buffered content.
func (w *Writer) Close() error {
	_, err := w.uploader.Upload(w.ctx, w.name, w.contentType, w.buf.Bytes())
	return err
}
