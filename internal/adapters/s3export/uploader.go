// Package s3export copies finished CSV exports to an S3 bucket.
package s3export

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"blinkit_scraper/internal/domain"
)

// putter is the slice of the S3 API the uploader uses.
type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	client putter
	bucket string
	prefix string
	logger zerolog.Logger
}

// New loads the default AWS configuration for region and returns an uploader
// writing under bucket/prefix.
func New(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (*Uploader, error) {
	logger = logger.With().Str("component", "s3-export").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 uploader initialised")

	return NewWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

func NewWithClient(c putter, bucket, prefix string, logger zerolog.Logger) *Uploader {
	return &Uploader{client: c, bucket: bucket, prefix: prefix, logger: logger}
}

// Key is the object key of a run's export.
func (u *Uploader) Key(run domain.Run) string {
	return u.prefix + run.ID + ".csv"
}

// Upload puts the file at localPath under <prefix><run id>.csv and returns
// its s3:// location.
func (u *Uploader) Upload(ctx context.Context, run domain.Run, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat export: %w", err)
	}

	key := u.Key(run)

	if _, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
		ContentType:   aws.String("text/csv"),
		Metadata: map[string]string{
			"run-id":       run.ID,
			"records":      fmt.Sprint(run.Records),
			"mock-records": fmt.Sprint(run.MockRecords),
		},
	}); err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", u.bucket, key, err)
	}

	loc := "s3://" + u.bucket + "/" + key
	u.logger.Info().Str("location", loc).Int64("bytes", st.Size()).Msg("export uploaded to S3")
	return loc, nil
}
