package report

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mfgquality/burnin/internal/config"
)

// Archiver stores pass reports. Archival is best effort: a failed upload is
// logged by the caller and never fails the pass.
type Archiver interface {
	Archive(ctx context.Context, r *Report) (string, error)
}

// NoopArchiver discards reports. Used when archival is disabled.
type NoopArchiver struct{}

func (NoopArchiver) Archive(ctx context.Context, r *Report) (string, error) {
	return "", nil
}

// putObjectAPI is the slice of the S3 client used here, for test doubles.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads reports to an S3-compatible bucket (MinIO in the
// factory deployment).
type S3Archiver struct {
	cfg config.ArchiveConfig

	newClient func(ctx context.Context) (putObjectAPI, error)
}

func NewS3Archiver(cfg config.ArchiveConfig) *S3Archiver {
	a := &S3Archiver{cfg: cfg}
	a.newClient = a.defaultClient
	return a
}

func (a *S3Archiver) defaultClient(ctx context.Context) (putObjectAPI, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(a.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.cfg.S3RootUser,
			a.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return client, nil
}

// Archive uploads the report and returns its object key.
func (a *S3Archiver) Archive(ctx context.Context, r *Report) (string, error) {
	data, err := r.Marshal()
	if err != nil {
		return "", err
	}

	client, err := a.newClient(ctx)
	if err != nil {
		return "", err
	}

	key := r.StorageKey()
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
