package backup

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/archivist/internal/config"
	"github.com/dmitrijs2005/archivist/internal/netx"
	"github.com/google/uuid"
)

const presignExpiry = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// S3Sink uploads backups to a bucket through a presigned PUT URL, which
// works the same against AWS and MinIO.
type S3Sink struct {
	cfg    config.S3
	client *http.Client
}

func NewS3Sink(cfg config.S3, client *http.Client) *S3Sink {
	return &S3Sink{cfg: cfg, client: client}
}

func (s *S3Sink) Name() string { return "s3" }

// ObjectKey returns a unique key for a backup taken at ts.
func ObjectKey(ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("backups/%d/%02d/%02d/%s.json", ts.Year(), ts.Month(), ts.Day(), uuid.New())
}

func (s *S3Sink) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.RootUser,
			s.cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}

// Store presigns a PUT for a fresh key and uploads data to it. The returned
// location is s3://bucket/key.
func (s *S3Sink) Store(ctx context.Context, doc Document, data []byte) (string, error) {
	pc, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.cfg.Bucket
	key := ObjectKey(doc.Timestamp)

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}

	if err := netx.PutPresigned(ctx, s.client, req.URL, "", data); err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
