package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/menmadev/portfolio-api/pkg/logger"
	"github.com/menmadev/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

// Record is the archived copy of a delivered contact message
type Record struct {
	SubmissionID string    `json:"submissionId"`
	MessageID    string    `json:"messageId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Subject      string    `json:"subject"`
	Message      string    `json:"message"`
	Provider     string    `json:"challengeProvider"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

// ObjectPutter is the subset of the S3 API used by Store
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures an S3-compatible archive bucket
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Store writes JSON records to an S3-compatible bucket
type Store struct {
	client ObjectPutter
	bucket string
}

// NewStore creates an archive store. Static credentials are used when given,
// otherwise the default AWS credential chain applies.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client, err := newClient(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Archive storage client initialized",
		zap.String("bucket", opts.Bucket),
		zap.String("endpoint", opts.Endpoint),
		zap.String("region", opts.Region),
	)

	return NewStoreWithClient(client, opts.Bucket), nil
}

func newClient(ctx context.Context, opts Options) (*s3.Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKeyID,
				opts.SecretAccessKey,
				"", // session token not needed
			),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewStoreWithClient creates a store over an existing S3 client
func NewStoreWithClient(client ObjectPutter, bucket string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
	}
}

// Key returns the object key for a record, partitioned by day
func Key(record *Record) string {
	return fmt.Sprintf("contact/%s/%s.json", record.ReceivedAt.UTC().Format("2006/01/02"), record.SubmissionID)
}

// Save uploads record as JSON
func (s *Store) Save(ctx context.Context, record *Record) error {
	start := time.Now()
	operation := "putObject"

	body, err := json.Marshal(record)
	if err != nil {
		metrics.ArchiveRequestTotal.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("failed to encode archive record: %w", err)
	}

	key := Key(record)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ArchiveRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.ArchiveRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall(ctx, "archive_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to archive contact message: %w", err)
	}

	metrics.ArchiveRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.ArchiveRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall(ctx, "archive_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(body)),
	)

	return nil
}
