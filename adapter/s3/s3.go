// Package s3 implements an S3 export adapter.
//
// Every run completion event is written as a JSON object under a
// day-partitioned key, giving downstream batch consumers a durable
// record of reports without touching the gateway.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vantagehq/vantage/adapter"
)

// DefaultPrefix is the key prefix objects are written under.
const DefaultPrefix = "runs"

// API is the slice of the S3 client the adapter needs.
type API interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Config configures the S3 export adapter.
type Config struct {
	// Bucket is the destination bucket (required).
	Bucket string
	// Prefix is the key prefix (default "runs").
	Prefix string
	// Region overrides the ambient AWS region.
	Region string
}

// Adapter exports run completion events to S3.
type Adapter struct {
	cfg    Config
	client API
}

// New creates an S3 adapter using the ambient AWS credential chain.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 adapter: load aws config: %w", err)
	}
	return NewWithClient(cfg, awss3.NewFromConfig(awsCfg))
}

// NewWithClient creates an S3 adapter with an injected client.
func NewWithClient(cfg Config, client API) (*Adapter, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 adapter requires a bucket")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	return &Adapter{cfg: cfg, client: client}, nil
}

// Publish writes the event JSON to
// {prefix}/day={YYYY-MM-DD}/{run_id}.json. The day comes from the
// event timestamp so replays land in their original partition.
func (a *Adapter) Publish(ctx context.Context, event *adapter.RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("s3: marshal event: %w", err)
	}

	_, err = a.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(a.key(event)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: put object: %w", err)
	}
	return nil
}

func (a *Adapter) key(event *adapter.RunCompletedEvent) string {
	day := time.Now().UTC().Format("2006-01-02")
	if ts, err := time.Parse(time.RFC3339, event.Timestamp); err == nil {
		day = ts.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s/day=%s/%s.json", a.cfg.Prefix, day, event.RunID)
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
