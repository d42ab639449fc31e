package trail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client is the subset of *s3.Client used by S3Store.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures an S3Store.
type S3Config struct {
	Bucket         string `env:"TRAIL_S3_BUCKET"`
	Region         string `env:"TRAIL_S3_REGION" envDefault:"us-east-1"`
	Prefix         string `env:"TRAIL_S3_PREFIX" envDefault:"audit-trail/"`
	AccessKeyID    string `env:"TRAIL_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"TRAIL_S3_SECRET_KEY"`
	Endpoint       string `env:"TRAIL_S3_ENDPOINT"` // S3-compatible services such as MinIO
	ForcePathStyle bool   `env:"TRAIL_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// S3Store keeps each trail as a JSON array object at prefix+key+".json".
// Pushes are read-modify-write, serialised within the process; concurrent
// writers in other processes may lose lines.
type S3Store struct {
	client S3Client
	bucket string
	prefix string
	mu     sync.Mutex
}

// S3Option configures NewS3Store.
type S3Option func(*s3StoreOptions)

type s3StoreOptions struct {
	client        S3Client
	configOptions []func(*config.LoadOptions) error
}

// WithS3Client uses a pre-configured client, typically a mock in tests.
func WithS3Client(c S3Client) S3Option {
	return func(o *s3StoreOptions) { o.client = c }
}

// WithS3ConfigOption adds an AWS config load option.
func WithS3ConfigOption(opt func(*config.LoadOptions) error) S3Option {
	return func(o *s3StoreOptions) { o.configOptions = append(o.configOptions, opt) }
}

// NewS3Store builds a store from cfg, loading AWS configuration unless a
// client is supplied.
func NewS3Store(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("bucket is required"))
	}

	o := &s3StoreOptions{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
			))
		}
		loadOpts = append(loadOpts, o.configOptions...)

		awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		client = s3.NewFromConfig(awsCfg, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
		})
	}

	return &S3Store{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3Store) objectKey(key string) string {
	return s.prefix + strings.TrimPrefix(key, "/") + ".json"
}

func (s *S3Store) Push(ctx context.Context, key, line string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.read(ctx, key)
	if err != nil {
		return err
	}
	lines = append(lines, line)
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	body, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	return classifyS3Error(err)
}

func (s *S3Store) List(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx, key)
}

func (s *S3Store) read(ctx context.Context, key string) ([]string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if isNoSuchKey(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, classifyS3Error(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, errors.Join(ErrCorruptObject, err)
	}
	if lines == nil {
		lines = []string{}
	}
	return lines, nil
}

func isNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound")
}

func classifyS3Error(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("s3 %s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
