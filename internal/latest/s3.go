package latest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type S3Config struct {
	S3Bucket       string `yaml:"s3_bucket"`
	S3PathTemplate string `yaml:"s3_path_template"`
}

func (c S3Config) String() string {
	return fmt.Sprintf("s3://%s/%s", c.S3Bucket, c.S3PathTemplate)
}

// S3 reads the latest version of a tool from an object in an S3 bucket. Credentials and region
// are taken from the default AWS configuration chain.
type S3 struct {
	log     *zap.Logger
	timeout time.Duration
	client  *s3.Client

	S3Config
}

func NewS3(ctx context.Context, logBuilder *logger.Builder, c *S3Config) (*S3, error) {
	log := logBuilder.Domain(logger.S3Domain).With(zap.String("s3-bucket", c.S3Bucket))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cfg, err := aws_config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Debug("Failed to load AWS configuration from environment.", zap.Error(err))
		return nil, err
	}

	return &S3{
		log:      log,
		timeout:  defaultTimeout,
		client:   s3.NewFromConfig(cfg),
		S3Config: *c,
	}, nil
}

func (s *S3) Latest(ctx context.Context, tool string) (string, error) {
	objectPath := instantiateTemplate(s.S3PathTemplate, tool)
	log := s.log.With(zap.String("tool", tool), zap.String("object-path", objectPath))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.S3Bucket),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		var s3err *types.NoSuchKey
		if errors.As(err, &s3err) {
			log.Debug("No such version object available in S3.", zap.Error(err))
		} else {
			log.Debug("Failed to lookup version object on S3.", zap.Error(err))
		}
		return "", err
	}
	defer func() { _ = out.Body.Close() }()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		log.Debug("Failed to download version object from S3.", zap.Error(err))
		return "", err
	}

	v, err := parseVersion(raw)
	if err != nil {
		log.Debug("Version object is empty.")
		return "", err
	}
	log.Debug("Read latest version from S3.", zap.String("version", v))
	return v, nil
}
