package latest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type GCSConfig struct {
	GCSBucket       string `yaml:"gcs_bucket"`
	GCSPathTemplate string `yaml:"gcs_path_template"`
}

func (c GCSConfig) String() string {
	return fmt.Sprintf("gs://%s/%s", c.GCSBucket, c.GCSPathTemplate)
}

// GCS reads the latest version of a tool from an object in a Google Cloud Storage bucket.
type GCS struct {
	log     *zap.Logger
	timeout time.Duration
	client  *storage.Client

	GCSConfig
}

func NewGCS(ctx context.Context, logBuilder *logger.Builder, c *GCSConfig) (*GCS, error) {
	log := logBuilder.Domain(logger.GCSDomain).With(zap.String("gcs-bucket", c.GCSBucket))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadOnly))
	if err != nil {
		log.Debug("Unable to set up a GCS storage client.", zap.Error(err))
		return nil, err
	}

	return &GCS{
		log:       log,
		timeout:   defaultTimeout,
		client:    client,
		GCSConfig: *c,
	}, nil
}

func (s *GCS) Latest(ctx context.Context, tool string) (string, error) {
	objectPath := instantiateTemplate(s.GCSPathTemplate, tool)
	log := s.log.With(zap.String("tool", tool), zap.String("object-path", objectPath))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	src, err := s.client.Bucket(s.GCSBucket).Object(objectPath).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			log.Debug("No version object found.")
		} else {
			log.Debug("Unable to open reader on remote GCS object.", zap.Error(err))
		}
		return "", err
	}
	defer func() { _ = src.Close() }()

	raw, err := io.ReadAll(src)
	if err != nil {
		log.Debug("Failed to download version object.", zap.Error(err))
		return "", err
	}

	v, err := parseVersion(raw)
	if err != nil {
		log.Debug("Version object is empty.")
		return "", err
	}
	log.Debug("Read latest version from GCS.", zap.String("version", v))
	return v, nil
}
