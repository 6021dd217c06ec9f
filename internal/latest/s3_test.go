package latest

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3_lib "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestS3(t *testing.T) {
	t.Parallel()

	const bucketName = "test-bucket"

	backend := s3mem.New()
	require.NoError(t, backend.CreateBucket(bucketName))

	serv := httptest.NewServer(gofakes3.New(backend).Server())
	t.Cleanup(serv.Close)

	s3Config, err := aws_config.LoadDefaultConfig(
		context.Background(),
		aws_config.WithRegion("us-east-1"),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test-key", "test-secret", "")),
		aws_config.WithRequestChecksumCalculation(aws.RequestChecksumCalculationWhenRequired),
		aws_config.WithResponseChecksumValidation(aws.ResponseChecksumValidationWhenRequired),
	)
	require.NoError(t, err)

	client := s3_lib.NewFromConfig(s3Config, func(o *s3_lib.Options) {
		o.BaseEndpoint = aws.String(serv.URL)
		o.UsePathStyle = true
	})

	_, err = client.PutObject(context.Background(), &s3_lib.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String("latest/TORCH_VERSION"),
		Body:   bytes.NewReader([]byte("2.4.0\n")),
	})
	require.NoError(t, err)

	s3 := &S3{
		log:     zap.NewNop(),
		timeout: 10 * time.Second,
		client:  client,
		S3Config: S3Config{
			S3Bucket:       bucketName,
			S3PathTemplate: "latest/{tool}",
		},
	}

	v, err := s3.Latest(context.Background(), "TORCH_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "2.4.0", v)

	_, err = s3.Latest(context.Background(), "TENSORFLOW_VERSION")
	assert.Error(t, err)
}
