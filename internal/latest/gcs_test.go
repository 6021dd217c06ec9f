package latest

import (
	"context"
	"testing"
	"time"

	"github.com/fsouza/fake-gcs-server/fakestorage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGCS(t *testing.T) {
	t.Parallel()

	const bucketName = "test-bucket"

	fakeGCS := fakestorage.NewServer([]fakestorage.Object{
		{
			ObjectAttrs: fakestorage.ObjectAttrs{BucketName: bucketName, Name: "latest/VAULT_VERSION"},
			Content:     []byte("1.17.2\n"),
		},
		{
			ObjectAttrs: fakestorage.ObjectAttrs{BucketName: bucketName, Name: "latest/OPA_VERSION"},
			Content:     []byte(""),
		},
	})
	t.Cleanup(fakeGCS.Stop)

	gcs := &GCS{
		log:     zap.NewNop(),
		timeout: 10 * time.Second,
		client:  fakeGCS.Client(),
		GCSConfig: GCSConfig{
			GCSBucket:       bucketName,
			GCSPathTemplate: "latest/{tool}",
		},
	}

	v, err := gcs.Latest(context.Background(), "VAULT_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "1.17.2", v)

	_, err = gcs.Latest(context.Background(), "OPA_VERSION")
	assert.ErrorIs(t, err, ErrNoVersion)

	_, err = gcs.Latest(context.Background(), "HELM_VERSION")
	assert.Error(t, err)
}
