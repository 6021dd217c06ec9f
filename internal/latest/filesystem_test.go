package latest

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

func TestFileSystem(t *testing.T) {
	t.Parallel()

	fs := NewFileSystem(logger.NewTestBuilder(), &FileSystemConfig{FilePathTemplate: "/versions/{tool}.txt"}, true)

	_, err := fs.Latest(context.Background(), "HELM_VERSION")
	require.Error(t, err)

	require.NoError(t, util.WriteFile(fs.storage, "/versions/HELM_VERSION.txt", []byte("3.15.2\n"), 0o644))
	require.NoError(t, util.WriteFile(fs.storage, "/versions/OPA_VERSION.txt", []byte("\n"), 0o644))

	v, err := fs.Latest(context.Background(), "HELM_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "3.15.2", v)

	_, err = fs.Latest(context.Background(), "OPA_VERSION")
	assert.ErrorIs(t, err, ErrNoVersion)
}

func TestFileSystemOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs := NewFileSystem(logger.NewTestBuilder(), &FileSystemConfig{FilePathTemplate: dir + "/{tool}"}, false)

	require.NoError(t, util.WriteFile(fs.storage, dir+"/K9S_VERSION", []byte("0.32.5"), 0o644))

	v, err := fs.Latest(context.Background(), "K9S_VERSION")
	require.NoError(t, err)
	assert.Equal(t, "0.32.5", v)
}
