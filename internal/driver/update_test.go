package driver

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helcaraxan/pinbump/internal/config"
	"github.com/Helcaraxan/pinbump/internal/latest"
	"github.com/Helcaraxan/pinbump/internal/logger"
)

const testVersions = `DOCKER_VERSION="20.10.0"
KUBERNETES_VERSION="v1.20.0"
HELM_VERSION="3.5.4"
RUST_VERSION="1.52.1"
`

func newTestOpts(t *testing.T, content string) (*CommonOpts, *bytes.Buffer) {
	t.Helper()

	conf := config.Default()
	conf.VersionsFile = filepath.Join(t.TempDir(), "versions.conf")
	if content != "" {
		require.NoError(t, os.WriteFile(conf.VersionsFile, []byte(content), 0o644))
	}

	logBuilder := logger.NewTestBuilder()
	out := &bytes.Buffer{}
	return &CommonOpts{
		LogBuilder: logBuilder,
		Log:        logBuilder.Domain(logger.CLIDomain),
		Config:     conf,
		Stdout:     out,
	}, out
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	opts, out := newTestOpts(t, testVersions)
	require.NoError(t, (&updateOptions{CommonOpts: opts}).update(context.Background()))

	content, err := os.ReadFile(opts.Config.VersionsFile)
	require.NoError(t, err)
	assert.Equal(t, `DOCKER_VERSION="20.10.7"
KUBERNETES_VERSION="v1.20.0"
HELM_VERSION="latest"
RUST_VERSION="latest"
`, string(content))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, len(config.DefaultTools()))
	assert.Equal(t, "DOCKER_VERSION updated to 20.10.7", string(lines[0]))
	assert.Equal(t, "KUBERNETES_VERSION updated to v1.21.0", string(lines[1]))
	assert.Equal(t, "TENSORFLOW_VERSION updated to latest", string(lines[17]))

	_, err = os.Stat(opts.Config.VersionsFile + ".pid")
	assert.True(t, errors.Is(err, fs.ErrNotExist), "lock file should have been released")
}

func TestUpdateMissingFile(t *testing.T) {
	t.Parallel()

	opts, out := newTestOpts(t, "")
	err := (&updateOptions{CommonOpts: opts}).update(context.Background())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "error %q should be of type %q", err, fs.ErrNotExist)
	assert.Empty(t, out.String())

	_, err = os.Stat(opts.Config.VersionsFile)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "versions file should not have been created")
	_, err = os.Stat(opts.Config.VersionsFile + ".pid")
	assert.True(t, errors.Is(err, fs.ErrNotExist), "lock file should have been released")
}

func TestUpdateWithSources(t *testing.T) {
	t.Parallel()

	opts, out := newTestOpts(t, testVersions)

	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "HELM_VERSION"), []byte("3.15.2\n"), 0o644))

	opts.Config.Tools = []string{"HELM_VERSION", "RUST_VERSION", "DOCKER_VERSION"}
	opts.Config.Latest = map[string]string{"DOCKER_VERSION": "24.0.9"}
	opts.Config.Sources = map[string]*latest.SourceConfig{
		"HELM_VERSION": {FileSystemConfig: &latest.FileSystemConfig{FilePathTemplate: filepath.Join(sourceDir, "{tool}")}},
		// The source has no file for this tool so the table is used instead.
		"RUST_VERSION": {FileSystemConfig: &latest.FileSystemConfig{FilePathTemplate: filepath.Join(sourceDir, "missing-{tool}")}},
	}
	require.NoError(t, opts.Config.Validate())

	require.NoError(t, (&updateOptions{CommonOpts: opts}).update(context.Background()))

	content, err := os.ReadFile(opts.Config.VersionsFile)
	require.NoError(t, err)
	assert.Equal(t, `DOCKER_VERSION="24.0.9"
KUBERNETES_VERSION="v1.20.0"
HELM_VERSION="3.15.2"
RUST_VERSION="latest"
`, string(content))
	assert.Equal(t, "HELM_VERSION updated to 3.15.2\nRUST_VERSION updated to latest\nDOCKER_VERSION updated to 24.0.9\n", out.String())
}

func TestUpdateInvalidTool(t *testing.T) {
	t.Parallel()

	opts, out := newTestOpts(t, testVersions)
	opts.Config.Tools = []string{"DOCKER_VERSION", "HELM_(VERSION", "RUST_VERSION"}

	require.Error(t, (&updateOptions{CommonOpts: opts}).update(context.Background()))
	assert.Equal(t, "DOCKER_VERSION updated to 20.10.7\n", out.String())

	content, err := os.ReadFile(opts.Config.VersionsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `DOCKER_VERSION="20.10.7"`)
	assert.Contains(t, string(content), `RUST_VERSION="1.52.1"`)
}
