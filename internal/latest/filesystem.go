package latest

import (
	"context"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type FileSystemConfig struct {
	FilePathTemplate string `yaml:"file_path_template"`
}

func (c FileSystemConfig) String() string {
	return c.FilePathTemplate
}

// FileSystem reads the latest version of a tool from a file, for example one maintained on a shared
// network mount.
type FileSystem struct {
	log     *zap.Logger
	storage billy.Filesystem

	FileSystemConfig
}

func NewFileSystem(logBuilder *logger.Builder, c *FileSystemConfig, inMem bool) *FileSystem {
	var fs billy.Filesystem
	if inMem {
		fs = memfs.New()
	} else {
		fs = osfs.New("/")
	}

	return &FileSystem{
		log:              logBuilder.Domain(logger.FileSystemDomain),
		storage:          fs,
		FileSystemConfig: *c,
	}
}

func (s *FileSystem) Latest(_ context.Context, tool string) (string, error) {
	log := s.log.With(zap.String("tool", tool))

	// Relative templates are relative to the working directory, not the filesystem root.
	p, err := filepath.Abs(instantiateTemplate(s.FilePathTemplate, tool))
	if err != nil {
		log.Debug("Could not determine the path of the version file.", zap.Error(err))
		return "", err
	}
	log = log.With(zap.String("version-path", p))

	raw, err := util.ReadFile(s.storage, p)
	if err != nil {
		log.Debug("Failed to read version file.", zap.Error(err))
		return "", err
	}

	v, err := parseVersion(raw)
	if err != nil {
		log.Debug("Version file does not contain a version.")
		return "", err
	}
	log.Debug("Read latest version from file.", zap.String("version", v))
	return v, nil
}
