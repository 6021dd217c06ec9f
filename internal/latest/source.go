package latest

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

var (
	ErrInvalidSource = errors.New("invalid source")
	ErrNoVersion     = errors.New("no version found")
)

// Source knows where to look up the latest version of a tool.
type Source interface {
	fmt.Stringer
	Latest(ctx context.Context, tool string) (string, error)
}

var (
	// To guarantee that implementations remain compatible with the interface.
	_ Source = &FileSystem{}
	_ Source = &GCS{}
	_ Source = &Git{}
	_ Source = &GitHub{}
	_ Source = &HTTPS{}
	_ Source = &S3{}
)

// SourceConfig is the configuration of a single source. Exactly one of the embedded configurations
// may be set, which is determined by the prefix of the keys used in the YAML definition.
type SourceConfig struct {
	*FileSystemConfig
	*GCSConfig
	*GitConfig
	*GitHubConfig
	*HTTPSConfig
	*S3Config
}

func (c *SourceConfig) String() string {
	switch {
	case c.FileSystemConfig != nil:
		return c.FileSystemConfig.String()
	case c.GCSConfig != nil:
		return c.GCSConfig.String()
	case c.GitConfig != nil:
		return c.GitConfig.String()
	case c.GitHubConfig != nil:
		return c.GitHubConfig.String()
	case c.HTTPSConfig != nil:
		return c.HTTPSConfig.String()
	case c.S3Config != nil:
		return c.S3Config.String()
	default:
		return ""
	}
}

func (c *SourceConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	m := map[string]interface{}{}
	if err := unmarshal(&m); err != nil {
		return fmt.Errorf("can not unmarshal non-mapping yaml as a source definition: %w", ErrInvalidSource)
	}

	var isFile, isGCS, isGit, isGitHub, isHTTPS, isS3 bool
	for key := range m {
		switch strings.Split(key, "_")[0] {
		case "file":
			isFile = true
		case "gcs":
			isGCS = true
		case "git":
			isGit = true
		case "github":
			isGitHub = true
		case "https":
			isHTTPS = true
		case "s3":
			isS3 = true
		default:
			return fmt.Errorf("unknown source key %q: %w", key, ErrInvalidSource)
		}
	}

	if isFile {
		c.FileSystemConfig = &FileSystemConfig{}
		if err := unmarshal(c.FileSystemConfig); err != nil {
			return err
		}
	}
	if isGCS {
		c.GCSConfig = &GCSConfig{}
		if err := unmarshal(c.GCSConfig); err != nil {
			return err
		}
	}
	if isGit {
		c.GitConfig = &GitConfig{}
		if err := unmarshal(c.GitConfig); err != nil {
			return err
		}
	}
	if isGitHub {
		c.GitHubConfig = &GitHubConfig{}
		if err := unmarshal(c.GitHubConfig); err != nil {
			return err
		}
	}
	if isHTTPS {
		c.HTTPSConfig = &HTTPSConfig{}
		if err := unmarshal(c.HTTPSConfig); err != nil {
			return err
		}
	}
	if isS3 {
		c.S3Config = &S3Config{}
		if err := unmarshal(c.S3Config); err != nil {
			return err
		}
	}
	return c.Validate()
}

func (c *SourceConfig) Validate() error {
	var count int
	for _, sc := range []interface{}{c.FileSystemConfig, c.GCSConfig, c.GitConfig, c.GitHubConfig, c.HTTPSConfig, c.S3Config} {
		if !reflect.ValueOf(sc).IsNil() {
			count++
		}
	}

	if count == 0 {
		return fmt.Errorf("source has no configuration attached: %w", ErrInvalidSource)
	} else if count > 1 {
		return fmt.Errorf("source has multiple configurations attached: %w", ErrInvalidSource)
	}

	switch {
	case c.FileSystemConfig != nil:
		if c.FilePathTemplate == "" {
			return fmt.Errorf("filesystem source has no path template set: %w", ErrInvalidSource)
		}

	case c.GCSConfig != nil:
		if c.GCSBucket == "" || c.GCSPathTemplate == "" {
			return fmt.Errorf("gcs source has no bucket and / or path template set: %w", ErrInvalidSource)
		}

	case c.GitConfig != nil:
		if c.GitURL == "" {
			return fmt.Errorf("git source has no url set: %w", ErrInvalidSource)
		}

	case c.GitHubConfig != nil:
		if len(strings.Split(c.GitHubSlug, "/")) != 2 {
			return fmt.Errorf("github source slug %q is not of the form 'owner/repo': %w", c.GitHubSlug, ErrInvalidSource)
		}

	case c.HTTPSConfig != nil:
		if c.HTTPSURLTemplate == "" {
			return fmt.Errorf("https source has no url template set: %w", ErrInvalidSource)
		}

	case c.S3Config != nil:
		if c.S3Bucket == "" || c.S3PathTemplate == "" {
			return fmt.Errorf("s3 source has no bucket and / or path template set: %w", ErrInvalidSource)
		}
	}
	return nil
}

// New instantiates the configured source. Cloud sources set up their client here which is why a
// context is required.
func (c *SourceConfig) New(ctx context.Context, logBuilder *logger.Builder) (Source, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	switch {
	case c.FileSystemConfig != nil:
		return NewFileSystem(logBuilder, c.FileSystemConfig, false), nil
	case c.GCSConfig != nil:
		return NewGCS(ctx, logBuilder, c.GCSConfig)
	case c.GitConfig != nil:
		return NewGit(logBuilder, c.GitConfig), nil
	case c.GitHubConfig != nil:
		return NewGitHub(logBuilder, c.GitHubConfig)
	case c.HTTPSConfig != nil:
		return NewHTTPS(logBuilder, c.HTTPSConfig), nil
	default:
		return NewS3(ctx, logBuilder, c.S3Config)
	}
}

const defaultTimeout = time.Minute

func instantiateTemplate(tmpl string, tool string) string {
	return strings.ReplaceAll(tmpl, "{tool}", tool)
}

// parseVersion extracts the version from the raw content of a version file or object: the first
// line, stripped of surrounding whitespace.
func parseVersion(raw []byte) (string, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(string(raw)), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrNoVersion
	}
	return line, nil
}
