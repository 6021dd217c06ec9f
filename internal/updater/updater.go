// Package updater rewrites the version pins in a versions file.
//
// A pin is a line fragment of the form TOOL="MAJOR.MINOR.PATCH". Files are treated as opaque text:
// only fragments matching that exact shape are touched. Pins already holding something else, such
// as "latest" or a "v"-prefixed version, are left alone without any error being raised.
package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

var ErrInvalidPattern = errors.New("tool name does not form a valid pin pattern")

// Resolver provides the version that a tool's pin should be set to.
type Resolver interface {
	Latest(ctx context.Context, tool string) string
}

type Updater struct {
	log      *zap.Logger
	fs       billy.Filesystem
	resolver Resolver
	out      io.Writer
}

// New returns an Updater operating on files in fs. A report line is written to out for each
// processed tool.
func New(log *zap.Logger, fs billy.Filesystem, resolver Resolver, out io.Writer) *Updater {
	return &Updater{
		log:      log,
		fs:       fs,
		resolver: resolver,
		out:      out,
	}
}

// PinPattern matches the pin of a tool. The tool name is not escaped, so any regular expression
// syntax it contains keeps its meaning.
func PinPattern(tool string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(tool + `="\d+\.\d+\.\d+"`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, tool, err)
	}
	return re, nil
}

// CurrentVersion returns the version held by the first pin of tool in content, if any.
func CurrentVersion(content []byte, tool string) (string, bool, error) {
	re, err := PinPattern(tool)
	if err != nil {
		return "", false, err
	}

	pin := re.Find(content)
	if pin == nil {
		return "", false, nil
	}
	start := bytes.LastIndex(pin, []byte(`="`)) + len(`="`)
	return string(pin[start : len(pin)-1]), true, nil
}

// UpdateVersion sets every pin of tool in the file at path to the tool's latest version. The file
// is always rewritten in full, even when it did not contain any matching pin, and the report line
// is written regardless of how many pins were changed.
func (u *Updater) UpdateVersion(ctx context.Context, path string, tool string) error {
	log := u.log.With(zap.String("tool", tool), zap.String("versions-file", path))

	content, err := util.ReadFile(u.fs, path)
	if err != nil {
		log.Error("Failed to read versions file.", zap.Error(err))
		return err
	}

	re, err := PinPattern(tool)
	if err != nil {
		log.Error("Tool name can not be used to match pins.", zap.Error(err))
		return err
	}

	version := u.resolver.Latest(ctx, tool)
	replacement := []byte(tool + `="` + version + `"`)
	matches := len(re.FindAllIndex(content, -1))
	content = re.ReplaceAllLiteral(content, replacement)

	if err = writeFile(u.fs, path, content); err != nil {
		log.Error("Failed to write versions file.", zap.Error(err))
		return err
	}
	log.Debug("Rewrote versions file.", zap.String("version", version), zap.Int("replaced-pins", matches))

	if _, err = fmt.Fprintf(u.out, "%s updated to %s\n", tool, version); err != nil {
		return err
	}
	return nil
}

// Run updates the pins of all tools, in order, in the same file. It stops at the first failure.
// Tools processed before that point keep their updated pins.
func (u *Updater) Run(ctx context.Context, path string, tools []string) error {
	for _, tool := range tools {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.UpdateVersion(ctx, path, tool); err != nil {
			return err
		}
	}
	u.log.Debug("Processed all tools.", zap.Int("tool-count", len(tools)))
	return nil
}

// writeFile overwrites an existing file. Unlike util.WriteFile it never creates the file.
func writeFile(fs billy.Filesystem, path string, content []byte) (err error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	_, err = f.Write(content)
	return err
}
