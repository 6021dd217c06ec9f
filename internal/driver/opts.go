package driver

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Helcaraxan/pinbump/internal/config"
	"github.com/Helcaraxan/pinbump/internal/latest"
	"github.com/Helcaraxan/pinbump/internal/logger"
)

type CommonOpts struct {
	LogBuilder *logger.Builder
	Log        *zap.Logger
	Config     *config.Global
	Verbose    []string

	// Stdout receives the user-facing output of commands. Logs are written elsewhere.
	Stdout io.Writer
}

func NewCommonOpts() *CommonOpts {
	return &CommonOpts{
		LogBuilder: logger.NewBuilder(os.Stderr),
		Config:     config.Default(),
		Stdout:     os.Stdout,
	}
}

func (c *CommonOpts) Parse() error {
	for _, domain := range c.Verbose {
		c.LogBuilder.SetDomainLevel(domain, zapcore.DebugLevel)
	}
	c.Log = c.LogBuilder.Domain(logger.CLIDomain)

	initLog := c.LogBuilder.Domain(logger.InitDomain)
	if err := config.Parse(initLog, c.Config); err != nil {
		return err
	}
	if err := c.Config.Validate(); err != nil {
		initLog.Error("Invalid configuration.", zap.Error(err))
		return err
	}
	return nil
}

func (c *CommonOpts) versionsFile() (string, error) {
	path, err := filepath.Abs(c.Config.VersionsFile)
	if err != nil {
		c.Log.Error("Could not determine the path of the versions file.", zap.String("versions-file", c.Config.VersionsFile), zap.Error(err))
		return "", err
	}
	return path, nil
}

// resolver sets up the sources configured for the selected tools. A source that can not be set up
// is skipped so that its tool resolves through the table instead.
func (c *CommonOpts) resolver(ctx context.Context) *latest.Resolver {
	log := c.LogBuilder.Domain(logger.UpdateDomain)

	sources := map[string]latest.Source{}
	for _, tool := range c.Config.Tools {
		sc, ok := c.Config.Sources[tool]
		if !ok {
			continue
		}
		s, err := sc.New(ctx, c.LogBuilder)
		if err != nil {
			log.Warn("Could not set up version source. Using the known versions instead.", zap.String("tool", tool), zap.Error(err))
			continue
		}
		sources[tool] = s
	}
	return latest.NewResolver(log, c.Config.Table(), sources, c.Config.Timeout)
}
