package config

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/latest"
)

const (
	DriverName = "pinbump"

	// DefaultVersionsFile is resolved relative to the working directory.
	DefaultVersionsFile = "ai_platform_setup/config/development/versions.conf"

	configFileName = DriverName + "_conf.yaml"
	localFileName  = "." + DriverName + ".yaml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultTools returns the tools whose pins are updated when no other list is configured, in the
// order in which they are processed.
func DefaultTools() []string {
	return []string{
		"DOCKER_VERSION",
		"KUBERNETES_VERSION",
		"HELM_VERSION",
		"RUST_VERSION",
		"GO_VERSION",
		"PYTHON_VERSION",
		"VAULT_VERSION",
		"ISTIO_VERSION",
		"KUBEFLOW_VERSION",
		"OPA_VERSION",
		"K9S_VERSION",
		"OPENAI_CLI_VERSION",
		"DATASETS_VERSION",
		"TRANSFORMERS_VERSION",
		"ACCELERATE_VERSION",
		"EVALUATE_VERSION",
		"TORCH_VERSION",
		"TENSORFLOW_VERSION",
	}
}

type Global struct {
	VersionsFile string                          `yaml:"versions_file"`
	Tools        []string                        `yaml:"tools"`
	Latest       map[string]string               `yaml:"latest"`
	Sources      map[string]*latest.SourceConfig `yaml:"sources"`
	Timeout      time.Duration                   `yaml:"timeout"`
}

func Default() *Global {
	return &Global{
		VersionsFile: DefaultVersionsFile,
		Tools:        DefaultTools(),
		Latest:       map[string]string{},
		Sources:      map[string]*latest.SourceConfig{},
		Timeout:      time.Minute,
	}
}

// Table returns the built-in latest versions with any configured overrides applied.
func (g *Global) Table() latest.Table {
	return latest.DefaultTable().With(g.Latest)
}

func (g *Global) Validate() error {
	if g.VersionsFile == "" {
		return fmt.Errorf("%w: no versions file set", ErrInvalidConfig)
	}
	for i, tool := range g.Tools {
		if tool == "" {
			return fmt.Errorf("%w: tool at position %d has an empty name", ErrInvalidConfig, i)
		}
	}
	for tool, sc := range g.Sources {
		if sc == nil {
			return fmt.Errorf("%w: source for %q is empty", ErrInvalidConfig, tool)
		}
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("source for %q: %w", tool, err)
		}
	}
	if g.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrInvalidConfig, g.Timeout)
	}
	return nil
}

// Parse applies all configuration files that exist on top of conf. See AllPaths for the order.
func Parse(log *zap.Logger, conf *Global) error {
	paths, err := AllPaths()
	if err != nil {
		return err
	}
	return ParseFiles(log, conf, paths...)
}

// ParseFiles applies the given files on top of conf, later files taking precedence. Missing files
// are skipped.
func ParseFiles(log *zap.Logger, conf *Global, paths ...string) error {
	if conf == nil {
		return errors.New("can not parse configuration into nil struct")
	}

	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			log.Error("Failed to read configuration file.", zap.String("path", p), zap.Error(err))
			return err
		}

		var layer Global
		if err = yaml.NewDecoder(bytes.NewReader(raw)).Decode(&layer); err != nil {
			log.Error("Failed to decode configuration file.", zap.String("path", p), zap.Error(err))
			return fmt.Errorf("%s: %w", p, err)
		}
		conf.merge(&layer)
		log.Debug("Applied configuration file.", zap.String("path", p))
	}
	log.Sugar().Debugf("Parsed configuration:\n%s", spew.Sdump(conf))
	return nil
}

func (g *Global) merge(o *Global) {
	if o.VersionsFile != "" {
		g.VersionsFile = o.VersionsFile
	}
	if len(o.Tools) > 0 {
		g.Tools = slices.Clone(o.Tools)
	}
	if o.Timeout != 0 {
		g.Timeout = o.Timeout
	}
	if g.Latest == nil {
		g.Latest = map[string]string{}
	}
	maps.Copy(g.Latest, o.Latest)
	if g.Sources == nil {
		g.Sources = map[string]*latest.SourceConfig{}
	}
	maps.Copy(g.Sources, o.Sources)
}

// AllPaths lists the configuration files in increasing order of precedence: the user's
// configuration, the system configuration and finally the project file in the working directory.
func AllPaths() ([]string, error) {
	var paths []string
	if p := UserDir(); p != "" {
		paths = append(paths, filepath.Join(p, configFileName))
	}
	if p := SystemDir(); p != "" {
		paths = append(paths, filepath.Join(p, configFileName))
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return append(paths, filepath.Join(cwd, localFileName)), nil
}

func SystemDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("PROGRAMDATA"), DriverName)
	default:
		return filepath.Join("/etc", DriverName)
	}
}

func UserDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), DriverName)
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), ".config", DriverName)
	default:
		if configPath, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
			return filepath.Join(configPath, DriverName)
		}
		return filepath.Join(os.Getenv("HOME"), ".config", DriverName)
	}
}
