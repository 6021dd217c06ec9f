package latest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type HTTPSConfig struct {
	HTTPSURLTemplate string `yaml:"https_url_template"`
}

func (c HTTPSConfig) String() string {
	return c.HTTPSURLTemplate
}

// HTTPS fetches a plain-text document holding the latest version, such as the 'stable.txt' files
// published for Kubernetes releases.
type HTTPS struct {
	log     *zap.Logger
	timeout time.Duration
	client  *http.Client

	HTTPSConfig
}

func NewHTTPS(logBuilder *logger.Builder, c *HTTPSConfig) *HTTPS {
	return &HTTPS{
		log:         logBuilder.Domain(logger.HTTPSDomain),
		timeout:     defaultTimeout,
		client:      http.DefaultClient,
		HTTPSConfig: *c,
	}
}

func (s *HTTPS) Latest(ctx context.Context, tool string) (string, error) {
	u := instantiateTemplate(s.HTTPSURLTemplate, tool)
	log := s.log.With(zap.String("tool", tool), zap.String("url", u))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Debug("Invalid version URL.", zap.Error(err))
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Debug("Failed to request version document.", zap.Error(err))
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		log.Debug("Unexpected response for version document.", zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("failed to fetch %q: %s", u, resp.Status)
	}

	// Version documents are tiny. Anything larger is not what we are looking for.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		log.Debug("Failed to read version document.", zap.Error(err))
		return "", err
	}

	v, err := parseVersion(raw)
	if err != nil {
		log.Debug("Version document is empty.")
		return "", err
	}
	log.Debug("Fetched latest version over HTTPS.", zap.String("version", v))
	return v, nil
}
