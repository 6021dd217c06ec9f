package latest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type GitHubConfig struct {
	GitHubSlug    string `yaml:"github_slug"`
	GitHubBaseURL string `yaml:"github_base_url"`
}

func (c GitHubConfig) String() string {
	b := c.GitHubBaseURL
	if b == "" {
		b = "github.com"
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(b, "/"), c.GitHubSlug)
}

// GitHub uses the tag of the most recent non-prerelease release of a repository. An API token is
// picked up from GITHUB_TOKEN when set, which avoids the strict anonymous rate limits.
type GitHub struct {
	log     *zap.Logger
	timeout time.Duration
	client  *github.Client

	GitHubConfig
}

func NewGitHub(logBuilder *logger.Builder, c *GitHubConfig) (*GitHub, error) {
	log := logBuilder.Domain(logger.GitHubDomain).With(zap.String("github-slug", c.GitHubSlug))

	client := github.NewClient(nil)
	if c.GitHubBaseURL != "" {
		var err error
		if client, err = client.WithEnterpriseURLs(c.GitHubBaseURL, c.GitHubBaseURL); err != nil {
			log.Debug("Invalid GitHub Enterprise URL.", zap.Error(err))
			return nil, err
		}
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}

	return &GitHub{
		log:          log,
		timeout:      defaultTimeout,
		client:       client,
		GitHubConfig: *c,
	}, nil
}

func (s *GitHub) Latest(ctx context.Context, tool string) (string, error) {
	log := s.log.With(zap.String("tool", tool))

	owner, repo, ok := strings.Cut(s.GitHubSlug, "/")
	if !ok {
		return "", fmt.Errorf("repo slug %q does not contain an owner and repo name: %w", s.GitHubSlug, ErrInvalidSource)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	release, _, err := s.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		log.Debug("Failed to retrieve the latest release.", zap.Error(err))
		return "", fmt.Errorf("unable to request latest release of %q: %w", s.GitHubSlug, err)
	}

	v := release.GetTagName()
	if v == "" {
		v = release.GetName()
	}
	if v == "" {
		log.Debug("Latest release has neither a tag nor a name.")
		return "", fmt.Errorf("latest release of %q is unnamed: %w", s.GitHubSlug, ErrNoVersion)
	}
	log.Debug("Found latest GitHub release.", zap.String("version", v))
	return v, nil
}
