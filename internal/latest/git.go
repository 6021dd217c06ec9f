package latest

import (
	"context"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"

	"github.com/Helcaraxan/pinbump/internal/logger"
)

type GitConfig struct {
	GitURL string `yaml:"git_url"`
}

func (c GitConfig) String() string {
	return c.GitURL
}

// Git picks the highest semantic version tag of a repository. Pre-release tags are ignored. Local
// checkouts are read directly while anything else is treated as a remote to list references from.
type Git struct {
	log *zap.Logger

	GitConfig
}

func NewGit(logBuilder *logger.Builder, c *GitConfig) *Git {
	return &Git{
		log:       logBuilder.Domain(logger.GitDomain),
		GitConfig: *c,
	}
}

func (s *Git) Latest(ctx context.Context, tool string) (string, error) {
	u := instantiateTemplate(s.GitURL, tool)
	log := s.log.With(zap.String("tool", tool), zap.String("git-url", u))

	tags, err := s.listTags(ctx, u)
	if err != nil {
		log.Debug("Failed to list tags.", zap.Error(err))
		return "", err
	}

	var (
		best    *semver.Version
		bestTag string
	)
	for _, tag := range tags {
		v, err := semver.NewVersion(tag)
		if err != nil || v.Prerelease() != "" {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestTag = v, tag
		}
	}
	if best == nil {
		log.Debug("No release tags found.", zap.Int("tag-count", len(tags)))
		return "", fmt.Errorf("repository %q has no semantic version tags: %w", u, ErrNoVersion)
	}
	log.Debug("Found highest release tag.", zap.String("version", bestTag))
	return bestTag, nil
}

func (s *Git) listTags(ctx context.Context, u string) ([]string, error) {
	var tags []string

	if fi, err := os.Stat(u); err == nil && fi.IsDir() {
		repo, err := git.PlainOpen(u)
		if err != nil {
			return nil, err
		}
		iter, err := repo.Tags()
		if err != nil {
			return nil, err
		}
		err = iter.ForEach(func(ref *plumbing.Reference) error {
			tags = append(tags, ref.Name().Short())
			return nil
		})
		return tags, err
	}

	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{u},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if ref.Name().IsTag() {
			tags = append(tags, ref.Name().Short())
		}
	}
	return tags, nil
}
