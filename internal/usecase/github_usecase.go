package usecase

import (
	"context"
	"strings"

	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/github"
)

// RepositoryLister is the read side of the GitHub client.
type RepositoryLister interface {
	ListRepositories(ctx context.Context, token string, opts github.ListOptions) ([]entity.GitHubRepository, error)
	ListBranches(ctx context.Context, token, owner, repo string, opts github.ListOptions) ([]entity.GitHubBranch, error)
}

type GitHubUsecase interface {
	ListRepositories(ctx context.Context, token string, refresh bool) ([]entity.GitHubRepository, error)
	ListBranches(ctx context.Context, token, owner, repo string, refresh bool) ([]entity.GitHubBranch, error)
}

type githubUsecaseImpl struct {
	lister RepositoryLister
}

func (g *githubUsecaseImpl) ListRepositories(ctx context.Context, token string, refresh bool) ([]entity.GitHubRepository, error) {
	if token == "" {
		return nil, entity.ErrUnauthorized
	}
	return g.lister.ListRepositories(ctx, token, github.ListOptions{Refresh: refresh})
}

func (g *githubUsecaseImpl) ListBranches(ctx context.Context, token, owner, repo string, refresh bool) ([]entity.GitHubBranch, error) {
	if token == "" {
		return nil, entity.ErrUnauthorized
	}
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(repo) == "" {
		return nil, entity.ErrInvalid
	}
	return g.lister.ListBranches(ctx, token, owner, repo, github.ListOptions{Refresh: refresh})
}

func NewGitHubUsecase(i *do.Injector) (GitHubUsecase, error) {
	return &githubUsecaseImpl{
		lister: do.MustInvoke[*github.Client](i),
	}, nil
}
