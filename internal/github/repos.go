package github

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/yz4230/retrigger/internal/entity"
)

const perPage = 100

type repoPayload struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	Private       bool      `json:"private"`
	DefaultBranch string    `json:"default_branch"`
	HTMLURL       string    `json:"html_url"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type branchPayload struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
	Protected bool `json:"protected"`
}

type ListOptions struct {
	// Refresh skips the cache and replaces its entry.
	Refresh bool
}

// ListRepositories returns every repository the token can access.
func (c *Client) ListRepositories(ctx context.Context, token string, opts ListOptions) ([]entity.GitHubRepository, error) {
	return cached(c, token, "repos", opts, func() ([]entity.GitHubRepository, error) {
		payloads, err := paginate[repoPayload](ctx, c, token, "/user/repos?sort=updated")
		if err != nil {
			return nil, err
		}
		repos := make([]entity.GitHubRepository, len(payloads))
		for i, p := range payloads {
			repos[i] = entity.GitHubRepository{
				ID:            p.ID,
				Name:          p.Name,
				FullName:      p.FullName,
				Owner:         p.Owner.Login,
				Private:       p.Private,
				DefaultBranch: p.DefaultBranch,
				HTMLURL:       p.HTMLURL,
				UpdatedAt:     p.UpdatedAt,
			}
		}
		return repos, nil
	})
}

func (c *Client) ListBranches(ctx context.Context, token, owner, repo string, opts ListOptions) ([]entity.GitHubBranch, error) {
	key := "branches:" + owner + "/" + repo
	return cached(c, token, key, opts, func() ([]entity.GitHubBranch, error) {
		path := fmt.Sprintf("/repos/%s/%s/branches", url.PathEscape(owner), url.PathEscape(repo))
		payloads, err := paginate[branchPayload](ctx, c, token, path)
		if err != nil {
			return nil, err
		}
		branches := make([]entity.GitHubBranch, len(payloads))
		for i, p := range payloads {
			branches[i] = entity.GitHubBranch{Name: p.Name, SHA: p.Commit.SHA, Protected: p.Protected}
		}
		return branches, nil
	})
}

func cached[T any](c *Client, token, resource string, opts ListOptions, fetch func() (T, error)) (T, error) {
	key := cacheKey(token, resource)
	if !opts.Refresh {
		if v, ok := c.cache.Get(key); ok {
			return v.(T), nil
		}
	}
	v, err := c.breaker.Execute(func() (interface{}, error) {
		return fetch()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	c.cache.Add(key, v)
	return v.(T), nil
}

func paginate[T any](ctx context.Context, c *Client, token, path string) ([]T, error) {
	sep := "?"
	if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	all := []T{}
	for page := 1; ; page++ {
		var items []T
		p := fmt.Sprintf("%s%sper_page=%d&page=%d", path, sep, perPage, page)
		if err := c.do(ctx, token, http.MethodGet, p, nil, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			return all, nil
		}
	}
}

func cacheKey(token, resource string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + ":" + resource
}
