package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/utils"
)

type ErrorCode string

const (
	CodeRefNotFound        ErrorCode = "REF_NOT_FOUND"
	CodeCommitNotFound     ErrorCode = "COMMIT_NOT_FOUND"
	CodeCommitCreateFailed ErrorCode = "COMMIT_CREATE_FAILED"
	CodeRefUpdateFailed    ErrorCode = "REF_UPDATE_FAILED"
)

var genericMessages = map[ErrorCode]string{
	CodeRefNotFound:        "Failed to get branch reference",
	CodeCommitNotFound:     "Failed to get commit",
	CodeCommitCreateFailed: "Failed to create commit",
	CodeRefUpdateFailed:    "Failed to update branch reference",
}

// CommitError reports which step of the empty-commit sequence failed.
// Status is the upstream HTTP status, or 0 when no response was received.
type CommitError struct {
	Code    ErrorCode
	Status  int
	Message string
	Err     error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CommitError) Unwrap() error { return e.Err }

func newCommitError(code ErrorCode, err error) *CommitError {
	ce := &CommitError{Code: code, Message: genericMessages[code], Err: err}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		ce.Status = apiErr.Status
		if apiErr.Message != "" {
			ce.Message = apiErr.Message
		}
	} else if err != nil {
		ce.Message = fmt.Sprintf("%s: %v", ce.Message, err)
	}
	return ce
}

type CommitOptions struct {
	Message string
}

// DefaultCommitMessage is used when no message is given.
func DefaultCommitMessage(now time.Time) string {
	return fmt.Sprintf("chore: trigger rebuild [%s]", now.Local().Format("2006-01-02 15:04:05"))
}

type gitRef struct {
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}

type gitCommit struct {
	SHA  string `json:"sha"`
	Tree struct {
		SHA string `json:"sha"`
	} `json:"tree"`
}

type createCommitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type updateRefRequest struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force"`
}

// CreateEmptyCommit adds a commit with an unchanged tree on top of branch
// and advances the branch to it. The ref update is not forced, so it fails
// if the branch moved in between. A failure after the commit object was
// created leaves that object orphaned; the branch is untouched.
func (c *Client) CreateEmptyCommit(ctx context.Context, token, owner, repo, branch string, opts CommitOptions) (*entity.CommitResult, error) {
	log := zerolog.Ctx(ctx).With().Str("repo", owner+"/"+repo).Str("branch", branch).Logger()

	message := opts.Message
	if message == "" {
		message = DefaultCommitMessage(c.now())
	}

	repoPath := fmt.Sprintf("/repos/%s/%s/git", url.PathEscape(owner), url.PathEscape(repo))
	refPath := repoPath + "/refs/heads/" + utils.EscapeRef(branch, url.PathEscape)

	var ref gitRef
	if err := c.do(ctx, token, http.MethodGet, refPath, nil, &ref); err != nil {
		return nil, newCommitError(CodeRefNotFound, err)
	}
	parentSHA := ref.Object.SHA

	var parent gitCommit
	if err := c.do(ctx, token, http.MethodGet, repoPath+"/commits/"+url.PathEscape(parentSHA), nil, &parent); err != nil {
		return nil, newCommitError(CodeCommitNotFound, err)
	}

	var created gitCommit
	createReq := &createCommitRequest{
		Message: message,
		Tree:    parent.Tree.SHA,
		Parents: []string{parentSHA},
	}
	if err := c.do(ctx, token, http.MethodPost, repoPath+"/commits", createReq, &created); err != nil {
		return nil, newCommitError(CodeCommitCreateFailed, err)
	}

	var updated gitRef
	if err := c.do(ctx, token, http.MethodPatch, refPath, &updateRefRequest{SHA: created.SHA, Force: false}, &updated); err != nil {
		log.Warn().Str("sha", created.SHA).Msg("commit created but branch was not updated")
		return nil, newCommitError(CodeRefUpdateFailed, err)
	}

	log.Info().Str("sha", created.SHA).Str("parent", parentSHA).Msg("created empty commit")

	return &entity.CommitResult{
		SHA:       created.SHA,
		Branch:    branch,
		Message:   message,
		Timestamp: c.now().UTC(),
	}, nil
}
