package entity

import (
	"strings"
	"time"
)

// BranchStatus is the outcome of a single empty-commit attempt.
type BranchStatus string

const (
	BranchStatusSuccess BranchStatus = "success"
	BranchStatusFailed  BranchStatus = "failed"
)

// DeploymentStatus aggregates branch outcomes for one repository.
type DeploymentStatus string

const (
	DeploymentStatusPending DeploymentStatus = "pending"
	DeploymentStatusSuccess DeploymentStatus = "success"
	DeploymentStatusPartial DeploymentStatus = "partial"
	DeploymentStatusFailed  DeploymentStatus = "failed"
)

// CommitResult describes a freshly created empty commit.
type CommitResult struct {
	SHA       string    `json:"sha"`
	Branch    string    `json:"branch"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type BranchOutcome struct {
	Branch    string       `json:"branch"`
	Status    BranchStatus `json:"status"`
	SHA       string       `json:"sha,omitempty"`
	Timestamp *time.Time   `json:"timestamp,omitempty"`
	Error     string       `json:"error,omitempty"`
	Code      string       `json:"code,omitempty"`
}

func SucceededBranch(res *CommitResult) BranchOutcome {
	ts := res.Timestamp
	return BranchOutcome{
		Branch:    res.Branch,
		Status:    BranchStatusSuccess,
		SHA:       res.SHA,
		Timestamp: &ts,
	}
}

func FailedBranch(branch, message, code string) BranchOutcome {
	return BranchOutcome{
		Branch: branch,
		Status: BranchStatusFailed,
		Error:  message,
		Code:   code,
	}
}

type DeploymentSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type RepositoryDeploymentResult struct {
	Repo     string            `json:"repo"`
	Status   DeploymentStatus  `json:"status"`
	Branches []BranchOutcome   `json:"branches"`
	Summary  DeploymentSummary `json:"summary"`
}

// NewRepositoryDeploymentResult derives status and summary from branches.
// A repository with no branches is reported as failed.
func NewRepositoryDeploymentResult(repo string, branches []BranchOutcome) RepositoryDeploymentResult {
	if branches == nil {
		branches = []BranchOutcome{}
	}
	summary := DeploymentSummary{Total: len(branches)}
	for _, b := range branches {
		if b.Status == BranchStatusSuccess {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}

	status := DeploymentStatusPartial
	switch {
	case summary.Total == 0, summary.Failed == summary.Total:
		status = DeploymentStatusFailed
	case summary.Successful == summary.Total:
		status = DeploymentStatusSuccess
	}

	return RepositoryDeploymentResult{
		Repo:     repo,
		Status:   status,
		Branches: branches,
		Summary:  summary,
	}
}

type BatchSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Partial    int `json:"partial"`
}

type BatchDeploymentResult struct {
	Results   []RepositoryDeploymentResult `json:"results"`
	Summary   BatchSummary                 `json:"summary"`
	Timestamp time.Time                    `json:"timestamp"`
}

func NewBatchDeploymentResult(results []RepositoryDeploymentResult, completedAt time.Time) BatchDeploymentResult {
	if results == nil {
		results = []RepositoryDeploymentResult{}
	}
	summary := BatchSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case DeploymentStatusSuccess:
			summary.Successful++
		case DeploymentStatusPartial:
			summary.Partial++
		default:
			summary.Failed++
		}
	}
	return BatchDeploymentResult{
		Results:   results,
		Summary:   summary,
		Timestamp: completedAt,
	}
}

// DeploymentTarget is one repository and the branches to rebuild.
type DeploymentTarget struct {
	Owner    string   `json:"owner"`
	Repo     string   `json:"repo"`
	Branches []string `json:"branches"`
	Message  string   `json:"message,omitempty"`
}

func (t DeploymentTarget) FullName() string { return t.Owner + "/" + t.Repo }

func (t DeploymentTarget) Validate() error {
	if strings.TrimSpace(t.Owner) == "" || strings.TrimSpace(t.Repo) == "" {
		return ErrInvalid
	}
	if len(t.Branches) == 0 {
		return ErrInvalid
	}
	for _, b := range t.Branches {
		if strings.TrimSpace(b) == "" {
			return ErrInvalid
		}
	}
	return nil
}
