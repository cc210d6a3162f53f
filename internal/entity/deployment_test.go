package entity

import (
	"testing"
	"time"
)

func outcomes(statuses ...BranchStatus) []BranchOutcome {
	res := make([]BranchOutcome, len(statuses))
	for i, s := range statuses {
		res[i] = BranchOutcome{Branch: "b" + string(rune('0'+i)), Status: s}
	}
	return res
}

func TestNewRepositoryDeploymentResult(t *testing.T) {
	ok, ng := BranchStatusSuccess, BranchStatusFailed
	tests := []struct {
		name     string
		branches []BranchOutcome
		want     DeploymentStatus
		summary  DeploymentSummary
	}{
		{"single success", outcomes(ok), DeploymentStatusSuccess, DeploymentSummary{1, 1, 0}},
		{"single failure is not partial", outcomes(ng), DeploymentStatusFailed, DeploymentSummary{1, 0, 1}},
		{"all success", outcomes(ok, ok, ok), DeploymentStatusSuccess, DeploymentSummary{3, 3, 0}},
		{"all failed", outcomes(ng, ng), DeploymentStatusFailed, DeploymentSummary{2, 0, 2}},
		{"some failed", outcomes(ok, ng, ok), DeploymentStatusPartial, DeploymentSummary{3, 2, 1}},
		{"empty", nil, DeploymentStatusFailed, DeploymentSummary{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRepositoryDeploymentResult("o/r", tt.branches)
			if got.Status != tt.want {
				t.Errorf("Status = %q, want %q", got.Status, tt.want)
			}
			if got.Summary != tt.summary {
				t.Errorf("Summary = %+v, want %+v", got.Summary, tt.summary)
			}
			if got.Branches == nil {
				t.Errorf("Branches should never be nil")
			}
		})
	}
}

func TestNewBatchDeploymentResult(t *testing.T) {
	ok, ng := BranchStatusSuccess, BranchStatusFailed
	results := []RepositoryDeploymentResult{
		NewRepositoryDeploymentResult("a/1", outcomes(ok)),
		NewRepositoryDeploymentResult("a/2", outcomes(ng)),
		NewRepositoryDeploymentResult("a/3", outcomes(ok, ng)),
		NewRepositoryDeploymentResult("a/4", outcomes(ok, ok)),
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	batch := NewBatchDeploymentResult(results, at)

	want := BatchSummary{Total: 4, Successful: 2, Failed: 1, Partial: 1}
	if batch.Summary != want {
		t.Fatalf("Summary = %+v, want %+v", batch.Summary, want)
	}
	s := batch.Summary
	if s.Successful+s.Failed+s.Partial != s.Total || s.Total != len(batch.Results) {
		t.Errorf("summary does not account for every result: %+v", s)
	}
	if !batch.Timestamp.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", batch.Timestamp, at)
	}
}

func TestDeploymentTargetValidate(t *testing.T) {
	tests := []struct {
		target DeploymentTarget
		valid  bool
	}{
		{DeploymentTarget{Owner: "o", Repo: "r", Branches: []string{"main"}}, true},
		{DeploymentTarget{Owner: "", Repo: "r", Branches: []string{"main"}}, false},
		{DeploymentTarget{Owner: "o", Repo: "r"}, false},
		{DeploymentTarget{Owner: "o", Repo: "r", Branches: []string{" "}}, false},
	}
	for _, tt := range tests {
		err := tt.target.Validate()
		if (err == nil) != tt.valid {
			t.Errorf("Validate(%+v) = %v, valid want %v", tt.target, err, tt.valid)
		}
	}
}

func TestLogsFromBatch(t *testing.T) {
	ts := time.Now()
	batch := NewBatchDeploymentResult([]RepositoryDeploymentResult{
		NewRepositoryDeploymentResult("o/r", []BranchOutcome{
			SucceededBranch(&CommitResult{SHA: "abc", Branch: "main", Timestamp: ts}),
			FailedBranch("dev", "Branch not found", "REF_NOT_FOUND"),
		}),
	}, ts)

	logs := LogsFromBatch("u1", DeploymentSourceManual, batch)
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].SHA != "abc" || logs[0].Status != BranchStatusSuccess {
		t.Errorf("unexpected first log: %+v", logs[0])
	}
	if logs[1].ErrorMessage != "Branch not found" || logs[1].Repo != "o/r" {
		t.Errorf("unexpected second log: %+v", logs[1])
	}
}
