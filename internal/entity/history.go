package entity

import "time"

type DeploymentSource string

const (
	DeploymentSourceManual  DeploymentSource = "manual"
	DeploymentSourceGroup   DeploymentSource = "group"
	DeploymentSourceWebhook DeploymentSource = "webhook"
	DeploymentSourceCLI     DeploymentSource = "cli"
)

// DeploymentLog is one history row per branch outcome.
type DeploymentLog struct {
	ID           ID               `json:"id"`
	UserID       string           `json:"userId"`
	Repo         string           `json:"repo"`
	Branch       string           `json:"branch"`
	Status       BranchStatus     `json:"status"`
	SHA          string           `json:"sha,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
	Source       DeploymentSource `json:"source"`
	CreatedAt    time.Time        `json:"createdAt"`
}

type DeploymentLogFilter struct {
	Repo   string
	Status BranchStatus
	Limit  int
}

// LogsFromBatch flattens a batch into one log entry per branch outcome.
func LogsFromBatch(userID string, source DeploymentSource, batch BatchDeploymentResult) []*DeploymentLog {
	var logs []*DeploymentLog
	for _, r := range batch.Results {
		logs = append(logs, LogsFromRepository(userID, source, r)...)
	}
	return logs
}

func LogsFromRepository(userID string, source DeploymentSource, result RepositoryDeploymentResult) []*DeploymentLog {
	logs := make([]*DeploymentLog, 0, len(result.Branches))
	for _, b := range result.Branches {
		logs = append(logs, &DeploymentLog{
			UserID:       userID,
			Repo:         result.Repo,
			Branch:       b.Branch,
			Status:       b.Status,
			SHA:          b.SHA,
			ErrorMessage: b.Error,
			Source:       source,
		})
	}
	return logs
}
