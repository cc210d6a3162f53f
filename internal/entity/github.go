package entity

import "time"

// GitHubRepository is a repository visible to the token's owner.
type GitHubRepository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Owner         string    `json:"owner"`
	Private       bool      `json:"private"`
	DefaultBranch string    `json:"defaultBranch"`
	HTMLURL       string    `json:"htmlUrl"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type GitHubBranch struct {
	Name      string `json:"name"`
	SHA       string `json:"sha"`
	Protected bool   `json:"protected"`
}
