package entity

import (
	"strings"
	"time"

	"github.com/yz4230/retrigger/internal/utils"
)

// RepoConfig is a saved repository with the branches a user rebuilds.
type RepoConfig struct {
	ID               ID        `json:"id"`
	UserID           string    `json:"userId"`
	FullName         string    `json:"fullName"`
	SelectedBranches []string  `json:"selectedBranches"`
	IsActive         bool      `json:"isActive"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (r *RepoConfig) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalid
	}
	if _, _, ok := utils.SplitFullName(r.FullName); !ok {
		return ErrInvalid
	}
	if len(r.SelectedBranches) == 0 {
		return ErrInvalid
	}
	return nil
}

// Target builds the deployment target for this configuration.
func (r *RepoConfig) Target(message string) DeploymentTarget {
	owner, name, _ := utils.SplitFullName(r.FullName)
	branches := make([]string, len(r.SelectedBranches))
	copy(branches, r.SelectedBranches)
	return DeploymentTarget{
		Owner:    owner,
		Repo:     name,
		Branches: branches,
		Message:  message,
	}
}

type RepoConfigFilter struct {
	IDs        []ID
	ActiveOnly bool
}
