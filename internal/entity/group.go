package entity

import (
	"strings"
	"time"
)

// DeploymentGroup bundles saved repo configs that are deployed together.
type DeploymentGroup struct {
	ID            ID        `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	RepoConfigIDs []ID      `json:"repoConfigIds"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (g *DeploymentGroup) Validate() error {
	if strings.TrimSpace(g.UserID) == "" || strings.TrimSpace(g.Name) == "" {
		return ErrInvalid
	}
	return nil
}
