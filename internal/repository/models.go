package repository

import (
	"time"

	"github.com/samber/lo"
	"github.com/yz4230/retrigger/internal/entity"
)

type Model struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RepoConfig struct {
	Model
	UserID           string   `gorm:"uniqueIndex:idx_repo_configs_user_repo;index"`
	FullName         string   `gorm:"uniqueIndex:idx_repo_configs_user_repo"`
	SelectedBranches []string `gorm:"serializer:json"`
	IsActive         bool
}

func (r *RepoConfig) ToEntity() *entity.RepoConfig {
	return &entity.RepoConfig{
		ID:               entity.ID(r.ID),
		UserID:           r.UserID,
		FullName:         r.FullName,
		SelectedBranches: r.SelectedBranches,
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (r *RepoConfig) FromEntity(e *entity.RepoConfig) {
	r.ID = e.ID.String()
	r.UserID = e.UserID
	r.FullName = e.FullName
	r.SelectedBranches = e.SelectedBranches
	r.IsActive = e.IsActive
}

type DeploymentGroup struct {
	Model
	UserID        string `gorm:"index"`
	Name          string
	Description   string
	RepoConfigIDs []string `gorm:"serializer:json"`
}

func (g *DeploymentGroup) ToEntity() *entity.DeploymentGroup {
	return &entity.DeploymentGroup{
		ID:            entity.ID(g.ID),
		UserID:        g.UserID,
		Name:          g.Name,
		Description:   g.Description,
		RepoConfigIDs: toIDs(g.RepoConfigIDs),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}

func (g *DeploymentGroup) FromEntity(e *entity.DeploymentGroup) {
	g.ID = e.ID.String()
	g.UserID = e.UserID
	g.Name = e.Name
	g.Description = e.Description
	g.RepoConfigIDs = entity.Strings(e.RepoConfigIDs)
}

type Webhook struct {
	Model
	UserID          string `gorm:"index"`
	Name            string
	GroupID         string
	RepoConfigIDs   []string `gorm:"serializer:json"`
	Secret          string
	IsActive        bool
	LastTriggeredAt *time.Time
}

func (w *Webhook) ToEntity() *entity.Webhook {
	return &entity.Webhook{
		ID:              entity.ID(w.ID),
		UserID:          w.UserID,
		Name:            w.Name,
		GroupID:         entity.ID(w.GroupID),
		RepoConfigIDs:   toIDs(w.RepoConfigIDs),
		Secret:          w.Secret,
		IsActive:        w.IsActive,
		LastTriggeredAt: w.LastTriggeredAt,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

func (w *Webhook) FromEntity(e *entity.Webhook) {
	w.ID = e.ID.String()
	w.UserID = e.UserID
	w.Name = e.Name
	w.GroupID = e.GroupID.String()
	w.RepoConfigIDs = entity.Strings(e.RepoConfigIDs)
	w.Secret = e.Secret
	w.IsActive = e.IsActive
	w.LastTriggeredAt = e.LastTriggeredAt
}

type DeploymentLog struct {
	ID           string    `gorm:"primaryKey"`
	UserID       string    `gorm:"index"`
	Repo         string    `gorm:"index"`
	Branch       string
	Status       string
	SHA          string
	ErrorMessage string
	Source       string
	CreatedAt    time.Time `gorm:"index"`
}

func (d *DeploymentLog) ToEntity() *entity.DeploymentLog {
	return &entity.DeploymentLog{
		ID:           entity.ID(d.ID),
		UserID:       d.UserID,
		Repo:         d.Repo,
		Branch:       d.Branch,
		Status:       entity.BranchStatus(d.Status),
		SHA:          d.SHA,
		ErrorMessage: d.ErrorMessage,
		Source:       entity.DeploymentSource(d.Source),
		CreatedAt:    d.CreatedAt,
	}
}

func (d *DeploymentLog) FromEntity(e *entity.DeploymentLog) {
	d.ID = e.ID.String()
	d.UserID = e.UserID
	d.Repo = e.Repo
	d.Branch = e.Branch
	d.Status = string(e.Status)
	d.SHA = e.SHA
	d.ErrorMessage = e.ErrorMessage
	d.Source = string(e.Source)
	d.CreatedAt = e.CreatedAt
}

func toIDs(ss []string) []entity.ID {
	return lo.Map(ss, func(s string, _ int) entity.ID { return entity.ID(s) })
}
