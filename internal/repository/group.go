package repository

import (
	"context"

	"github.com/yz4230/retrigger/internal/entity"
	"gorm.io/gorm"
)

type GroupRepository interface {
	Create(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error)
	GetByID(ctx context.Context, userID string, id entity.ID) (*entity.DeploymentGroup, error)
	List(ctx context.Context, userID string) ([]*entity.DeploymentGroup, error)
	Update(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error)
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type groupRepositoryImpl struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepositoryImpl{db: db}
}

func (r *groupRepositoryImpl) Create(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error) {
	if g.ID.IsZero() {
		g.ID = entity.NewID()
	}
	var model DeploymentGroup
	model.FromEntity(g)
	if err := gorm.G[DeploymentGroup](r.db).Create(ctx, &model); err != nil {
		return nil, translate(err)
	}
	return model.ToEntity(), nil
}

func (r *groupRepositoryImpl) GetByID(ctx context.Context, userID string, id entity.ID) (*entity.DeploymentGroup, error) {
	found, err := gorm.G[DeploymentGroup](r.db).Where("id = ? AND user_id = ?", id.String(), userID).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return found.ToEntity(), nil
}

func (r *groupRepositoryImpl) List(ctx context.Context, userID string) ([]*entity.DeploymentGroup, error) {
	founds, err := gorm.G[DeploymentGroup](r.db).Where("user_id = ?", userID).Order("created_at, rowid").Find(ctx)
	if err != nil {
		return nil, translate(err)
	}
	result := make([]*entity.DeploymentGroup, len(founds))
	for i, f := range founds {
		result[i] = f.ToEntity()
	}
	return result, nil
}

func (r *groupRepositoryImpl) Update(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error) {
	found, err := gorm.G[DeploymentGroup](r.db).Where("id = ? AND user_id = ?", g.ID.String(), g.UserID).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	found.Name = g.Name
	found.Description = g.Description
	found.RepoConfigIDs = entity.Strings(g.RepoConfigIDs)
	if err := r.db.WithContext(ctx).Save(&found).Error; err != nil {
		return nil, translate(err)
	}
	return found.ToEntity(), nil
}

func (r *groupRepositoryImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	n, err := gorm.G[DeploymentGroup](r.db).Where("id = ? AND user_id = ?", id.String(), userID).Delete(ctx)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
