package repository

import (
	"context"
	"time"

	"github.com/yz4230/retrigger/internal/entity"
	"gorm.io/gorm"
)

type DeploymentLogRepository interface {
	Create(ctx context.Context, log *entity.DeploymentLog) (*entity.DeploymentLog, error)
	// List returns the newest entries first.
	List(ctx context.Context, userID string, filter entity.DeploymentLogFilter) ([]*entity.DeploymentLog, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
}

type deploymentLogRepositoryImpl struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDeploymentLogRepository(db *gorm.DB) DeploymentLogRepository {
	return &deploymentLogRepositoryImpl{db: db, now: time.Now}
}

func (r *deploymentLogRepositoryImpl) Create(ctx context.Context, log *entity.DeploymentLog) (*entity.DeploymentLog, error) {
	if log.ID.IsZero() {
		log.ID = entity.NewID()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.now().UTC()
	}
	var model DeploymentLog
	model.FromEntity(log)
	if err := gorm.G[DeploymentLog](r.db).Create(ctx, &model); err != nil {
		return nil, translate(err)
	}
	return model.ToEntity(), nil
}

func (r *deploymentLogRepositoryImpl) List(ctx context.Context, userID string, filter entity.DeploymentLogFilter) ([]*entity.DeploymentLog, error) {
	q := gorm.G[DeploymentLog](r.db).Where("user_id = ?", userID)
	if filter.Repo != "" {
		q = q.Where("repo = ?", filter.Repo)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	q = q.Order("created_at DESC, rowid DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	founds, err := q.Find(ctx)
	if err != nil {
		return nil, translate(err)
	}
	result := make([]*entity.DeploymentLog, len(founds))
	for i, f := range founds {
		result[i] = f.ToEntity()
	}
	return result, nil
}

func (r *deploymentLogRepositoryImpl) DeleteByUser(ctx context.Context, userID string) (int, error) {
	n, err := gorm.G[DeploymentLog](r.db).Where("user_id = ?", userID).Delete(ctx)
	return n, translate(err)
}
