package repository

import (
	"context"

	"github.com/yz4230/retrigger/internal/entity"
	"gorm.io/gorm"
)

type RepoConfigRepository interface {
	Create(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error)
	GetByID(ctx context.Context, userID string, id entity.ID) (*entity.RepoConfig, error)
	List(ctx context.Context, userID string, filter entity.RepoConfigFilter) ([]*entity.RepoConfig, error)
	Update(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error)
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type repoConfigRepositoryImpl struct {
	db *gorm.DB
}

func NewRepoConfigRepository(db *gorm.DB) RepoConfigRepository {
	return &repoConfigRepositoryImpl{db: db}
}

// Create implements RepoConfigRepository.
func (r *repoConfigRepositoryImpl) Create(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error) {
	if cfg.ID.IsZero() {
		cfg.ID = entity.NewID()
	}
	var model RepoConfig
	model.FromEntity(cfg)
	if err := gorm.G[RepoConfig](r.db).Create(ctx, &model); err != nil {
		return nil, translate(err)
	}
	return model.ToEntity(), nil
}

// GetByID implements RepoConfigRepository.
func (r *repoConfigRepositoryImpl) GetByID(ctx context.Context, userID string, id entity.ID) (*entity.RepoConfig, error) {
	found, err := gorm.G[RepoConfig](r.db).Where("id = ? AND user_id = ?", id.String(), userID).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return found.ToEntity(), nil
}

// List implements RepoConfigRepository. Results are ordered by creation time.
func (r *repoConfigRepositoryImpl) List(ctx context.Context, userID string, filter entity.RepoConfigFilter) ([]*entity.RepoConfig, error) {
	q := gorm.G[RepoConfig](r.db).Where("user_id = ?", userID)
	if filter.IDs != nil {
		q = q.Where("id IN ?", entity.Strings(filter.IDs))
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	founds, err := q.Order("created_at, rowid").Find(ctx)
	if err != nil {
		return nil, translate(err)
	}
	result := make([]*entity.RepoConfig, len(founds))
	for i, f := range founds {
		result[i] = f.ToEntity()
	}
	return result, nil
}

// Update implements RepoConfigRepository.
func (r *repoConfigRepositoryImpl) Update(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error) {
	found, err := gorm.G[RepoConfig](r.db).Where("id = ? AND user_id = ?", cfg.ID.String(), cfg.UserID).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	found.FullName = cfg.FullName
	found.SelectedBranches = cfg.SelectedBranches
	found.IsActive = cfg.IsActive
	if err := r.db.WithContext(ctx).Save(&found).Error; err != nil {
		return nil, translate(err)
	}
	return found.ToEntity(), nil
}

// Delete implements RepoConfigRepository.
func (r *repoConfigRepositoryImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	n, err := gorm.G[RepoConfig](r.db).Where("id = ? AND user_id = ?", id.String(), userID).Delete(ctx)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
