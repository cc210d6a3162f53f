package usecase

import (
	"context"
	"strings"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type RepoConfigUsecase interface {
	List(ctx context.Context, userID string, activeOnly bool) ([]*entity.RepoConfig, error)
	Get(ctx context.Context, userID string, id entity.ID) (*entity.RepoConfig, error)
	Create(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error)
	Update(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error)
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type repoConfigUsecaseImpl struct {
	repoConfigs repository.RepoConfigRepository
}

func (r *repoConfigUsecaseImpl) List(ctx context.Context, userID string, activeOnly bool) ([]*entity.RepoConfig, error) {
	return r.repoConfigs.List(ctx, userID, entity.RepoConfigFilter{ActiveOnly: activeOnly})
}

func (r *repoConfigUsecaseImpl) Get(ctx context.Context, userID string, id entity.ID) (*entity.RepoConfig, error) {
	return r.repoConfigs.GetByID(ctx, userID, id)
}

func (r *repoConfigUsecaseImpl) Create(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error) {
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return r.repoConfigs.Create(ctx, cfg)
}

func (r *repoConfigUsecaseImpl) Update(ctx context.Context, cfg *entity.RepoConfig) (*entity.RepoConfig, error) {
	normalize(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return r.repoConfigs.Update(ctx, cfg)
}

func (r *repoConfigUsecaseImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	return r.repoConfigs.Delete(ctx, userID, id)
}

func normalize(cfg *entity.RepoConfig) {
	cfg.FullName = strings.TrimSpace(cfg.FullName)
	branches := lo.Map(cfg.SelectedBranches, func(b string, _ int) string { return strings.TrimSpace(b) })
	cfg.SelectedBranches = lo.Uniq(lo.Compact(branches))
}

func NewRepoConfigUsecase(i *do.Injector) (RepoConfigUsecase, error) {
	return &repoConfigUsecaseImpl{
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
	}, nil
}
