package usecase

import (
	"context"
	"strings"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type GroupUsecase interface {
	List(ctx context.Context, userID string) ([]*entity.DeploymentGroup, error)
	Get(ctx context.Context, userID string, id entity.ID) (*entity.DeploymentGroup, error)
	Create(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error)
	Update(ctx context.Context, g *entity.DeploymentGroup) (*entity.DeploymentGroup, error)
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type groupUsecaseImpl struct {
	groups      repository.GroupRepository
	repoConfigs repository.RepoConfigRepository
}

func (g *groupUsecaseImpl) List(ctx context.Context, userID string) ([]*entity.DeploymentGroup, error) {
	return g.groups.List(ctx, userID)
}

func (g *groupUsecaseImpl) Get(ctx context.Context, userID string, id entity.ID) (*entity.DeploymentGroup, error) {
	return g.groups.GetByID(ctx, userID, id)
}

func (g *groupUsecaseImpl) Create(ctx context.Context, group *entity.DeploymentGroup) (*entity.DeploymentGroup, error) {
	if err := g.check(ctx, group); err != nil {
		return nil, err
	}
	return g.groups.Create(ctx, group)
}

func (g *groupUsecaseImpl) Update(ctx context.Context, group *entity.DeploymentGroup) (*entity.DeploymentGroup, error) {
	if err := g.check(ctx, group); err != nil {
		return nil, err
	}
	return g.groups.Update(ctx, group)
}

func (g *groupUsecaseImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	return g.groups.Delete(ctx, userID, id)
}

// check validates the group and that every member config belongs to the user.
func (g *groupUsecaseImpl) check(ctx context.Context, group *entity.DeploymentGroup) error {
	group.Name = strings.TrimSpace(group.Name)
	group.RepoConfigIDs = lo.Uniq(group.RepoConfigIDs)
	if err := group.Validate(); err != nil {
		return err
	}
	if len(group.RepoConfigIDs) == 0 {
		return nil
	}
	found, err := g.repoConfigs.List(ctx, group.UserID, entity.RepoConfigFilter{IDs: group.RepoConfigIDs})
	if err != nil {
		return err
	}
	if len(found) != len(group.RepoConfigIDs) {
		return entity.ErrInvalid
	}
	return nil
}

func NewGroupUsecase(i *do.Injector) (GroupUsecase, error) {
	return &groupUsecaseImpl{
		groups:      do.MustInvoke[repository.GroupRepository](i),
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
	}, nil
}
