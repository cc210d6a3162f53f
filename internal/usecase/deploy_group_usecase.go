package usecase

import (
	"context"

	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type DeployGroupInput struct {
	UserID      string
	Token       string
	GroupID     entity.ID
	Message     string
	Concurrency int
	RateLimited bool
}

type DeployGroupUsecase interface {
	Execute(ctx context.Context, in *DeployGroupInput) (*entity.BatchDeploymentResult, error)
}

type deployGroupUsecaseImpl struct {
	deployer    *deployer
	groups      repository.GroupRepository
	repoConfigs repository.RepoConfigRepository
}

// Execute implements DeployGroupUsecase. Inactive member configs are skipped.
func (d *deployGroupUsecaseImpl) Execute(ctx context.Context, in *DeployGroupInput) (*entity.BatchDeploymentResult, error) {
	if in.Token == "" {
		return nil, entity.ErrUnauthorized
	}
	group, err := d.groups.GetByID(ctx, in.UserID, in.GroupID)
	if err != nil {
		return nil, err
	}
	targets, err := resolveTargets(ctx, d.repoConfigs, in.UserID, group.RepoConfigIDs, in.Message)
	if err != nil {
		return nil, err
	}
	return d.deployer.runBatch(ctx, batchRequest{
		UserID:      in.UserID,
		Token:       in.Token,
		Targets:     targets,
		Concurrency: in.Concurrency,
		RateLimited: in.RateLimited,
		Source:      entity.DeploymentSourceGroup,
	}), nil
}

// resolveTargets loads the active configs among ids, keeping the id order.
func resolveTargets(ctx context.Context, repoConfigs repository.RepoConfigRepository, userID string, ids []entity.ID, message string) ([]entity.DeploymentTarget, error) {
	if len(ids) == 0 {
		return nil, entity.ErrNoConfigs
	}
	configs, err := repoConfigs.List(ctx, userID, entity.RepoConfigFilter{IDs: ids, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	targets := targetsFromConfigs(configs, ids, message)
	if len(targets) == 0 {
		return nil, entity.ErrNoConfigs
	}
	return targets, nil
}

func NewDeployGroupUsecase(i *do.Injector) (DeployGroupUsecase, error) {
	return &deployGroupUsecaseImpl{
		deployer:    newDeployer(i),
		groups:      do.MustInvoke[repository.GroupRepository](i),
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
	}, nil
}
