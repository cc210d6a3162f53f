package usecase

import (
	"context"
	"strings"

	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

const (
	ActionDeployAll      = "deploy-all"
	ActionDeploySelected = "deploy-selected"
)

type TriggerDeploymentInput struct {
	UserID      string
	Token       string
	Action      string
	ConfigIDs   []entity.ID
	Repos       []entity.DeploymentTarget
	Owner       string
	Repo        string
	Branches    []string
	Message     string
	Concurrency int
	RateLimited bool
}

// TriggerDeploymentOutput holds exactly one of Batch or Single.
type TriggerDeploymentOutput struct {
	Batch  *entity.BatchDeploymentResult
	Single *entity.RepositoryDeploymentResult
}

type TriggerDeploymentUsecase interface {
	Execute(ctx context.Context, in *TriggerDeploymentInput) (*TriggerDeploymentOutput, error)
}

type triggerDeploymentUsecaseImpl struct {
	deployer    *deployer
	repoConfigs repository.RepoConfigRepository
}

// Execute implements TriggerDeploymentUsecase. Request-shape problems are
// returned before any commit is attempted; deployment failures are data.
func (t *triggerDeploymentUsecaseImpl) Execute(ctx context.Context, in *TriggerDeploymentInput) (*TriggerDeploymentOutput, error) {
	if in.Token == "" {
		return nil, entity.ErrUnauthorized
	}
	if strings.TrimSpace(in.UserID) == "" {
		return nil, entity.ErrInvalid
	}

	switch in.Action {
	case ActionDeployAll:
		configs, err := t.repoConfigs.List(ctx, in.UserID, entity.RepoConfigFilter{ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		return t.batch(ctx, in, targetsFromConfigs(configs, nil, in.Message))

	case ActionDeploySelected:
		if len(in.Repos) > 0 {
			targets := make([]entity.DeploymentTarget, len(in.Repos))
			for i, r := range in.Repos {
				if r.Message == "" {
					r.Message = in.Message
				}
				if err := r.Validate(); err != nil {
					return nil, err
				}
				targets[i] = r
			}
			return t.batch(ctx, in, targets)
		}
		if len(in.ConfigIDs) == 0 {
			return nil, entity.ErrInvalid
		}
		configs, err := t.repoConfigs.List(ctx, in.UserID, entity.RepoConfigFilter{IDs: in.ConfigIDs})
		if err != nil {
			return nil, err
		}
		return t.batch(ctx, in, targetsFromConfigs(configs, in.ConfigIDs, in.Message))

	case "":
		target := entity.DeploymentTarget{Owner: in.Owner, Repo: in.Repo, Branches: in.Branches, Message: in.Message}
		if err := target.Validate(); err != nil {
			return nil, err
		}
		single := t.deployer.runSingle(ctx, in.UserID, in.Token, target, entity.DeploymentSourceManual)
		return &TriggerDeploymentOutput{Single: single}, nil
	}

	return nil, ErrInvalidAction
}

func (t *triggerDeploymentUsecaseImpl) batch(ctx context.Context, in *TriggerDeploymentInput, targets []entity.DeploymentTarget) (*TriggerDeploymentOutput, error) {
	if len(targets) == 0 {
		return nil, entity.ErrNoConfigs
	}
	batch := t.deployer.runBatch(ctx, batchRequest{
		UserID:      in.UserID,
		Token:       in.Token,
		Targets:     targets,
		Concurrency: in.Concurrency,
		RateLimited: in.RateLimited,
		Source:      entity.DeploymentSourceManual,
	})
	return &TriggerDeploymentOutput{Batch: batch}, nil
}

func NewTriggerDeploymentUsecase(i *do.Injector) (TriggerDeploymentUsecase, error) {
	return &triggerDeploymentUsecaseImpl{
		deployer:    newDeployer(i),
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
	}, nil
}
