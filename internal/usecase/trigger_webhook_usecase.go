package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type TriggerWebhookInput struct {
	WebhookID entity.ID
	Secret    string
	Token     string
	Message   string
}

type TriggerWebhookUsecase interface {
	Execute(ctx context.Context, in *TriggerWebhookInput) (*entity.BatchDeploymentResult, error)
}

type triggerWebhookUsecaseImpl struct {
	deployer    *deployer
	webhooks    repository.WebhookRepository
	groups      repository.GroupRepository
	repoConfigs repository.RepoConfigRepository
	now         func() time.Time
}

// Execute implements TriggerWebhookUsecase. A webhook bound to a group
// deploys the group's current members; otherwise its own config list.
func (t *triggerWebhookUsecaseImpl) Execute(ctx context.Context, in *TriggerWebhookInput) (*entity.BatchDeploymentResult, error) {
	if in.Token == "" {
		return nil, entity.ErrUnauthorized
	}
	hook, err := t.webhooks.Get(ctx, in.WebhookID)
	if err != nil {
		return nil, err
	}
	if !hook.IsActive || !hook.SecretMatches(in.Secret) {
		return nil, entity.ErrForbidden
	}

	ids := hook.RepoConfigIDs
	if !hook.GroupID.IsZero() {
		group, err := t.groups.GetByID(ctx, hook.UserID, hook.GroupID)
		if err != nil {
			return nil, err
		}
		ids = group.RepoConfigIDs
	}
	targets, err := resolveTargets(ctx, t.repoConfigs, hook.UserID, ids, in.Message)
	if err != nil {
		return nil, err
	}

	if err := t.webhooks.MarkTriggered(ctx, hook.ID, t.now().UTC()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("webhook", hook.ID.String()).Msg("failed to record webhook trigger time")
	}

	return t.deployer.runBatch(ctx, batchRequest{
		UserID:  hook.UserID,
		Token:   in.Token,
		Targets: targets,
		Source:  entity.DeploymentSourceWebhook,
	}), nil
}

func NewTriggerWebhookUsecase(i *do.Injector) (TriggerWebhookUsecase, error) {
	return &triggerWebhookUsecaseImpl{
		deployer:    newDeployer(i),
		webhooks:    do.MustInvoke[repository.WebhookRepository](i),
		groups:      do.MustInvoke[repository.GroupRepository](i),
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
		now:         time.Now,
	}, nil
}
