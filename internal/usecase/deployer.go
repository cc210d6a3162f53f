package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/config"
	"github.com/yz4230/retrigger/internal/deploy"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type batchRequest struct {
	UserID      string
	Token       string
	Targets     []entity.DeploymentTarget
	Concurrency int
	RateLimited bool
	Source      entity.DeploymentSource
}

// deployer runs batches and records one history entry per branch outcome.
type deployer struct {
	orchestrator *deploy.Orchestrator
	logs         repository.DeploymentLogRepository
	cfg          config.DeployConfig
}

func newDeployer(i *do.Injector) *deployer {
	return &deployer{
		orchestrator: do.MustInvoke[*deploy.Orchestrator](i),
		logs:         do.MustInvoke[repository.DeploymentLogRepository](i),
		cfg:          do.MustInvoke[*config.Config](i).Deploy,
	}
}

func (d *deployer) runBatch(ctx context.Context, req batchRequest) *entity.BatchDeploymentResult {
	log := zerolog.Ctx(ctx)
	log.Info().
		Str("user", req.UserID).
		Int("repos", len(req.Targets)).
		Bool("rate_limited", req.RateLimited).
		Str("source", string(req.Source)).
		Msg("starting batch deployment")

	var batch entity.BatchDeploymentResult
	if req.RateLimited {
		batch = d.orchestrator.TriggerRateLimitedBatch(ctx, req.Token, req.Targets, d.cfg.Queue())
	} else {
		concurrency := req.Concurrency
		if concurrency <= 0 {
			concurrency = d.cfg.Concurrency
		}
		batch = d.orchestrator.TriggerBatchDeployment(ctx, req.Token, req.Targets, deploy.BatchOptions{Concurrency: concurrency})
	}

	d.record(ctx, entity.LogsFromBatch(req.UserID, req.Source, batch))

	log.Info().
		Int("total", batch.Summary.Total).
		Int("successful", batch.Summary.Successful).
		Int("partial", batch.Summary.Partial).
		Int("failed", batch.Summary.Failed).
		Msg("batch deployment finished")
	return &batch
}

func (d *deployer) runSingle(ctx context.Context, userID, token string, target entity.DeploymentTarget, source entity.DeploymentSource) *entity.RepositoryDeploymentResult {
	result := d.orchestrator.TriggerDeployment(ctx, token, target)
	d.record(ctx, entity.LogsFromRepository(userID, source, result))
	return &result
}

// record persists history; failures are logged and never reach the caller.
func (d *deployer) record(ctx context.Context, logs []*entity.DeploymentLog) {
	ctx = context.WithoutCancel(ctx)
	for _, l := range logs {
		if _, err := d.logs.Create(ctx, l); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("repo", l.Repo).Str("branch", l.Branch).Msg("failed to record deployment history")
		}
	}
}

// targetsFromConfigs keeps the order of ids when given, otherwise the
// order of configs.
func targetsFromConfigs(configs []*entity.RepoConfig, ids []entity.ID, message string) []entity.DeploymentTarget {
	if ids != nil {
		byID := make(map[entity.ID]*entity.RepoConfig, len(configs))
		for _, c := range configs {
			byID[c.ID] = c
		}
		ordered := make([]*entity.RepoConfig, 0, len(ids))
		seen := map[entity.ID]bool{}
		for _, id := range ids {
			if c, ok := byID[id]; ok && !seen[id] {
				ordered = append(ordered, c)
				seen[id] = true
			}
		}
		configs = ordered
	}
	targets := make([]entity.DeploymentTarget, len(configs))
	for i, c := range configs {
		targets[i] = c.Target(message)
	}
	return targets
}
