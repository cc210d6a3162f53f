// Package deploy fans empty-commit triggers out over branches and
// repositories and aggregates the outcomes.
package deploy

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/queue"
)

const (
	DefaultConcurrency = 3

	// CodeQueueAborted marks branches never attempted because the
	// rate-limited queue gave up on their repository.
	CodeQueueAborted = "QUEUE_ABORTED"
	CodeUnknown      = "UNKNOWN"
)

// CommitTrigger creates one empty commit on one branch.
type CommitTrigger interface {
	CreateEmptyCommit(ctx context.Context, token, owner, repo, branch string, opts github.CommitOptions) (*entity.CommitResult, error)
}

// Observer is notified around each repository deployment.
type Observer interface {
	OnRepositoryStart(target entity.DeploymentTarget)
	OnRepositoryDone(result entity.RepositoryDeploymentResult)
}

type BatchOptions struct {
	Concurrency int
}

type Orchestrator struct {
	trigger  CommitTrigger
	observer Observer
	clock    queue.Clock
}

type Option func(*Orchestrator)

func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) { orc.observer = o }
}

func WithClock(c queue.Clock) Option {
	return func(orc *Orchestrator) { orc.clock = c }
}

func NewOrchestrator(trigger CommitTrigger, opts ...Option) *Orchestrator {
	o := &Orchestrator{trigger: trigger, clock: queue.RealClock}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TriggerDeployment creates one empty commit per branch, sequentially and in
// input order. Branch failures are recorded in the result and never stop
// the remaining branches.
func (o *Orchestrator) TriggerDeployment(ctx context.Context, token string, target entity.DeploymentTarget) entity.RepositoryDeploymentResult {
	if o.observer != nil {
		o.observer.OnRepositoryStart(target)
	}

	outcomes := make([]entity.BranchOutcome, 0, len(target.Branches))
	for _, branch := range target.Branches {
		res, err := o.trigger.CreateEmptyCommit(ctx, token, target.Owner, target.Repo, branch, github.CommitOptions{Message: target.Message})
		if err != nil {
			outcomes = append(outcomes, failedOutcome(branch, err))
			continue
		}
		outcomes = append(outcomes, entity.SucceededBranch(res))
	}

	result := entity.NewRepositoryDeploymentResult(target.FullName(), outcomes)
	zerolog.Ctx(ctx).Info().
		Str("repo", result.Repo).
		Str("status", string(result.Status)).
		Int("successful", result.Summary.Successful).
		Int("failed", result.Summary.Failed).
		Msg("repository deployment finished")

	if o.observer != nil {
		o.observer.OnRepositoryDone(result)
	}
	return result
}

// TriggerBatchDeployment deploys targets in waves of opts.Concurrency. All
// deployments of a wave run concurrently and the next wave starts only
// after every one of them has finished. Results keep the input order.
func (o *Orchestrator) TriggerBatchDeployment(ctx context.Context, token string, targets []entity.DeploymentTarget, opts BatchOptions) entity.BatchDeploymentResult {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	indices := lo.Range(len(targets))
	results := make([]entity.RepositoryDeploymentResult, len(targets))
	for wave, chunk := range lo.Chunk(indices, concurrency) {
		zerolog.Ctx(ctx).Debug().Int("wave", wave).Int("size", len(chunk)).Msg("starting deployment wave")

		var wg sync.WaitGroup
		for _, i := range chunk {
			wg.Go(func() {
				results[i] = o.TriggerDeployment(ctx, token, targets[i])
			})
		}
		wg.Wait()
	}

	return entity.NewBatchDeploymentResult(results, o.clock.Now().UTC())
}

// TriggerRateLimitedBatch deploys targets one repository at a time through a
// rate-limited queue.
func (o *Orchestrator) TriggerRateLimitedBatch(ctx context.Context, token string, targets []entity.DeploymentTarget, cfg queue.Config) entity.BatchDeploymentResult {
	q := queue.New[entity.RepositoryDeploymentResult](cfg, queue.WithClock(o.clock))
	for _, target := range targets {
		q.Add(func(ctx context.Context) (entity.RepositoryDeploymentResult, error) {
			return o.TriggerDeployment(ctx, token, target), nil
		})
	}

	outcomes := q.Process(ctx)
	results := make([]entity.RepositoryDeploymentResult, len(targets))
	for i, out := range outcomes {
		if out.Status == queue.OutcomeSuccess {
			results[i] = out.Result
			continue
		}
		target := targets[i]
		branches := lo.Map(target.Branches, func(b string, _ int) entity.BranchOutcome {
			return entity.FailedBranch(b, out.Error, CodeQueueAborted)
		})
		results[i] = entity.NewRepositoryDeploymentResult(target.FullName(), branches)
	}

	return entity.NewBatchDeploymentResult(results, o.clock.Now().UTC())
}

func failedOutcome(branch string, err error) entity.BranchOutcome {
	var ce *github.CommitError
	if errors.As(err, &ce) {
		return entity.FailedBranch(branch, ce.Message, string(ce.Code))
	}
	return entity.FailedBranch(branch, err.Error(), CodeUnknown)
}

