package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

type WebhookUsecase interface {
	List(ctx context.Context, userID string) ([]*entity.Webhook, error)
	Get(ctx context.Context, userID string, id entity.ID) (*entity.Webhook, error)
	// Create returns the webhook with its secret; it is never shown again.
	Create(ctx context.Context, w *entity.Webhook) (*entity.Webhook, error)
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type webhookUsecaseImpl struct {
	webhooks    repository.WebhookRepository
	groups      repository.GroupRepository
	repoConfigs repository.RepoConfigRepository
}

func (u *webhookUsecaseImpl) List(ctx context.Context, userID string) ([]*entity.Webhook, error) {
	hooks, err := u.webhooks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(hooks, func(w *entity.Webhook, _ int) *entity.Webhook { return w.Redacted() }), nil
}

func (u *webhookUsecaseImpl) Get(ctx context.Context, userID string, id entity.ID) (*entity.Webhook, error) {
	w, err := u.webhooks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.UserID != userID {
		return nil, entity.ErrNotFound
	}
	return w.Redacted(), nil
}

func (u *webhookUsecaseImpl) Create(ctx context.Context, w *entity.Webhook) (*entity.Webhook, error) {
	w.Name = strings.TrimSpace(w.Name)
	w.RepoConfigIDs = lo.Uniq(w.RepoConfigIDs)
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if !w.GroupID.IsZero() {
		if _, err := u.groups.GetByID(ctx, w.UserID, w.GroupID); err != nil {
			return nil, err
		}
	}
	if len(w.RepoConfigIDs) > 0 {
		found, err := u.repoConfigs.List(ctx, w.UserID, entity.RepoConfigFilter{IDs: w.RepoConfigIDs})
		if err != nil {
			return nil, err
		}
		if len(found) != len(w.RepoConfigIDs) {
			return nil, entity.ErrInvalid
		}
	}
	w.Secret = strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	w.IsActive = true
	return u.webhooks.Create(ctx, w)
}

func (u *webhookUsecaseImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	return u.webhooks.Delete(ctx, userID, id)
}

func NewWebhookUsecase(i *do.Injector) (WebhookUsecase, error) {
	return &webhookUsecaseImpl{
		webhooks:    do.MustInvoke[repository.WebhookRepository](i),
		groups:      do.MustInvoke[repository.GroupRepository](i),
		repoConfigs: do.MustInvoke[repository.RepoConfigRepository](i),
	}, nil
}
