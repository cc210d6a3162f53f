package repository

import (
	"context"
	"time"

	"github.com/yz4230/retrigger/internal/entity"
	"gorm.io/gorm"
)

type WebhookRepository interface {
	Create(ctx context.Context, w *entity.Webhook) (*entity.Webhook, error)
	// Get looks a webhook up by id alone; trigger calls carry no user id.
	Get(ctx context.Context, id entity.ID) (*entity.Webhook, error)
	List(ctx context.Context, userID string) ([]*entity.Webhook, error)
	MarkTriggered(ctx context.Context, id entity.ID, at time.Time) error
	Delete(ctx context.Context, userID string, id entity.ID) error
}

type webhookRepositoryImpl struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepositoryImpl{db: db}
}

func (r *webhookRepositoryImpl) Create(ctx context.Context, w *entity.Webhook) (*entity.Webhook, error) {
	if w.ID.IsZero() {
		w.ID = entity.NewID()
	}
	var model Webhook
	model.FromEntity(w)
	if err := gorm.G[Webhook](r.db).Create(ctx, &model); err != nil {
		return nil, translate(err)
	}
	return model.ToEntity(), nil
}

func (r *webhookRepositoryImpl) Get(ctx context.Context, id entity.ID) (*entity.Webhook, error) {
	found, err := gorm.G[Webhook](r.db).Where("id = ?", id.String()).First(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return found.ToEntity(), nil
}

func (r *webhookRepositoryImpl) List(ctx context.Context, userID string) ([]*entity.Webhook, error) {
	founds, err := gorm.G[Webhook](r.db).Where("user_id = ?", userID).Order("created_at, rowid").Find(ctx)
	if err != nil {
		return nil, translate(err)
	}
	result := make([]*entity.Webhook, len(founds))
	for i, f := range founds {
		result[i] = f.ToEntity()
	}
	return result, nil
}

func (r *webhookRepositoryImpl) MarkTriggered(ctx context.Context, id entity.ID, at time.Time) error {
	n, err := gorm.G[Webhook](r.db).Where("id = ?", id.String()).Update(ctx, "last_triggered_at", at)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *webhookRepositoryImpl) Delete(ctx context.Context, userID string, id entity.ID) error {
	n, err := gorm.G[Webhook](r.db).Where("id = ? AND user_id = ?", id.String(), userID).Delete(ctx)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
