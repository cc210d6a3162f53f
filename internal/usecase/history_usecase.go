package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/repository"
)

const defaultHistoryLimit = 100

type HistoryUsecase interface {
	List(ctx context.Context, userID string, filter entity.DeploymentLogFilter) ([]*entity.DeploymentLog, error)
	// Export writes the user's full history as CSV, newest first.
	Export(ctx context.Context, userID string, w io.Writer) error
	Clear(ctx context.Context, userID string) (int, error)
}

type historyUsecaseImpl struct {
	logs repository.DeploymentLogRepository
}

func (h *historyUsecaseImpl) List(ctx context.Context, userID string, filter entity.DeploymentLogFilter) ([]*entity.DeploymentLog, error) {
	if filter.Status != "" && filter.Status != entity.BranchStatusSuccess && filter.Status != entity.BranchStatusFailed {
		return nil, entity.ErrInvalid
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	return h.logs.List(ctx, userID, filter)
}

func (h *historyUsecaseImpl) Export(ctx context.Context, userID string, w io.Writer) error {
	logs, err := h.logs.List(ctx, userID, entity.DeploymentLogFilter{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "timestamp", "repo", "branch", "status", "sha", "error", "source"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, l := range logs {
		record := []string{
			l.ID.String(),
			l.CreatedAt.UTC().Format(time.RFC3339),
			l.Repo,
			l.Branch,
			string(l.Status),
			l.SHA,
			l.ErrorMessage,
			string(l.Source),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (h *historyUsecaseImpl) Clear(ctx context.Context, userID string) (int, error) {
	return h.logs.DeleteByUser(ctx, userID)
}

func NewHistoryUsecase(i *do.Injector) (HistoryUsecase, error) {
	return &historyUsecaseImpl{
		logs: do.MustInvoke[repository.DeploymentLogRepository](i),
	}, nil
}
