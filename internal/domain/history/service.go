package history

import (
	"context"
	"log/slog"

	"github.com/yanqian/label-insight/internal/domain/analysis"
	apperrors "github.com/yanqian/label-insight/pkg/errors"
	"github.com/yanqian/label-insight/pkg/util"
)

const defaultLimit = 20

// Service records analysis outcomes. Recording never fails the caller.
type Service interface {
	Record(ctx context.Context, userID int64, source, imageURL string, result analysis.Result)
	Recent(ctx context.Context, userID int64) ([]Entry, error)
}

type service struct {
	store  Store
	limit  int
	now    util.Clock
	logger *slog.Logger
}

// NewService constructs a history service.
func NewService(cfg Config, store Store, logger *slog.Logger) Service {
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	return &service{
		store:  store,
		limit:  limit,
		now:    util.NowUTC,
		logger: logger.With("component", "history.service"),
	}
}

func (s *service) Record(ctx context.Context, userID int64, source, imageURL string, result analysis.Result) {
	if err := analysis.CheckTrafficLight(result); err != nil {
		s.logger.Warn("inconsistent rating in model reply", "user_id", userID, "error", err)
	}
	summary := result.Summary()
	entry := Entry{
		ProductName:  summary.ProductName,
		ProductType:  summary.ProductType,
		TrafficLight: summary.TrafficLight,
		Source:       source,
		ImageURL:     imageURL,
		CreatedAt:    s.now(),
	}
	if summary.HasScore {
		score := summary.Score
		entry.Score = &score
	}
	if err := s.store.Append(ctx, userID, entry, s.limit); err != nil {
		s.logger.Error("failed to record history", "user_id", userID, "error", err)
	}
}

func (s *service) Recent(ctx context.Context, userID int64) ([]Entry, error) {
	entries, err := s.store.Recent(ctx, userID, s.limit)
	if err != nil {
		return nil, apperrors.Wrap("history_error", "failed to load history", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
