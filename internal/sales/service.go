package sales

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/matita-boutique/internal/common"
)

// Service serves the back office sales ledger.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns sales newest first.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Sale, int64, error) {
	out, total, err := s.repo.List(ctx, perPage, common.Offset(page, perPage))
	if out == nil && err == nil {
		out = []Sale{}
	}
	return out, total, err
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, err)
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return common.NewAppError("NOT_FOUND", "sale not found", http.StatusNotFound, err)
	}
	return err
}
