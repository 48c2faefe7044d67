package favorites

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/optimistic"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.List(ctx, userID)
	if ids == nil && err == nil {
		ids = []string{}
	}
	return ids, err
}

// Toggle flips productID in the member's favourites and returns the settled list.
func (s *Service) Toggle(ctx context.Context, userID, productID string) (optimistic.Result[[]string], error) {
	if _, err := uuid.Parse(productID); err != nil {
		return optimistic.Result[[]string]{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	current, err := s.List(ctx, userID)
	if err != nil {
		return optimistic.Result[[]string]{}, err
	}
	wasFavorite := slices.Contains(current, productID)
	res, err := optimistic.Apply(ctx, current,
		func(ids []string) []string {
			if wasFavorite {
				return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == productID })
			}
			return append(slices.Clone(ids), productID)
		},
		func(ctx context.Context, _ []string) error {
			if wasFavorite {
				return s.repo.Remove(ctx, userID, productID)
			}
			return s.repo.Add(ctx, userID, productID)
		},
		func(ctx context.Context) ([]string, error) { return s.List(ctx, userID) },
	)
	if errors.Is(err, ErrUnknownProduct) {
		return res, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
	}
	return res, err
}
