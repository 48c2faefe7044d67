package loyalty

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/matita-boutique/internal/common"
)

// Service exposes club balances to checkout and administration.
type Service struct {
	repo Repository
}

// NewService constructs a loyalty service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Member returns the profile for userID. Members without a profile row get an empty balance.
func (s *Service) Member(ctx context.Context, userID string) (Member, error) {
	m, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Member{ID: userID}, nil
	}
	return m, err
}

// Status returns the club card for userID.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	m, err := s.Member(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	return StatusFor(m), nil
}

// List returns members ordered by balance, highest first.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Member, int64, error) {
	members, total, err := s.repo.List(ctx, perPage, common.Offset(page, perPage))
	if members == nil && err == nil {
		members = []Member{}
	}
	return members, total, err
}

// SetPoints overwrites a member balance.
func (s *Service) SetPoints(ctx context.Context, id string, points int64) (Member, error) {
	if err := validateID(id); err != nil {
		return Member{}, err
	}
	if points < 0 {
		return Member{}, common.NewAppError("VALIDATION_ERROR", "points must not be negative", http.StatusUnprocessableEntity, nil).
			WithDetails(map[string]string{"points": "gte"})
	}
	m, err := s.repo.SetPoints(ctx, id, points)
	return m, mapError(err)
}

// Delete removes a member profile.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return mapError(s.repo.Delete(ctx, id))
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NewAppError("NOT_FOUND", "member not found", http.StatusNotFound, err)
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return common.NewAppError("NOT_FOUND", "member not found", http.StatusNotFound, err)
	}
	return err
}
