package reviews

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
)

// MemberLookup resolves the display name shown next to a member review.
type MemberLookup interface {
	Member(ctx context.Context, userID string) (loyalty.Member, error)
}

// Input is the payload accepted when a review is posted.
type Input struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" validate:"max=2000"`
	UserName string `json:"userName" validate:"max=120"`
}

type Service struct {
	repo    Repository
	members MemberLookup
}

func NewService(repo Repository, members MemberLookup) *Service {
	return &Service{repo: repo, members: members}
}

// List returns reviews newest first, optionally scoped to one product.
func (s *Service) List(ctx context.Context, productID string, page, perPage int) ([]Review, error) {
	if productID != "" {
		if _, err := uuid.Parse(productID); err != nil {
			return nil, notFound(err)
		}
	}
	out, err := s.repo.List(ctx, productID, perPage, common.Offset(page, perPage))
	if out == nil && err == nil {
		out = []Review{}
	}
	return out, err
}

// Add stores a review for productID. Members are credited with their profile name.
func (s *Service) Add(ctx context.Context, userID, productID string, in Input) (Review, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return Review{}, notFound(err)
	}
	if err := common.Validator().Struct(in); err != nil {
		return Review{}, common.NewAppError("VALIDATION_ERROR", "invalid review", http.StatusUnprocessableEntity, err).
			WithDetails(common.ValidationDetails(err))
	}
	r := Review{
		ProductID: productID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		UserName:  strings.TrimSpace(in.UserName),
	}
	if userID != "" {
		r.UserID = &userID
		if s.members != nil {
			m, err := s.members.Member(ctx, userID)
			if err != nil {
				return Review{}, err
			}
			if strings.TrimSpace(m.Name) != "" || r.UserName == "" {
				r.UserName = m.DisplayName()
			}
		}
	}
	if r.UserName == "" {
		r.UserName = loyalty.DefaultMemberName
	}
	saved, err := s.repo.Insert(ctx, r)
	if errors.Is(err, ErrUnknownProduct) {
		return Review{}, notFound(err)
	}
	return saved, err
}

// Stats returns the rating count and average for a product, rounded to one decimal.
func (s *Service) Stats(ctx context.Context, productID string) (Stats, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return Stats{}, notFound(err)
	}
	st, err := s.repo.Stats(ctx, productID)
	if err != nil {
		return Stats{}, err
	}
	st.Average = math.Round(st.Average*10) / 10
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(err)
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return notFound(err)
	}
	return err
}

func notFound(err error) error {
	return common.NewAppError("NOT_FOUND", "not found", http.StatusNotFound, err)
}
