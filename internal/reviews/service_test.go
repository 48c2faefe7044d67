package reviews

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/loyalty"
)

type memRepo struct {
	reviews []Review
	known   map[string]bool
	clock   time.Time
}

func (m *memRepo) List(_ context.Context, productID string, limit, offset int) ([]Review, error) {
	var out []Review
	for _, r := range m.reviews {
		if productID == "" || r.ProductID == productID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) Insert(_ context.Context, r Review) (Review, error) {
	if !m.known[r.ProductID] {
		return Review{}, ErrUnknownProduct
	}
	m.clock = m.clock.Add(time.Minute)
	r.ID = uuid.NewString()
	r.CreatedAt = m.clock
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *memRepo) Stats(_ context.Context, productID string) (Stats, error) {
	var st Stats
	var sum int
	for _, r := range m.reviews {
		if r.ProductID == productID {
			st.Count++
			sum += r.Rating
		}
	}
	if st.Count > 0 {
		st.Average = float64(sum) / float64(st.Count)
	}
	return st, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type members map[string]loyalty.Member

func (m members) Member(_ context.Context, id string) (loyalty.Member, error) {
	if mem, ok := m[id]; ok {
		return mem, nil
	}
	return loyalty.Member{ID: id}, nil
}

func newFixture() (*Service, *memRepo, string, string) {
	p1, p2 := uuid.NewString(), uuid.NewString()
	repo := &memRepo{known: map[string]bool{p1: true, p2: true}, clock: time.Unix(1700000000, 0)}
	svc := NewService(repo, members{"u1": {ID: "u1", Name: "Lucía"}})
	return svc, repo, p1, p2
}

func TestAddUsesMemberName(t *testing.T) {
	svc, _, p1, _ := newFixture()
	ctx := context.Background()

	r, err := svc.Add(ctx, "u1", p1, Input{Rating: 5, Comment: " hermoso ", UserName: "otro"})
	require.NoError(t, err)
	require.Equal(t, "Lucía", r.UserName)
	require.Equal(t, "hermoso", r.Comment)
	require.NotNil(t, r.UserID)

	r, err = svc.Add(ctx, "u2", p1, Input{Rating: 4})
	require.NoError(t, err)
	require.Equal(t, loyalty.DefaultMemberName, r.UserName)
}

func TestAddRejectsInvalidRating(t *testing.T) {
	svc, _, p1, _ := newFixture()
	for _, rating := range []int{0, 6} {
		_, err := svc.Add(context.Background(), "u1", p1, Input{Rating: rating})
		var appErr *common.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _, _, _ := newFixture()
	_, err := svc.Add(context.Background(), "u1", uuid.NewString(), Input{Rating: 3})
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestListNewestFirstAndStats(t *testing.T) {
	svc, _, p1, p2 := newFixture()
	ctx := context.Background()
	for _, in := range []struct {
		product string
		rating  int
	}{{p1, 5}, {p2, 2}, {p1, 4}} {
		_, err := svc.Add(ctx, "u1", in.product, Input{Rating: in.rating})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 4, all[0].Rating)

	byProduct, err := svc.List(ctx, p2, 1, 10)
	require.NoError(t, err)
	require.Len(t, byProduct, 1)

	st, err := svc.Stats(ctx, p1)
	require.NoError(t, err)
	require.Equal(t, int64(2), st.Count)
	require.InDelta(t, 4.5, st.Average, 0.001)
}

func TestHandlerCreateRequiresAuth(t *testing.T) {
	svc, repo, p1, _ := newFixture()
	requireAuth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := common.UserID(r.Context()); !ok {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "login required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	r := chi.NewRouter()
	NewHandler(svc, 10).Routes(r, requireAuth)

	req := httptest.NewRequest(http.MethodPost, "/products/"+p1+"/reviews", strings.NewReader(`{"rating":5}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/products/"+p1+"/reviews", strings.NewReader(`{"rating":5,"comment":"ok"}`))
	req = req.WithContext(common.WithUserID(req.Context(), "u1"))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.reviews, 1)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/"+p1+"/reviews/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"count":1`)
}
