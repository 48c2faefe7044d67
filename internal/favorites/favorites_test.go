package favorites

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matita-boutique/internal/common"
	"github.com/noah-isme/matita-boutique/internal/optimistic"
)

type memRepo struct {
	ids      map[string][]string
	known    map[string]bool
	failNext bool
}

func (m *memRepo) List(_ context.Context, userID string) ([]string, error) {
	return slices.Clone(m.ids[userID]), nil
}

func (m *memRepo) Add(_ context.Context, userID, productID string) error {
	if m.failNext {
		m.failNext = false
		return errors.New("timeout")
	}
	if !m.known[productID] {
		return ErrUnknownProduct
	}
	if !slices.Contains(m.ids[userID], productID) {
		m.ids[userID] = append(m.ids[userID], productID)
	}
	return nil
}

func (m *memRepo) Remove(_ context.Context, userID, productID string) error {
	m.ids[userID] = slices.DeleteFunc(m.ids[userID], func(id string) bool { return id == productID })
	return nil
}

func TestToggleAddsThenRemoves(t *testing.T) {
	product := uuid.NewString()
	repo := &memRepo{ids: map[string][]string{}, known: map[string]bool{product: true}}
	svc := NewService(repo)
	ctx := context.Background()

	res, err := svc.Toggle(ctx, "u1", product)
	require.NoError(t, err)
	require.Equal(t, []string{product}, res.State)

	res, err = svc.Toggle(ctx, "u1", product)
	require.NoError(t, err)
	require.Empty(t, res.State)
	require.Empty(t, repo.ids["u1"])
}

func TestToggleReconcilesOnFailure(t *testing.T) {
	product := uuid.NewString()
	repo := &memRepo{ids: map[string][]string{}, known: map[string]bool{product: true}, failNext: true}
	res, err := NewService(repo).Toggle(context.Background(), "u1", product)
	require.Error(t, err)
	require.Equal(t, optimistic.Reconciled, res.Outcome)
	require.Empty(t, res.State)
}

func TestToggleHandler(t *testing.T) {
	product := uuid.NewString()
	repo := &memRepo{ids: map[string][]string{}, known: map[string]bool{product: true}}
	r := chi.NewRouter()
	r.Route("/favorites", NewHandler(NewService(repo)).Routes)

	serve := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req = req.WithContext(common.WithUserID(req.Context(), "u1"))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("/favorites/" + product + "/toggle")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"isFavorite":true`)

	rec = serve("/favorites/" + uuid.NewString() + "/toggle")
	require.Equal(t, http.StatusNotFound, rec.Code)

	repo.failNext = true
	rec = serve("/favorites/" + product + "/toggle")
	require.Equal(t, http.StatusOK, rec.Code, "removal does not hit the failing insert path")

	repo.failNext = true
	rec = serve("/favorites/" + product + "/toggle")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "reconciled")
}
