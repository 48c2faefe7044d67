package loyalty

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matita-boutique/internal/common"
)

type memRepo struct {
	members map[string]Member
}

func newMemRepo(members ...Member) *memRepo {
	r := &memRepo{members: map[string]Member{}}
	for _, m := range members {
		r.members[m.ID] = m
	}
	return r
}

func (m *memRepo) Get(_ context.Context, id string) (Member, error) {
	v, ok := m.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	return v, nil
}

func (m *memRepo) List(_ context.Context, limit, offset int) ([]Member, int64, error) {
	out := make([]Member, 0, len(m.members))
	for _, v := range m.members {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Points > out[j].Points })
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := min(offset+limit, len(out))
	return out[offset:end], total, nil
}

func (m *memRepo) SetPoints(_ context.Context, id string, points int64) (Member, error) {
	v, ok := m.members[id]
	if !ok {
		return Member{}, ErrNotFound
	}
	v.Points = points
	m.members[id] = v
	return v, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.members[id]; !ok {
		return ErrNotFound
	}
	delete(m.members, id)
	return nil
}

func TestLevels(t *testing.T) {
	cases := []struct {
		points   int64
		level    Level
		progress int
	}{
		{0, LevelBronze, 0},
		{1999, LevelBronze, 39},
		{2000, LevelSilver, 40},
		{4999, LevelSilver, 99},
		{5000, LevelGold, 100},
		{90000, LevelGold, 100},
	}
	for _, tc := range cases {
		if got := LevelFor(tc.points); got != tc.level {
			t.Fatalf("points %d: expected %s, got %s", tc.points, tc.level, got)
		}
		if got := Progress(tc.points); got != tc.progress {
			t.Fatalf("points %d: expected progress %d, got %d", tc.points, tc.progress, got)
		}
	}
}

func TestStatusForMissingProfile(t *testing.T) {
	svc := NewService(newMemRepo())
	status, err := svc.Status(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.Equal(t, DefaultMemberName, status.Name)
	require.Equal(t, LevelBronze, status.Level)
	require.Zero(t, status.Points)
}

func TestAdminHandlers(t *testing.T) {
	gold, bronze := uuid.NewString(), uuid.NewString()
	repo := newMemRepo(
		Member{ID: bronze, Name: "Ana", Points: 100},
		Member{ID: gold, Name: "Lucía", Points: 7000},
	)
	h := NewHandler(NewService(repo))
	r := chi.NewRouter()
	r.Route("/admin", h.AdminRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/members", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Less(t, strings.Index(rec.Body.String(), "Lucía"), strings.Index(rec.Body.String(), "Ana"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/members/"+bronze+"/points", strings.NewReader(`{"points":2500}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"level":"Plata"`)
	require.Equal(t, int64(2500), repo.members[bronze].Points)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/members/"+bronze+"/points", strings.NewReader(`{"points":-1}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/members/"+bronze+"/points", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/members/"+gold, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/members/"+gold, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeHandler(t *testing.T) {
	id := uuid.NewString()
	h := NewHandler(NewService(newMemRepo(Member{ID: id, Name: "Lucía", Points: 2000})))
	req := httptest.NewRequest(http.MethodGet, "/club/me", nil)
	req = req.WithContext(common.WithUserID(req.Context(), id))
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"pointsValue":"1000"`)
	require.Contains(t, rec.Body.String(), `"progress":40`)
}
