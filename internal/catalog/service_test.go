package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/matita-boutique/internal/cache"
	"github.com/noah-isme/matita-boutique/internal/catalog"
)

type fakeRepo struct {
	mu        sync.Mutex
	products  map[string]catalog.Product
	listCalls int
}

func newFakeRepo(products ...catalog.Product) *fakeRepo {
	r := &fakeRepo{products: map[string]catalog.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (f *fakeRepo) List(_ context.Context, params catalog.ListParams) ([]catalog.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []catalog.Product
	for _, p := range f.products {
		if params.Category != "" && p.Category != params.Category {
			continue
		}
		if params.NewOnly && !p.IsNew {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetMany(_ context.Context, ids []string) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, in catalog.ProductInput) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := catalog.Product{ID: uuid.NewString(), Name: in.Name, Price: in.Price, OldPrice: in.OldPrice, Category: in.Category, IsNew: in.IsNew, Stock: in.Stock}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeRepo) Update(_ context.Context, id string, in catalog.ProductInput) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p := catalog.Product{ID: id, Name: in.Name, Price: in.Price, Category: in.Category, IsNew: in.IsNew, Stock: in.Stock}
	f.products[id] = p
	return p, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func newService(t *testing.T, repo catalog.Repository) *catalog.Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Repository: repo,
		Cache:      cache.NewJSON(client, "catalog", time.Minute),
	})
	require.NoError(t, err)
	return svc
}

var agendaID = uuid.NewString()

func seedRepo() *fakeRepo {
	return newFakeRepo(
		catalog.Product{ID: agendaID, Name: "Agenda 2026", Price: 2500, Category: "Escolar", IsNew: true, Stock: 4},
		catalog.Product{ID: uuid.NewString(), Name: "Regla", Price: 700, Category: "Técnica", Stock: 10},
	)
}

func TestListIsCachedUntilWrite(t *testing.T) {
	repo := seedRepo()
	svc := newService(t, repo)
	ctx := context.Background()
	params := catalog.ListParams{Page: 1, Limit: 24}

	first, err := svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	_, err = svc.List(ctx, params)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	_, err = svc.Create(ctx, catalog.ProductInput{Name: "Lapicera", Price: 900, Category: "oficina"})
	require.NoError(t, err)

	after, err := svc.List(ctx, params)
	require.NoError(t, err)
	require.Len(t, after.Items, 3)
	require.Equal(t, 2, repo.listCalls)
}

func TestCreateNormalisesCategoryAndRejectsUnknown(t *testing.T) {
	svc := newService(t, newFakeRepo())
	ctx := context.Background()

	old := int64(500)
	p, err := svc.Create(ctx, catalog.ProductInput{Name: " Tijera ", Price: 800, OldPrice: &old, Category: "mercería"})
	require.NoError(t, err)
	require.Equal(t, "Mercería", p.Category)
	require.Nil(t, p.OldPrice, "old price not above price is dropped")

	_, err = svc.Create(ctx, catalog.ProductInput{Name: "X", Price: 1, Category: "Ferretería"})
	require.Error(t, err)
	_, err = svc.Create(ctx, catalog.ProductInput{Price: 1, Category: "Oficina"})
	require.Error(t, err)
}

func TestParseListParams(t *testing.T) {
	svc := newService(t, newFakeRepo())
	params, err := svc.ParseListParams(map[string][]string{"category": {"escolar"}, "new": {"true"}, "limit": {"500"}})
	require.NoError(t, err)
	require.Equal(t, "Escolar", params.Category)
	require.True(t, params.NewOnly)
	require.Equal(t, 100, params.Limit)

	_, err = svc.ParseListParams(map[string][]string{"category": {"nope"}})
	require.Error(t, err)
	_, err = svc.ParseListParams(map[string][]string{"page": {"0"}})
	require.Error(t, err)
}

func TestLookupSkipsUnknownAndMalformedIDs(t *testing.T) {
	svc := newService(t, seedRepo())
	found, err := svc.Lookup(context.Background(), []string{agendaID, uuid.NewString(), "not-a-uuid"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Agenda 2026", found[agendaID].Name)
}

func TestHandlers(t *testing.T) {
	svc := newService(t, seedRepo())
	h := catalog.NewHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		h.Routes(r)
		r.Route("/admin", h.AdminRoutes)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?category=Escolar", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	require.Equal(t, "1", rec.Header().Get("X-Total-Count"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+agendaID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	body := strings.NewReader(`{"name":"Cartuchera","price":-5,"category":"Escolar"}`)
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/admin/products/"+agendaID, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Juguetería")
}
