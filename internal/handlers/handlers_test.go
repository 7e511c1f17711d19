package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inmuebles-portal/internal/catalog"
	"inmuebles-portal/internal/locations"
	"inmuebles-portal/internal/models"
	"inmuebles-portal/internal/ratelimit"
	"inmuebles-portal/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	leads     []models.Lead
	leadErr   error
	catalog   []models.Property
	listErr   error
	closeDone bool
}

func (s *fakeStore) InitSchema() error                  { return nil }
func (s *fakeStore) SaveProperty(*models.Property) error { return nil }

func (s *fakeStore) ListProperties() ([]models.Property, error) {
	return s.catalog, s.listErr
}

func (s *fakeStore) SaveLead(l *models.Lead) error {
	if s.leadErr != nil {
		return s.leadErr
	}
	l.ID = int64(len(s.leads) + 1)
	s.leads = append(s.leads, *l)
	return nil
}

func (s *fakeStore) Close() error {
	s.closeDone = true
	return nil
}

func testRecords() []models.LocationRecord {
	return []models.LocationRecord{
		{ID: "st-jalisco", Name: "Jalisco", Slug: "jalisco", Type: models.TypeState, Popularity: 82},
		{ID: "cty-jalisco-guadalajara", Name: "Guadalajara", Slug: "guadalajara", Type: models.TypeCity,
			StateSlug: "jalisco", CitySlug: "guadalajara", Popularity: 95},
		{ID: "nb-guadalajara-americana", Name: "Americana", Slug: "americana", Type: models.TypeNeighborhood,
			StateSlug: "jalisco", CitySlug: "guadalajara", Popularity: 61},
	}
}

func testCatalog() []models.Property {
	price := 2_400_000.0
	rent := 18_500.0
	return []models.Property{
		{ID: 1, Title: "Casa en Americana", Operation: "sale", Type: "house", Price: &price,
			StateSlug: "jalisco", MunicipalitySlug: "guadalajara", NeighborhoodSlug: "americana",
			Status: models.PropertyStatusActive},
		{ID: 2, Title: "Departamento centro", Operation: "rent", Type: "apartment", Price: &rent,
			StateSlug: "jalisco", MunicipalitySlug: "zapopan",
			Status: models.PropertyStatusActive},
	}
}

type testEnv struct {
	router *gin.Engine
	store  *fakeStore
}

func newTestEnv(t *testing.T, store *fakeStore, limiter *ratelimit.Limiter) *testEnv {
	t.Helper()

	dataset := locations.FromRecords(testRecords())
	resolver := search.NewResolver(search.NewLocalBackend(dataset))

	snapshot := catalog.NewSnapshot(catalog.SliceSource(testCatalog()))
	require.NoError(t, snapshot.Reload())

	if limiter == nil {
		limiter = ratelimit.New(1000, 0, true)
	}

	h := New(nil, resolver, snapshot, store, dataset, limiter)
	router := gin.New()
	h.Register(router)
	return &testEnv{router: router, store: store}
}

func (e *testEnv) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	e.router.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (e *testEnv) post(t *testing.T, path, payload string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	e.router.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "local", body["search_backend"])
	assert.Equal(t, float64(2), body["catalog_size"])
}

func TestSearchLocations(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.get(t, "/locations?q=guadalajara")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])

	items, ok := body["items"].(map[string]any)
	require.True(t, ok)
	cities, ok := items["cities"].([]any)
	require.True(t, ok)
	require.Len(t, cities, 1)
	city := cities[0].(map[string]any)
	assert.Equal(t, "cty-jalisco-guadalajara", city["id"])
	// Empty groups serialize as arrays, not null.
	assert.Equal(t, []any{}, items["states"])
}

func TestSearchLocationsInvalidType(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.get(t, "/locations?q=guadalajara&type=galaxy")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["message"], "galaxy")
}

func TestSearchListings(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.get(t, "/listings/search?operation=sale&state=Jalisco")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "Casa en Americana", results[0].(map[string]any)["title"])
}

func TestSearchListingsBadParam(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.get(t, "/listings/search?minPrice=mucho")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "minPrice")
}

func TestSearchListingsIgnoresBadBBox(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	// A malformed bbox drops the constraint instead of failing.
	w, body := env.get(t, "/listings/search?bbox=-104,20,oops,21")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total"])
}

func TestCreateLead(t *testing.T) {
	store := &fakeStore{}
	env := newTestEnv(t, store, nil)

	w, body := env.post(t, "/leads", `{"name":"Ana","email":"ana@example.com","message":"Me interesa"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(1), body["id"])
	require.Len(t, store.leads, 1)
	assert.Equal(t, "Ana", store.leads[0].Name)
}

func TestCreateLeadValidation(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	// Missing name.
	w, _ := env.post(t, "/leads", `{"email":"ana@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Neither email nor phone.
	w, body := env.post(t, "/leads", `{"name":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "email or phone")

	// Malformed email.
	w, _ = env.post(t, "/leads", `{"name":"Ana","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateLeadNoStore(t *testing.T) {
	dataset := locations.FromRecords(testRecords())
	resolver := search.NewResolver(search.NewLocalBackend(dataset))
	snapshot := catalog.NewSnapshot(catalog.SliceSource(nil))
	require.NoError(t, snapshot.Reload())

	h := New(nil, resolver, snapshot, nil, dataset, ratelimit.New(10, 0, true))
	router := gin.New()
	h.Register(router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader(`{"name":"Ana","phone":"5512345678"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, ratelimit.New(2, 0, true))

	for i := 0; i < 2; i++ {
		w, _ := env.get(t, "/locations?q=guadalajara")
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w, body := env.get(t, "/locations?q=guadalajara")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, body["error"], "rate limit")

	// Health is never rate limited.
	w, _ = env.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReloadCatalog(t *testing.T) {
	env := newTestEnv(t, &fakeStore{}, nil)

	w, body := env.post(t, "/catalog/reload", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["catalog_size"])
	assert.Equal(t, float64(3), body["locations_size"])
}
