package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/cache"
	"github.com/sdko-org/fipe-gateway/internal/database"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sdko-org/fipe-gateway/internal/models"
	"github.com/sdko-org/fipe-gateway/internal/repository"
	"github.com/sdko-org/fipe-gateway/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memoryPhotos struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newMemoryPhotos() *memoryPhotos {
	return &memoryPhotos{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryPhotos) Put(_ context.Context, key string, content io.Reader, contentType string) error {
	b, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = b
	m.types[key] = contentType
	return nil
}

func (m *memoryPhotos) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), m.types[key], nil
}

func (m *memoryPhotos) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryPhotos) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

type testEnv struct {
	router   *mux.Router
	verifier *auth.Verifier
	photos   *memoryPhotos
	db       *gorm.DB
	calls    *atomic.Int32
}

func newTestEnv(t *testing.T, upstreamStatus int, upstreamBody string) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	calls := &atomic.Int32{}
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(upstreamStatus)
		_, _ = io.WriteString(w, upstreamBody)
	}))
	t.Cleanup(up.Close)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	gw := fipe.NewGateway(log, cache.NewMemoryStore(), fipe.NewClient(log, fipe.ClientOptions{}))
	verifier := auth.NewVerifier(testSecret, "")
	photos := newMemoryPhotos()

	api := NewAPI(log, APIOptions{
		Lookups:  fipe.NewService(gw, up.URL),
		Listings: repository.NewListingRepository(db),
		History:  repository.NewSearchHistoryRepository(db),
		Photos:   photos,
		Auth:     verifier,
	})
	r := mux.NewRouter()
	RegisterRoutes(r, api)
	return &testEnv{router: r, verifier: verifier, photos: photos, db: db, calls: calls}
}

func (e *testEnv) do(t *testing.T, method, path, user string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if user != "" {
		token, err := e.verifier.Sign(user, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(t *testing.T, method, path, user string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(t, method, path, user, body, "application/json")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)
	rr := env.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestModelsEndpoint(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `{"modelos":[{"codigo":5940,"nome":"Gol"}],"anos":[{"codigo":"2014-1","nome":"2014"}]}`)

	rr := env.do(t, http.MethodGet, "/api/fipe/carros/brands/59/models", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"codigo":"5940","nome":"Gol"}]`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/fipe/carros/brands/59/models", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int32(1), env.calls.Load())
}

func TestLookupInvalidCategory(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)

	rr := env.do(t, http.MethodGet, "/api/fipe/barcos/brands", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, int32(0), env.calls.Load())
}

func TestLookupHyphenatedModelCode(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)

	rr := env.do(t, http.MethodGet, "/api/fipe/carros/brands/1/models/2-3/years", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, int32(0), env.calls.Load())
}

func TestLookupUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, http.StatusInternalServerError, `secret upstream detail`)

	rr := env.do(t, http.MethodGet, "/api/fipe/motos/brands/1/models/2/years/3", "", nil, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), fipe.ErrUpstreamUnavailable.Error())
	assert.NotContains(t, rr.Body.String(), "secret upstream detail")
}

func TestLookupDecodeFailure(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `<html>maintenance</html>`)

	rr := env.do(t, http.MethodGet, "/api/fipe/carros/brands", "", nil, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.NotContains(t, rr.Body.String(), "maintenance")
}

func TestSimulations(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)

	rr := env.doJSON(t, http.MethodPost, "/api/simulations/financing", "", map[string]any{
		"value": "R$ 42.367,00", "downPayment": 10000, "term": 12,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var fin map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fin))
	assert.InDelta(t, 2967.0, fin["monthlyPayment"], 0.001)
	assert.Equal(t, "R$ 2.967,00", fin["monthlyPaymentFormatted"])

	rr = env.doJSON(t, http.MethodPost, "/api/simulations/financing", "", map[string]any{
		"value": "R$ 42.367,00", "term": 7,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.doJSON(t, http.MethodPost, "/api/simulations/valuation", "", map[string]any{
		"value": "R$ 40.000,00", "mileage": "100000", "condition": "good",
		"optionals": map[string]bool{"multimedia": true, "sunroof": false},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	var val map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &val))
	assert.InDelta(t, 31600.0, val["suggestedValue"], 0.001)
	assert.Equal(t, "R$ 31.600,00", val["suggestedValueFormatted"])

	rr = env.doJSON(t, http.MethodPost, "/api/simulations/valuation", "", map[string]any{
		"value": "R$ 40.000,00", "mileage": "high", "condition": "good",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/simulations/valuation", "", strings.NewReader("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func createListing(t *testing.T, env *testEnv, user string) models.Listing {
	t.Helper()
	rr := env.doJSON(t, http.MethodPost, "/api/listings", user, map[string]any{
		"modelName": "Gol 1.0", "brandName": "VW - VolksWagen", "year": "2014",
		"fuelType": "Gasolina", "fipeCode": "005340-6", "price": 42000,
		"mileage": "100000", "condition": "good", "optionals": map[string]bool{"abs": true},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var l models.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &l))
	return l
}

func TestListingLifecycle(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)

	rr := env.doJSON(t, http.MethodPost, "/api/listings", "", map[string]any{"modelName": "Gol"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	l := createListing(t, env, "seller-1")
	assert.Equal(t, "seller-1", l.SellerID)
	assert.Equal(t, models.ListingActive, l.Status)

	rr = env.do(t, http.MethodGet, "/api/listings", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []models.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, l.ID, listed[0].ID)

	rr = env.doJSON(t, http.MethodPatch, "/api/listings/"+l.ID, "someone-else", map[string]any{"price": 1})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.doJSON(t, http.MethodPatch, "/api/listings/"+l.ID, "seller-1", map[string]any{"price": 39900})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated models.Listing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 39900.0, updated.Price)

	rr = env.do(t, http.MethodPut, "/api/listings/"+l.ID+"/photo", "seller-1", strings.NewReader("not an image"), "text/plain")
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/listings/"+l.ID+"/photo", "seller-1", strings.NewReader("jpeg-bytes"), "image/jpeg")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/listings/"+l.ID+"/photo", "", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/jpeg", rr.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg-bytes", rr.Body.String())

	rr = env.do(t, http.MethodDelete, "/api/listings/"+l.ID, "seller-1", nil, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.False(t, env.photos.has(photoKey(l.ID)))

	rr = env.do(t, http.MethodGet, "/api/listings/"+l.ID, "", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHistoryKeepsLatestThree(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `[]`)

	for i := 0; i < 4; i++ {
		rr := env.doJSON(t, http.MethodPost, "/api/history", "user-1", map[string]any{
			"vehicleType": "carros", "brandName": "VW", "modelName": fmt.Sprintf("Gol %d", i),
			"year": "2014", "price": "R$ 42.367,00",
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := env.doJSON(t, http.MethodPost, "/api/history", "user-1", map[string]any{"vehicleType": "barcos"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/history", "user-1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []models.SearchHistory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Len(t, entries, 3)

	rr = env.do(t, http.MethodGet, "/api/history", "user-2", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/history", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
