package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/inventory"
	"github.com/andresuchdata/stockline/internal/repository/memory"
	"github.com/andresuchdata/stockline/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestRouter(t *testing.T) (*gin.Engine, *memory.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	store.PutArticle(domain.Article{
		ID: 1, Name: "Widget", StockOnHand: 2,
		AnnualDemand: ptr(90.0), HoldingCost: ptr(50.0),
		Model: domain.ModelFixedLot, DefaultSupplierID: ptr(int64(7)),
	})
	store.PutArticle(domain.Article{ID: 2, Name: "Unlinked", StockOnHand: 5, Model: domain.ModelFixedLot})
	store.PutTerms(domain.SupplierTerms{ArticleID: 1, SupplierID: 7, PurchaseCost: 12, OrderCost: 800, LeadTimeDays: ptr(5)})

	now := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
	svc := service.NewInventoryService(store, inventory.DefaultParameters(), nil).
		WithClock(func() time.Time { return now })

	return NewRouter(&Services{InventoryService: svc}, []string{"*"}), store
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestPolicyLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/articles/1/policy", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), string(domain.CodeNoActivePolicy))

	w = do(router, http.MethodPost, "/api/v1/articles/1/policy", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var record domain.InventoryPolicyRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, 54, *record.OptimalLotSize)

	w = do(router, http.MethodGet, "/api/v1/articles/1/policy", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/articles/1/cgi", "")
	require.Equal(t, http.StatusOK, w.Code)
	var breakdown domain.CostBreakdown
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &breakdown))
	assert.InDelta(t, 3763.3333, breakdown.Total, 1e-3)

	w = do(router, http.MethodGet, "/api/v1/replenishment/reorder", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestErrorMapping(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   domain.ErrorCode
	}{
		{name: "unknown article", method: http.MethodPost, path: "/api/v1/articles/99/policy", status: http.StatusNotFound, code: domain.CodeArticleNotFound},
		{name: "no default supplier", method: http.MethodPost, path: "/api/v1/articles/2/policy", status: http.StatusUnprocessableEntity, code: domain.CodeNoDefaultSupplier},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/articles/abc/cgi", status: http.StatusBadRequest},
		{name: "missing body", method: http.MethodPut, path: "/api/v1/articles/1/default-supplier", body: `{}`, status: http.StatusBadRequest},
		{name: "unknown terms", method: http.MethodPut, path: "/api/v1/articles/2/default-supplier", body: `{"supplier_id":7}`, status: http.StatusNotFound, code: domain.CodeSupplierTermsNotFound},
		{name: "over adjustment", method: http.MethodPost, path: "/api/v1/articles/1/adjustments", body: `{"quantity":3}`, status: http.StatusUnprocessableEntity, code: domain.CodeInsufficientStock},
		{name: "stock remaining", method: http.MethodPost, path: "/api/v1/articles/1/discontinue", status: http.StatusUnprocessableEntity, code: domain.CodeStockRemaining},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), string(tt.code))
			}
		})
	}
}

func TestDemandEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	store.RecordSale(1, time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC), 4)

	w := do(router, http.MethodGet, "/api/v1/articles/1/demand", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["sample_day_count"])
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"http://a.test, http://b.test", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
