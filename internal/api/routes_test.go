package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codyseavey/card-checklist/internal/api/handlers"
	"github.com/codyseavey/card-checklist/internal/catalog"
	"github.com/codyseavey/card-checklist/internal/catalog/catalogtest"
	"github.com/codyseavey/card-checklist/internal/config"
	"github.com/codyseavey/card-checklist/internal/database"
	"github.com/codyseavey/card-checklist/internal/models"
	"github.com/codyseavey/card-checklist/internal/services"
)

const testChecklist = `<html><body>
<h2 id="1996-97">1996-97 [2]</h2>
<table>
  <tr><th>Year</th><th>Brand</th><th>#</th><th>Limited</th></tr>
  <tr><td>1996-97</td><td>SP Authentic Refractor</td><td>12</td><td>#25/99</td></tr>
  <tr><td>1996-97</td><td>unknown product xyz</td><td>3</td><td>--</td></tr>
</table>
</body></html>`

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, db *gorm.DB, c *catalog.Catalog) *gin.Engine {
	t.Helper()
	svc := services.NewImportService(db, c, services.ImportConfig{}, zerolog.Nop())
	cfg := config.DefaultConfig().Server
	cfg.RateLimit = 0

	router, err := SetupRouter(svc, cfg, services.ScriptOptions{}, zerolog.Nop())
	require.NoError(t, err)
	return router
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(":memory:", logger.Silent)
	require.NoError(t, err)
	return db
}

func do(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(router, req)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := do(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))
	do(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	w := do(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "checklist_http_requests_total")
}

func TestResolveEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))
	body := `{"label":"SP Authentic Refractor","season":"1996-97"}`

	w := postJSON(router, "/api/resolve", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlers.ResolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Attributes.BrandID)
	assert.Equal(t, 2, resp.Attributes.VariantID)
	assert.Equal(t, services.ConfidenceHigh, resp.Attributes.Confidence)
	assert.False(t, resp.Cached)

	w = postJSON(router, "/api/resolve", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cached)
	assert.Equal(t, 3, resp.Attributes.BrandID)
}

func TestResolveReportsFallbackIssues(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := postJSON(router, "/api/resolve", `{"label":"Score Board Autographed","season":"1996-97"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.ResolveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Attributes.ManufacturerID)
	assert.Equal(t, services.ConfidenceLow, resp.Attributes.Confidence)
	assert.NotEmpty(t, resp.Issues)
}

func TestResolveValidation(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := postJSON(router, "/api/resolve", `{"season":"1996-97"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/api/resolve", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogStats(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/catalog/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.CatalogStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Counts.Manufacturers)
	assert.Equal(t, 1, resp.DefaultVariantID)
	assert.True(t, resp.HasBaseVariant)
}

func TestEmptyCatalog(t *testing.T) {
	empty, _ := catalog.Build(catalog.RawReferences{})
	router := newTestRouter(t, newTestDB(t), empty)

	w := postJSON(router, "/api/resolve", `{"label":"Topps"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(router, httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(testChecklist)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), string(models.ImportStatusAborted))
}

func TestImportLifecycle(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), catalogtest.Catalog(t))

	req := httptest.NewRequest(http.MethodPost, "/api/imports?source=howard.html", strings.NewReader(testChecklist))
	req.Header.Set("Content-Type", "text/html")
	w := do(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handlers.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.Run)
	assert.Equal(t, "howard.html", created.Run.Source)
	assert.Equal(t, 2, created.Run.RowsTotal)
	assert.Equal(t, 1, created.Run.AcceptedCount)
	require.Len(t, created.NeedsReview, 1)
	assert.Equal(t, "unknown product xyz", created.NeedsReview[0].RawBrand)

	id := created.Run.ID

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list models.ImportRunListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.TotalCount)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.ImportRunDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, id, detail.Run.ID)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id+"/review", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var review models.ReviewListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &review))
	assert.Equal(t, 1, review.TotalCount)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id+"/review?format=text", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Card Review Log")
	assert.Contains(t, w.Body.String(), "unknown product xyz")

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id+"/sql", nil))
	require.Equal(t, http.StatusOK, w.Code)
	script := w.Body.String()
	assert.True(t, strings.HasPrefix(script, "USE cardcollection;"))
	assert.Equal(t, 1, strings.Count(script, "INSERT INTO card "))
	assert.NotContains(t, script, "ON DUPLICATE KEY UPDATE")

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id+"/sql?upsert=true", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ON DUPLICATE KEY UPDATE")

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/"+id+"/sql?upsert=maybe", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportMultipartUpload(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), catalogtest.Catalog(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "index.html")
	require.NoError(t, err)
	_, err = part.Write([]byte(testChecklist))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := do(router, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created handlers.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "index.html", created.Run.Source)
}

func TestImportMultipartWithoutFile(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), catalogtest.Catalog(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, do(router, req).Code)
}

func TestImportFormats(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := do(router, httptest.NewRequest(http.MethodPost, "/api/imports?format=sql", strings.NewReader(testChecklist)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "-- Inserting card data --")
	assert.Contains(t, w.Header().Get("Content-Type"), "application/sql")

	w = do(router, httptest.NewRequest(http.MethodPost, "/api/imports?format=review", strings.NewReader(testChecklist)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Entries needing review: 1")
}

func TestPersistenceDisabled(t *testing.T) {
	router := newTestRouter(t, nil, catalogtest.Catalog(t))

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/imports", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(router, httptest.NewRequest(http.MethodGet, "/api/imports/abc/sql", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUnknownRun(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), catalogtest.Catalog(t))

	for _, path := range []string{"/api/imports/missing", "/api/imports/missing/review", "/api/imports/missing/sql"} {
		w := do(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestListImportsBadLimit(t *testing.T) {
	router := newTestRouter(t, newTestDB(t), catalogtest.Catalog(t))

	w := do(router, httptest.NewRequest(http.MethodGet, "/api/imports?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(1, 2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		codes[i] = do(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.9:4000"
	assert.Equal(t, http.StatusOK, do(router, other).Code, "limits are per client")
}

func TestRateLimitDisabled(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(0, 0))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		require.Equal(t, http.StatusOK, do(router, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}
