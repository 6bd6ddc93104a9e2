package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/models"
	"github.com/vytor/enemresultados/internal/repository/sqlite"
	"github.com/vytor/enemresultados/internal/services"
	"github.com/vytor/enemresultados/internal/session"
	"github.com/vytor/enemresultados/internal/testutil"
	"github.com/vytor/enemresultados/internal/testutil/mocks"
)

type apiFixture struct {
	handler http.Handler
	queue   *mocks.MockJobQueue
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	repo := sqlite.NewRecordRepository(db, loc)
	sessions := session.NewStore()
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, loc)
	results := services.NewResultsService(repo, repo, sessions, loc, services.WithClock(func() time.Time { return now }))

	cache, err := services.NewImageCache(1 << 20)
	require.NoError(t, err)
	t.Cleanup(cache.Close)
	charts := services.NewChartService(sessions, cache, services.ChartConfig{Width: 400, Height: 300})

	queue := new(mocks.MockJobQueue)
	srv := &Server{
		Results:       results,
		Charts:        charts,
		Queue:         queue,
		DB:            db,
		DefaultPeriod: 30,
	}
	return &apiFixture{handler: srv.Routes(), queue: queue}
}

func (f *apiFixture) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

const performanceBody = `{"evolucao_diaria":[
	{"materia":"matematica","data":"2024-03-05","taxa_acerto":70},
	{"materia":"linguagens","data":"2024-03-08","taxa_acerto":55},
	{"materia":"matematica","data":"2024-03-11","taxa_acerto":80}
]}`

const activityBody = `[
	{"dia":1,"questoes":12,"minutos":40},
	{"dia":2,"questoes":20,"minutos":45}
]`

func TestHealthAndReady(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestInvalidStudentID(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/students/abc/snapshot", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}

func TestSnapshotNotLoaded(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/students/7/snapshot", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/radar/activate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteAndChartKind(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/pie/activate", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestAndLoadSnapshot(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/7/performance", performanceBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"stored":3}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/students/7/activity", activityBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"stored":2}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/students/7/snapshot?periodo=ULT_7_DIAS", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(7), snap.StudentID)
	assert.Equal(t, 7, snap.Period)
	assert.Len(t, snap.Bar.Labels, 7)
	assert.Contains(t, snap.Line.Subjects, "Matemática")

	rec = f.do(t, http.MethodGet, "/api/students/7/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var again models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	assert.Equal(t, snap.ID, again.ID)

	rec = f.do(t, http.MethodGet, "/api/students/7/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Events []models.HistoryEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.NotNil(t, history.Events)
}

func TestIngestRejectsMalformedBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/7/essays", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error.Code)
}

func TestDeleteRecords(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/7/performance", performanceBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/students/7/records", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.Line.DateKeys, 7)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, snap.Line.SeriesBySubject["Matemática"])
}

func TestReloadSnapshot(t *testing.T) {
	f := newFixture(t)
	f.queue.On("EnqueueReload", int64(7), 15).Return(nil).Once()

	rec := f.do(t, http.MethodPost, "/api/students/7/snapshot/reload?periodo=15", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"status":"queued","student_id":7,"period":15}`, rec.Body.String())
	f.queue.AssertExpectations(t)
}

func TestReloadSnapshotQueueFull(t *testing.T) {
	f := newFixture(t)
	f.queue.On("EnqueueReload", int64(7), mock.Anything).Return(errors.New("queue full"))

	rec := f.do(t, http.MethodPost, "/api/students/7/snapshot/reload", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "UNAVAILABLE", decodeError(t, rec).Error.Code)
}

func TestChartFlow(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/7/performance", performanceBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/students/7/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/line/activate?w=400&h=300", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var view services.ChartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 400, view.Width)
	assert.Equal(t, 300, view.Height)
	assert.Equal(t, -1, view.Hovered)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/line/pointer", `{"x":60,"y":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 0, view.Hovered)
	assert.True(t, view.Tooltip.Visible)

	rec = f.do(t, http.MethodGet, "/api/students/7/charts/line/image?w=400&h=300", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/line/leave", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, -1, view.Hovered)
	assert.False(t, view.Tooltip.Visible)
}

func TestPointerMoveBadBody(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/students/7/charts/bar/pointer", `{"x":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/bar/pointer", `nope`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartSizeValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/students/7/charts/bar/image?w=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/students/7/charts/bar/activate?w=4096&h=4096", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error.Code)
}
