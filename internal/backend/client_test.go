package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/enemresultados/internal/backend"
	"github.com/vytor/enemresultados/internal/datekey"
)

var brt = time.FixedZone("BRT", -3*3600)

func TestClient_SendsHeadersAndPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resultados/desempenho/42", r.URL.Path)
		assert.Equal(t, "60", r.URL.Query().Get("periodo"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "42", r.Header.Get("X-User-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"evolucao_diaria":[{"materia":"matematica","data":"2024-03-05","taxa_acerto":0.7}]}`))
	}))
	defer srv.Close()

	c := backend.New([]string{srv.URL}, "secret", brt)
	got, err := c.Performance(context.Background(), 42, 60)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "matematica", got[0].Subject)
	assert.Equal(t, "2024-03-05", datekey.Key(*got[0].TakenAt))
}

func TestClient_FailsOverToNextHost(t *testing.T) {
	var primaryHits int32
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&primaryHits, 1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/resultados/atividade/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"atividade_semanal":[{"dia":0,"questoes":20,"minutos":45}]}`))
	}))
	defer fallback.Close()

	c := backend.New([]string{primary.URL, fallback.URL}, "", brt)
	got, err := c.Activity(context.Background(), 7, 30)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 20.0, got[0].QuestionsCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&primaryHits))
}

func TestClient_AllHostsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	c := backend.New([]string{srv.URL}, "", brt)
	_, err := c.Simulados(context.Background(), 1, 30)
	require.Error(t, err)

	var statusErr *backend.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
}

func TestClient_EssaysHaveNoPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/redacoes/usuario/3", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"data":{"redacoes":[{"tema":"Energia","status":"corrigida","nota_total":900}]}}`))
	}))
	defer srv.Close()

	c := backend.New([]string{srv.URL}, "", brt)
	got, err := c.Essays(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Energia", got[0].Theme)
	require.NotNil(t, got[0].Score)
	assert.Equal(t, 900.0, *got[0].Score)
}

func TestClient_NoBaseURL(t *testing.T) {
	c := backend.New(nil, "", brt)
	_, err := c.Performance(context.Background(), 1, 30)
	assert.ErrorIs(t, err, backend.ErrNoBaseURL)
}
