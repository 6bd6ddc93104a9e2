package api

import (
	"context"
	"net/http"

	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/ingest"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
)

type ingestFunc func(ctx context.Context, studentID int64, raw []byte) (int, error)

func (s *Server) handleIngestPerformance(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.Results.IngestPerformance)
}

func (s *Server) handleIngestActivity(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.Results.IngestActivity)
}

func (s *Server) handleIngestSimulados(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.Results.IngestSimulados)
}

func (s *Server) handleIngestEssays(w http.ResponseWriter, r *http.Request) {
	s.ingest(w, r, s.Results.IngestEssays)
}

func (s *Server) ingest(w http.ResponseWriter, r *http.Request, fn ingestFunc) {
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	body, err := readBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	n, err := fn(r.Context(), id, body)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]any{"stored": n})
}

func (s *Server) handleDeleteRecords(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.Results.DeleteRecords(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) period(r *http.Request) int {
	return ingest.ParsePeriod(r.URL.Query().Get("periodo"), s.DefaultPeriod)
}

func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	metrics.SnapshotLoads.WithLabelValues("request").Inc()
	snap, err := s.Results.LoadSnapshot(r.Context(), id, s.period(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleReloadSnapshot(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if s.Queue == nil {
		handleError(w, r, errors.NewUnavailableError("background reloads are disabled", nil))
		return
	}

	period := s.period(r)
	if err := s.Queue.EnqueueReload(id, period); err != nil {
		handleError(w, r, errors.NewUnavailableError("reload queue is full", err))
		return
	}
	log.Debug("queued snapshot reload for student %d (period=%d)", id, period)
	writeJSON(w, r, http.StatusAccepted, map[string]any{
		"status":     "queued",
		"student_id": id,
		"period":     period,
	})
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	snap, err := s.Results.Snapshot(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, err := studentID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	events, err := s.Results.History(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"events": events})
}
