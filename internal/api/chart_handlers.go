package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/render"
)

type pointerRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (s *Server) chartParams(r *http.Request) (int64, render.Kind, error) {
	id, err := studentID(r)
	if err != nil {
		return 0, "", err
	}
	kind, err := chartKind(r)
	if err != nil {
		return 0, "", err
	}
	return id, kind, nil
}

func chartSize(r *http.Request) (int, int, error) {
	w, err := queryInt(r, "w")
	if err != nil {
		return 0, 0, err
	}
	h, err := queryInt(r, "h")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func (s *Server) handleActivateChart(w http.ResponseWriter, r *http.Request) {
	id, kind, err := s.chartParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	width, height, err := chartSize(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.Charts.Activate(r.Context(), id, kind, width, height)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleChartImage(w http.ResponseWriter, r *http.Request) {
	id, kind, err := s.chartParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	width, height, err := chartSize(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	img, err := s.Charts.Image(r.Context(), id, kind, width, height)
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	id, kind, err := s.chartParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req pointerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		handleError(w, r, errors.NewValidationError("body", "expected {\"x\": number, \"y\": number}"))
		return
	}
	if req.X == nil || req.Y == nil {
		handleError(w, r, errors.NewValidationError("body", "x and y are required"))
		return
	}

	view, err := s.Charts.PointerMove(r.Context(), id, kind, *req.X, *req.Y)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handlePointerLeave(w http.ResponseWriter, r *http.Request) {
	id, kind, err := s.chartParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.Charts.PointerLeave(r.Context(), id, kind)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}
