package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/jobs"
	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/render"
	"github.com/vytor/enemresultados/internal/services"
)

const maxBodyBytes = 8 << 20

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Results       services.ResultsService
	Charts        services.ChartService
	Queue         jobs.JobQueue
	DB            Pinger
	DefaultPeriod int
	CORSOrigins   []string
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func studentID(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("student_id", "must be a positive integer")
	}
	return id, nil
}

func chartKind(r *http.Request) (render.Kind, error) {
	raw := chi.URLParam(r, "kind")
	kind, ok := render.ParseKind(raw)
	if !ok {
		return "", errors.NewNotFoundError("chart kind", raw)
	}
	return kind, nil
}

// queryInt reads an optional integer query parameter; absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name, "must be an integer")
	}
	return n, nil
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewBadRequestError("could not read request body")
	}
	return body, nil
}
