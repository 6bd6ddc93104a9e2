package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/vytor/enemresultados/internal/errors"
	"github.com/vytor/enemresultados/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// toAppError maps any error onto the response taxonomy. Cancelled and timed
// out requests (a snapshot load or a chart activation still waiting) are
// reported as unavailable.
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewUnavailableError("request did not complete", err)
	}
	return errors.NewInternalError(err)
}

// handleError writes err as {"error": {"code", "message"}} with its status.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := toAppError(err)

	if appErr.Status >= 500 {
		log.Error("%s %s: %v", r.Method, r.URL.Path, appErr)
	} else {
		log.Warn("%s %s: %v", r.Method, r.URL.Path, appErr)
	}

	writeJSON(w, r, appErr.Status, errorResponse{Error: errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
	}})
}
