package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"walletcat/internal/catalog"
	"walletcat/internal/domain"
	"walletcat/internal/services/references"
	"walletcat/internal/workers/importrunner"
)

var errImportsDisabled = errors.New("imports need the Postgres store")

type runtimeError struct {
	code int
	err  error
}

func (e *runtimeError) Error() string { return e.err.Error() }
func (e *runtimeError) Unwrap() error { return e.err }

func badRequest(err error) error { return &runtimeError{code: http.StatusBadRequest, err: err} }

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

func statusFor(err error) int {
	var rt *runtimeError
	switch {
	case errors.As(err, &rt):
		return rt.code
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownVariant),
		errors.Is(err, domain.ErrUnsupportedVariant),
		errors.Is(err, domain.ErrNoVariants),
		errors.Is(err, references.ErrUnknownAttribute),
		errors.Is(err, importrunner.ErrBadSource):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errImportsDisabled):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	body := errorBody{Error: err.Error(), RequestID: middleware.GetReqID(r.Context())}
	if code == http.StatusInternalServerError {
		s.log.Errorw("request failed", "path", r.URL.Path, "requestID", body.RequestID, "error", err)
		body.Error = http.StatusText(code)
	}
	writeJSON(w, code, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
