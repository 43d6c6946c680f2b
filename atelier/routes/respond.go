package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelier/atelier/types"
	"atelier/atelier/utils/logging"

	"go.uber.org/zap"
)

// envelope is the uniform response shape: {success, data|token|error}.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Token   string      `json:"token,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, envelope{Success: true, Data: data})
}

func writeToken(w http.ResponseWriter, status int, token string) {
	writeEnvelope(w, status, envelope{Success: true, Token: token})
}

// writeError converts a controller failure at the boundary. Unknown
// errors become an opaque 500; internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.ErrorLogger.Error("request failed", zap.Error(err))
		if !errors.Is(err, types.ErrUpstream) && !errors.Is(err, types.ErrMalformedResponse) {
			msg = "internal server error"
		}
	}
	writeEnvelope(w, status, envelope{Success: false, Error: msg})
}

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation),
		errors.Is(err, types.ErrEmptyHistory),
		errors.Is(err, types.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrInvalidCredentials),
		errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a request body; malformed JSON is a validation
// failure, not a server error.
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return types.ErrValidation
	}
	return nil
}
