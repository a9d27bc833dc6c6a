package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"espresso/internal/app"
	"espresso/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeMachineError maps a machine error onto a status code and reports the
// machine status alongside it.
func (s *Server) writeMachineError(w http.ResponseWriter, r *http.Request, err error) {
	status := machineErrorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "machine operation failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, map[string]any{
		"error":  err.Error(),
		"status": s.machine.Status(r.Context()).Status,
	})
}

func machineErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, app.ErrUnknownSize):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDescaleNeeded),
		errors.Is(err, domain.ErrInsufficientQuantity),
		errors.Is(err, domain.ErrContainerFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func intQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
