package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
	"github.com/jeffanddom/organizex/internal/storage"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

// statusFor maps domain errors to HTTP status codes. Persistence failures and
// anything unrecognised are server errors.
func statusFor(err error) int {
	var storageErr *database.StorageError
	switch {
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError
	case errors.Is(err, quest.ErrQuestNotFound), errors.Is(err, database.ErrNotFound),
		errors.Is(err, storage.ErrPathNotFound), errors.Is(err, coordinator.ErrNotRunning):
		return http.StatusNotFound
	case errors.Is(err, quest.ErrAlreadyCompleted), errors.Is(err, quest.ErrQuestExpired),
		errors.Is(err, rewards.ErrAlreadyClaimed), errors.Is(err, coordinator.ErrRootBusy):
		return http.StatusConflict
	case errors.Is(err, coordinator.ErrTooBusy):
		return http.StatusTooManyRequests
	case errors.Is(err, storage.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotADirectory), errors.Is(err, coordinator.ErrUnknownFolder):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes it with the mapped status. Server errors hide the
// underlying message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, "path", r.URL.Path, "error", err)
		writeError(w, status, msg)
		return
	}
	s.logger.Warn(msg, "path", r.URL.Path, "error", err)
	writeError(w, status, err.Error())
}

// decodeJSON reads the request body into v. An empty body leaves v unchanged
// when optional is set.
func decodeJSON(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && optional:
		return nil
	case errors.Is(err, io.EOF):
		return errors.New("request body is required")
	default:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.New("invalid JSON")
	}
}
