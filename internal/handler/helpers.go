package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"taskhero/internal/game"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// writeServiceError maps a game.Service failure to a response: validation
// problems go back to the caller, anything else is logged and hidden behind
// a generic message.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error, msg string) {
	if game.IsValidation(err) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logger.Error(msg, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
}
