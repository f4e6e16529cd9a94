package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/atlaslearn/atlas/backend/upstream"
)

// FallbackHeader carries the fallback reason on synthesized responses.
const FallbackHeader = "X-Atlas-Fallback"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// labeled is satisfied by every upstream.Outcome.
type labeled interface {
	Meta() upstream.Meta
	Reason() string
	IsFallback() bool
}

// writeOutcome writes body with 200 for real results and 203 plus the
// fallback header for synthesized ones. body is expected to embed the
// outcome's upstream.Meta.
func writeOutcome(w http.ResponseWriter, o labeled, body any) {
	if o.IsFallback() {
		w.Header().Set(FallbackHeader, o.Reason())
		writeJSON(w, http.StatusNonAuthoritativeInfo, body)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
