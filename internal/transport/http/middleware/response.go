package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError rejects a request with a JSON error body. Middleware cannot
// reach the handler package's envelopes, so it carries its own minimal one.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
