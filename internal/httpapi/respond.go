package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes limits request bodies. Imports of a full export are the
// largest payloads.
const maxBodyBytes = 10 << 20

// errorBody is the failure envelope for every route.
type errorBody struct {
	Error string `json:"error"`
}

// successBody acknowledges updates and deletes.
type successBody struct {
	Success bool `json:"success"`
}

// ParseJSON decodes the request body into dest. Unknown fields are ignored.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// RespondJSON writes data with the given status. The payload is marshaled
// before any header is written so an encoding failure still produces a
// clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// RespondError writes {"error": message}.
func RespondError(w http.ResponseWriter, status int, message string) {
	payload, _ := json.Marshal(errorBody{Error: message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func respondSuccess(w http.ResponseWriter) {
	RespondJSON(w, http.StatusOK, successBody{Success: true})
}
