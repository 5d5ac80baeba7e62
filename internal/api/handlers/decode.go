package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cartwise/recommender/internal/api/response"
)

// decodeJSON decodes the request body into dst. On failure it writes the
// error response and returns false; callers just return. A body over the
// middleware's size limit surfaces here as 413 rather than a generic 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondError(w, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large", "request body exceeds maximum allowed size")
			return false
		}

		response.RespondBadRequest(w, "Invalid request body")
		return false
	}

	return true
}
