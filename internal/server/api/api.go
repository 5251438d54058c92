// Package api provides the HTTP API handlers for yuletide.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/yuletide/internal/app"
	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/journal"
	"github.com/ayusman/yuletide/internal/store"
)

// Scene is the part of the running application the API drives.
type Scene interface {
	Status() app.Status
	AddPhoto(p *store.Photo) error
	SetHover(id string, hovered bool) error
	Thresholds() gesture.Thresholds
	SetThresholds(t gesture.Thresholds) error
	LatestLandmarks() ([]detector.Point3D, error)
	Calibrate() (gesture.Thresholds, error)
	Journal() *journal.Journal
}

var _ Scene = (*app.App)(nil)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decodeJSON reads the request body into v, capped at maxBody bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

const maxBody = 1 << 20
