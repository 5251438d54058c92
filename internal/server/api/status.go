package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/yuletide/internal/journal"
)

// StatusHandler serves the scene summary and the lifecycle journal.
type StatusHandler struct {
	scene Scene
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(scene Scene) *StatusHandler {
	return &StatusHandler{scene: scene}
}

// Routes mounts GET /status and GET /journal.
func (h *StatusHandler) Routes(r chi.Router) {
	r.Get("/status", h.status)
	r.Get("/journal", h.journal)
}

func (h *StatusHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scene.Status())
}

type journalResponse struct {
	Loading  bool            `json:"loading"`
	Progress int             `json:"progress"`
	Entries  []journal.Entry `json:"entries"`
}

// journal handles GET /journal?since=N, returning entries after sequence N.
func (h *StatusHandler) journal(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since")
			return
		}
		since = n
	}

	j := h.scene.Journal()
	entries := j.Entries(since)
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, journalResponse{
		Loading:  j.Loading(),
		Progress: j.Progress(),
		Entries:  entries,
	})
}
