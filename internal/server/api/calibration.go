package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/yuletide/internal/app"
	"github.com/ayusman/yuletide/internal/detector"
	"github.com/ayusman/yuletide/internal/gesture"
	"github.com/ayusman/yuletide/internal/store"
)

// CalibrationHandler manages gesture thresholds and the labelled samples
// they are calibrated from.
type CalibrationHandler struct {
	scene Scene
	store *store.Store
}

// NewCalibrationHandler creates a CalibrationHandler.
func NewCalibrationHandler(scene Scene, s *store.Store) *CalibrationHandler {
	return &CalibrationHandler{scene: scene, store: s}
}

// Routes mounts /thresholds and /calibration.
func (h *CalibrationHandler) Routes(r chi.Router) {
	r.Get("/thresholds", h.getThresholds)
	r.Put("/thresholds", h.putThresholds)

	r.Route("/calibration", func(r chi.Router) {
		r.Post("/", h.calibrate)
		r.Get("/samples", h.listSamples)
		r.Post("/samples", h.createSample)
		r.Delete("/samples", h.deleteSamples)
		r.Delete("/samples/{id}", h.deleteSample)
	})
}

func (h *CalibrationHandler) getThresholds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scene.Thresholds())
}

// putThresholds handles PUT /thresholds. The body replaces all three values.
func (h *CalibrationHandler) putThresholds(w http.ResponseWriter, r *http.Request) {
	var t gesture.Thresholds
	if !decodeJSON(w, r, &t) {
		return
	}
	if err := h.scene.SetThresholds(t); err != nil {
		if errors.Is(err, gesture.ErrInvalidThresholds) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save thresholds")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type createSampleRequest struct {
	Label     string             `json:"label"`
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
}

type listSamplesResponse struct {
	Samples []*store.Sample `json:"samples"`
}

// createSample handles POST /calibration/samples. Without landmarks in the
// body the hand currently in view is captured.
func (h *CalibrationHandler) createSample(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	label, err := gesture.Parse(req.Label)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid label")
		return
	}

	points := req.Landmarks
	if len(points) == 0 {
		points, err = h.scene.LatestLandmarks()
		if errors.Is(err, app.ErrNoHand) {
			writeError(w, http.StatusConflict, "No hand in view")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to capture landmarks")
			return
		}
	}
	if len(points) < detector.NumLandmarks {
		writeError(w, http.StatusBadRequest, "Incomplete landmarks")
		return
	}

	data, err := json.Marshal(points)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode landmarks")
		return
	}

	s := &store.Sample{Label: label.String(), Data: data}
	if err := h.store.Samples().Create([]*store.Sample{s}); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save sample")
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *CalibrationHandler) listSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}
	if samples == nil {
		samples = []*store.Sample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples})
}

func (h *CalibrationHandler) deleteSamples(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.Samples().DeleteAll()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

func (h *CalibrationHandler) deleteSample(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sample id")
		return
	}
	if err := h.store.Samples().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sample not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// calibrate handles POST /calibration, deriving thresholds from the stored
// samples and applying them.
func (h *CalibrationHandler) calibrate(w http.ResponseWriter, r *http.Request) {
	t, err := h.scene.Calibrate()
	switch {
	case errors.Is(err, gesture.ErrNoSamples),
		errors.Is(err, gesture.ErrMissingLabel),
		errors.Is(err, gesture.ErrOverlap):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Calibration failed")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
