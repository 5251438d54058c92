package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/yuletide/internal/app"
	"github.com/ayusman/yuletide/internal/store"
)

// MaxPhotoSize caps uploaded image data.
const MaxPhotoSize = 10 << 20

// PhotosHandler handles photo uploads and hover updates.
type PhotosHandler struct {
	scene Scene
	store *store.Store
}

// NewPhotosHandler creates a PhotosHandler.
func NewPhotosHandler(scene Scene, s *store.Store) *PhotosHandler {
	return &PhotosHandler{scene: scene, store: s}
}

// Routes mounts the photo endpoints under /photos.
func (h *PhotosHandler) Routes(r chi.Router) {
	r.Route("/photos", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}/image", h.image)
		r.Post("/{id}/hover", h.hover)
	})
}

type createPhotoRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type listPhotosResponse struct {
	Photos []*store.Photo `json:"photos"`
}

type hoverRequest struct {
	Hovered bool `json:"hovered"`
}

// list handles GET /photos in insertion order.
func (h *PhotosHandler) list(w http.ResponseWriter, r *http.Request) {
	photos, err := h.store.Photos().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list photos")
		return
	}
	if photos == nil {
		photos = []*store.Photo{}
	}
	writeJSON(w, http.StatusOK, listPhotosResponse{Photos: photos})
}

// create handles POST /photos. A multipart body with a "file" part uploads
// image data; a JSON body registers a remote image by URL.
func (h *PhotosHandler) create(w http.ResponseWriter, r *http.Request) {
	var p *store.Photo
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var ok bool
		if p, ok = h.readUpload(w, r); !ok {
			return
		}
	} else {
		var req createPhotoRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "URL is required")
			return
		}
		p = &store.Photo{Name: req.Name, URL: req.URL}
	}

	if err := h.scene.AddPhoto(p); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add photo")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *PhotosHandler) readUpload(w http.ResponseWriter, r *http.Request) (*store.Photo, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxPhotoSize+maxBody)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxPhotoSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read file")
		return nil, false
	}
	if len(data) > MaxPhotoSize {
		writeError(w, http.StatusRequestEntityTooLarge, "Photo too large")
		return nil, false
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "File is not an image")
		return nil, false
	}

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	return &store.Photo{Name: name, ContentType: contentType, Data: data}, true
}

// image handles GET /photos/{id}/image. Uploaded photos are served from the
// store; remote photos redirect to their URL.
func (h *PhotosHandler) image(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Photos().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Photo not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get photo")
		return
	}

	if len(p.Data) == 0 {
		if p.URL == "" {
			writeError(w, http.StatusNotFound, "Photo has no image")
			return
		}
		http.Redirect(w, r, p.URL, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", p.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(p.Data)
}

// hover handles POST /photos/{id}/hover.
func (h *PhotosHandler) hover(w http.ResponseWriter, r *http.Request) {
	var req hoverRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.scene.SetHover(chi.URLParam(r, "id"), req.Hovered); err != nil {
		if errors.Is(err, app.ErrUnknownPhoto) {
			writeError(w, http.StatusNotFound, "Photo not in scene")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to set hover")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
