package web

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cjeanneret/BoothGo/internal/booth"
	"github.com/cjeanneret/BoothGo/internal/debug"
	"github.com/cjeanneret/BoothGo/internal/gallery"
	"github.com/cjeanneret/BoothGo/internal/imaging"
	"github.com/cjeanneret/BoothGo/internal/logic/session"
	"github.com/cjeanneret/BoothGo/internal/photo"
	"github.com/cjeanneret/BoothGo/internal/share"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// Dispatcher applies booth actions. *booth.Runner implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, a booth.Action) (booth.Snapshot, error)
	State(ctx context.Context) (booth.Snapshot, error)
	SessionPhotos(ctx context.Context) ([]photo.Photo, error)
}

// FrameSource serves the latest JPEG of the live feed.
type FrameSource interface {
	Latest() ([]byte, uint64, bool)
}

// KioskConfig is what the kiosk page needs to build its screens.
type KioskConfig struct {
	Frames            []string `json:"frames"`
	Filters           []string `json:"filters"`
	DefaultPhotoCount int      `json:"default_photo_count"`
	MaxPhotoCount     int      `json:"max_photo_count"`
	FlashMs           int      `json:"flash_ms"`
	OperatorKey       string   `json:"operator_key"`
	Fullscreen        bool     `json:"fullscreen"`
	Framerate         int      `json:"framerate"`

	ShareCaption string `json:"-"`
	SharePageURL string `json:"-"`
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	Broadcaster *StatusBroadcaster
	Booth       Dispatcher
	Gallery     *gallery.Store
	Frames      *imaging.FrameSet
	Camera      FrameSource
	Kiosk       KioskConfig
	staticFS    fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If d is nil, every action returns 503 Service Unavailable.
func NewHandlers(broadcaster *StatusBroadcaster, d Dispatcher, g *gallery.Store, frames *imaging.FrameSet, cam FrameSource, kiosk KioskConfig, staticFS fs.FS) *Handlers {
	return &Handlers{
		Broadcaster: broadcaster,
		Booth:       d,
		Gallery:     g,
		Frames:      frames,
		Camera:      cam,
		Kiosk:       kiosk,
		staticFS:    staticFS,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps booth errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, booth.ErrInvalidAction):
		return http.StatusConflict
	case errors.Is(err, booth.ErrUnknownAction),
		errors.Is(err, session.ErrInvalidPhotoCount),
		errors.Is(err, session.ErrCaptureStarted),
		errors.Is(err, imaging.ErrUnknownFilter),
		errors.Is(err, imaging.ErrUnknownFrame):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody reads an optional JSON body into v. Empty bodies are accepted.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// ServeIndex serves the kiosk page (root path only).
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleConfig returns the kiosk settings as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Kiosk)
}

// HandleState returns the current booth snapshot.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	if h.Booth == nil {
		http.Error(w, "booth not configured", http.StatusServiceUnavailable)
		return
	}
	snap, err := h.Booth.State(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// actionRequest is the union of every action body.
type actionRequest struct {
	PhotoCount int    `json:"photo_count"`
	Filter     string `json:"filter"`
	Frame      string `json:"frame"`
	Key        string `json:"key"`
}

// Action returns a handler dispatching kind with the request body fields.
func (h *Handlers) Action(kind booth.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if err := decodeBody(w, r, &req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		if h.Booth == nil {
			http.Error(w, "booth not configured", http.StatusServiceUnavailable)
			return
		}
		snap, err := h.Booth.Dispatch(r.Context(), booth.Action{
			Kind:       kind,
			PhotoCount: req.PhotoCount,
			Filter:     req.Filter,
			Frame:      req.Frame,
			Key:        req.Key,
		})
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// HandleShare returns the share link. Only the caption and page address are
// sent; photos stay on the booth.
func (h *Handlers) HandleShare(w http.ResponseWriter, r *http.Request) {
	page := h.Kiosk.SharePageURL
	if page == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		page = scheme + "://" + r.Host + "/"
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": share.WhatsAppURL(h.Kiosk.ShareCaption, page)})
}

func (h *Handlers) sessionPhotos(w http.ResponseWriter, r *http.Request) ([]photo.Photo, bool) {
	if h.Booth == nil {
		http.Error(w, "booth not configured", http.StatusServiceUnavailable)
		return nil, false
	}
	photos, err := h.Booth.SessionPhotos(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return nil, false
	}
	return photos, true
}

func writePNG(w http.ResponseWriter, name string, data []byte, attachment bool) {
	w.Header().Set("Content-Type", photo.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	}
	w.Write(data)
}

// HandleSessionPhoto serves photo n (1-based) of the session as a download.
func (h *Handlers) HandleSessionPhoto(w http.ResponseWriter, r *http.Request) {
	photos, ok := h.sessionPhotos(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 || n > len(photos) {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	writePNG(w, photo.Filename(n), photos[n-1].PNG, true)
}

// HandleSessionZip bundles every session photo into one archive.
func (h *Handlers) HandleSessionZip(w http.ResponseWriter, r *http.Request) {
	photos, ok := h.sessionPhotos(w, r)
	if !ok {
		return
	}
	if len(photos) == 0 {
		http.Error(w, "no photos in session", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="photos.zip"`)

	zw := zip.NewWriter(w)
	for i, p := range photos {
		// PNG is already compressed.
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     photo.Filename(i + 1),
			Method:   zip.Store,
			Modified: p.TakenAt,
		})
		if err == nil {
			_, err = f.Write(p.PNG)
		}
		if err != nil {
			debug.Error(fmt.Errorf("web: zip: %w", err))
			return
		}
	}
	if err := zw.Close(); err != nil {
		debug.Error(fmt.Errorf("web: zip: %w", err))
	}
}

// HandleSessionStrip composes the session photos into one printable strip.
func (h *Handlers) HandleSessionStrip(w http.ResponseWriter, r *http.Request) {
	photos, ok := h.sessionPhotos(w, r)
	if !ok {
		return
	}
	if len(photos) == 0 {
		http.Error(w, "no photos in session", http.StatusNotFound)
		return
	}
	pngs := make([][]byte, len(photos))
	for i, p := range photos {
		pngs[i] = p.PNG
	}
	columns := 1
	if r.URL.Query().Get("layout") == "grid" {
		columns = 2
	}
	data, err := imaging.ComposeStrip(pngs, imaging.StripOptions{Columns: columns})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writePNG(w, "strip.png", data, r.URL.Query().Has("download"))
}

// HandleGallery returns the gallery display list.
func (h *Handlers) HandleGallery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Gallery.Render())
}

// HandleGalleryPhoto serves one gallery photo (1-based).
func (h *Handlers) HandleGalleryPhoto(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	p, ok := h.Gallery.Photo(n)
	if !ok {
		http.Error(w, "photo not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writePNG(w, photo.Filename(n), p.PNG, false)
}

// HandleFrame serves a frame overlay asset by name.
func (h *Handlers) HandleFrame(w http.ResponseWriter, r *http.Request) {
	path, err := h.Frames.Path(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "frame not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

const mjpegBoundary = "boothframe"

// HandleCameraStream streams the live feed as multipart MJPEG. Frames are
// sent when the camera has a new one; nothing is sent while it is closed.
func (h *Handlers) HandleCameraStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	if h.Camera == nil {
		http.Error(w, "camera not configured", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	fps := h.Kiosk.Framerate
	if fps <= 0 {
		fps = 15
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
		jpg, seq, ok := h.Camera.Latest()
		if !ok || seq == last {
			continue
		}
		last = seq
		if _, err := fmt.Fprintf(w, "--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", mjpegBoundary, len(jpg)); err != nil {
			return
		}
		if _, err := w.Write(jpg); err != nil {
			return
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return
		}
		flusher.Flush()
	}
}

// HandleStatusStream handles GET /status/stream for SSE.
func (h *Handlers) HandleStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	ch, unsub := h.Broadcaster.Subscribe()
	defer unsub()

	w.Write([]byte(": connected\n\n"))
	flusher.Flush()

	// New clients get the current state right away.
	if h.Booth != nil {
		if snap, err := h.Booth.State(r.Context()); err == nil {
			if data, err := json.Marshal(StatusEvent{Time: time.Now().Format(time.RFC3339), Type: booth.EventState, Data: snap}); err == nil {
				w.Write([]byte("data: " + string(data) + "\n\n"))
				flusher.Flush()
			}
		}
	}

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
