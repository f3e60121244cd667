package web

import (
	"context"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cjeanneret/BoothGo/internal/booth"
	"github.com/cjeanneret/BoothGo/internal/debug"
)

// Server wraps the HTTP server and handlers.
type Server struct {
	addr     string
	handlers *Handlers
}

// NewServer creates a server for addr. h.staticFS is filled from the
// embedded kiosk page when unset.
func NewServer(addr string, h *Handlers) (*Server, error) {
	if h.staticFS == nil {
		subFS, err := fs.Sub(staticFiles, "static")
		if err != nil {
			return nil, err
		}
		h.staticFS = subFS
	}
	return &Server{addr: addr, handlers: h}, nil
}

// Router returns an http.Handler with all routes registered.
func (s *Server) Router() http.Handler {
	h := s.handlers
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", h.ServeIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(h.staticFS))))
	r.Get("/frames/{name}", h.HandleFrame)
	r.Get("/status/stream", h.HandleStatusStream)
	r.Get("/camera/stream", h.HandleCameraStream)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", h.HandleConfig)
		r.Get("/state", h.HandleState)

		r.Post("/tap", h.Action(booth.ActTap))
		r.Post("/session", h.Action(booth.ActStartSession))
		r.Post("/frame", h.Action(booth.ActSelectFrame))
		r.Post("/mirror", h.Action(booth.ActToggleMirror))
		r.Post("/photo", h.Action(booth.ActStartPhoto))
		r.Post("/retake", h.Action(booth.ActRetake))
		r.Post("/download", h.Action(booth.ActDownload))
		r.Post("/new-session", h.Action(booth.ActNewSession))
		r.Post("/back", h.Action(booth.ActBack))
		r.Post("/key", h.Action(booth.ActKey))
		r.Post("/share", h.HandleShare)

		r.Get("/session/photos.zip", h.HandleSessionZip)
		r.Get("/session/photos/{n}", h.HandleSessionPhoto)
		r.Get("/session/strip.png", h.HandleSessionStrip)

		r.Get("/gallery", h.HandleGallery)
		r.Post("/gallery/view", h.Action(booth.ActViewGallery))
		r.Get("/gallery/{n}", h.HandleGalleryPhoto)
	})
	return r
}

// requestLogger logs each request at verbose level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if debug.IsEnabled(debug.LevelVerbose) {
			debug.Logger().Debug().
				Str("tag", "http").
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Str("req_id", middleware.GetReqID(r.Context())).
				Msg("request")
		}
	})
}

// Run listens on the server address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Request contexts derive from ctx so the long-lived streams end
// with it.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:     s.Router(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		debug.Info("web server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
