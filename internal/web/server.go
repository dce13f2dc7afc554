package web

import (
    "bytes"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/jaminalder/tictactoe-ai/internal/app"
    "github.com/rs/zerolog/log"
)

type Option func(h *handlers)

// WithHeartbeat sets the SSE keep-alive interval.
func WithHeartbeat(d time.Duration) Option {
    return func(h *handlers) {
        if d > 0 {
            h.heartbeat = d
        }
    }
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board renderer used for SSE broadcasts.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(requestLogger)
    r.Use(middleware.Recoverer)

    h := &handlers{svc: s, tpl: loadTemplates(), heartbeat: defaultHeartbeat}
    for _, opt := range opts {
        opt(h)
    }
    s.SetRenderer(func(gs app.GameState) []byte {
        // SSE data lines must not contain newlines
        return bytes.ReplaceAll(h.renderBoard(gs, ""), []byte("\n"), nil)
    })
    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Get("/stats", h.stats)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/join", h.join)
        r.Post("/play", h.play)
        r.Post("/mode", h.mode)
        r.Post("/level", h.level)
        r.Post("/engine", h.engine)
        r.Post("/reset", h.reset)
        r.Get("/events", h.events)
    })
    return r
}

func requestLogger(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        start := time.Now()
        defer func() {
            log.Debug().
                Str("request_id", middleware.GetReqID(r.Context())).
                Str("method", r.Method).
                Str("path", r.URL.Path).
                Int("status", ww.Status()).
                Dur("duration", time.Since(start)).
                Msg("http request")
        }()
        next.ServeHTTP(ww, r)
    })
}
