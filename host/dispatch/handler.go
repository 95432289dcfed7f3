package dispatch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/museumsvictoria/nodel-sub003/host/registry"
	"github.com/museumsvictoria/nodel-sub003/internal/ctxlog"
)

const maxBodySize = 1 << 20

// NodeResolver maps the node segment of a request path onto a hosted node
// name.
type NodeResolver func(segment string) (string, bool)

// Handler routes REST requests to registered members.
type Handler struct {
	registry *registry.Registry
	resolve  NodeResolver
	logger   *slog.Logger
	mux      *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the base logger; each request gets a child logger in its
// context.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithNodeResolver overrides how path segments map to nodes. By default the
// registry resolves exact then reduced node names.
func WithNodeResolver(fn NodeResolver) Option {
	return func(h *Handler) {
		if fn != nil {
			h.resolve = fn
		}
	}
}

// New creates a Handler reading from reg.
func New(reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{
		registry: reg,
		logger:   slog.Default(),
	}
	h.resolve = reg.ResolveNode
	for _, opt := range opts {
		opt(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /REST/nodes", h.listNodes)
	mux.HandleFunc("GET /nodes/{node}/REST/actions", h.listActions)
	mux.HandleFunc("GET /nodes/{node}/REST/actions/{action}", h.describeAction)
	mux.HandleFunc("GET /nodes/{node}/REST/actions/{action}/schema", h.actionSchema)
	mux.HandleFunc("GET /nodes/{node}/REST/actions/{action}/call", h.callAction)
	mux.HandleFunc("POST /nodes/{node}/REST/actions/{action}/call", h.callAction)
	mux.HandleFunc("GET /nodes/{node}/REST/events", h.listEvents)
	mux.HandleFunc("GET /nodes/{node}/REST/events/{event}", h.describeEvent)
	mux.HandleFunc("GET /nodes/{node}/REST/events/{event}/schema", h.eventSchema)
	mux.HandleFunc("POST /nodes/{node}/REST/events/{event}/emit", h.emitEvent)
	h.mux = mux
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	logger := h.logger.With("method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.mux.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	logger.Debug("served", "elapsed", time.Since(started))
}
