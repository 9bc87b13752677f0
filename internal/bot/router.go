package bot

import (
	"log/slog"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/cocktail-bot/internal/bot/handlers"
)

// Router funnels every text and callback update through one middleware chain.
type Router struct {
	mu          sync.RWMutex
	handler     handlers.Handler
	middlewares []handlers.Middleware
	log         *slog.Logger
}

// NewRouter builds a Router that hands updates to handler.
func NewRouter(handler handlers.Handler, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		handler:     handler,
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// Use appends a middleware to the chain. The first one added runs outermost.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Route directs the incoming update through the middleware chain.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if r.handler == nil {
		r.log.Warn("router has no handler, dropping update")
		return nil
	}

	return handlers.Chain(r.handler, r.middlewaresSnapshot()...)(c)
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
