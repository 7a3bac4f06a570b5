package mvc

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/ljpx/di"
	"github.com/ljpx/logging"
)

// Router holds an explicit registry of routes keyed by HTTP method and exact
// path.  The registry is populated once at startup and frozen by Build; once
// Build has been called, the Router is invalid and can no longer be used.
// Router is not thread-safe.
type Router struct {
	c      di.Container
	config *Config
	logger logging.Logger

	routes       map[string]map[string]Route
	hasBeenBuilt bool
}

// NewRouter creates a new router with the provided container, logger, and
// config.
func NewRouter(c di.Container, logger logging.Logger, config *Config) *Router {
	return &Router{
		c:      c,
		config: config,
		logger: logger,

		routes: make(map[string]map[string]Route),
	}
}

// Register adds a route to the registry.  Registering a second route for the
// same (method, path) pair silently overwrites the first - the table is a
// plain map and the last registration wins.
func (r *Router) Register(route Route) {
	r.assertNotAlreadyBuilt()

	method := strings.ToUpper(strings.TrimSpace(route.Method()))
	path := purifyPath(route.Path())

	byPath := r.routes[method]
	if byPath == nil {
		byPath = make(map[string]Route)
		r.routes[method] = byPath
	}

	byPath[path] = route
}

// Build freezes the registry into an http.Handler that can be passed to any
// server.  Requests that match no registered (method, path) pair - including
// requests for a registered path with the wrong method - receive the fixed
// not-found response without any route handler being invoked.  Query strings
// play no part in matching.
func (r *Router) Build() http.Handler {
	r.assertNotAlreadyBuilt()
	r.hasBeenBuilt = true

	mx := mux.NewRouter()

	for method, byPath := range r.routes {
		for path, route := range byPath {
			requestHandler := r.buildHandlerFromRequest(buildHandlerForRoute(route))
			mx.HandleFunc(path, requestHandler).Methods(method)
		}
	}

	notFoundHandler := r.buildHandlerFromRequest(func(ctx *Context) {
		ctx.NotFound()
	})

	mx.NotFoundHandler = notFoundHandler
	mx.MethodNotAllowedHandler = notFoundHandler

	return mx
}

func (r *Router) assertNotAlreadyBuilt() {
	if r.hasBeenBuilt {
		panic("a Router can not be used after Build has been called")
	}
}

func (r *Router) buildHandlerFromRequest(ctxHandler ContextHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		mrw := NewMeasuredResponseWriter(w)
		ctx := NewContext(mrw, req, r.c, r.config)

		defer func() {
			if p := recover(); p != nil && !mrw.HasWrittenHeaders() {
				err := fmt.Errorf("%v", p)
				ctx.InternalServerError(err)
			}

			logmsg := fmt.Sprintf("%v %v %v %v %v\n", mrw.StatusCode(), mrw.Duration(), ByteSizeToFriendlyString(mrw.Volume()), req.Method, req.URL.Path)
			r.logger.Printf(logmsg)
		}()

		ctxHandler(ctx)
	}
}

func buildHandlerForRoute(route Route) ContextHandlerFunc {
	return func(ctx *Context) {
		for _, mw := range route.Middleware() {
			shouldContinue := mw.Handle(ctx)
			if !shouldContinue {
				return
			}
		}

		route.Handle(ctx)
	}
}

func purifyPath(path string) string {
	return strings.TrimSpace(strings.ReplaceAll(path, "\\", "/"))
}
