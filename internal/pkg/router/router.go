package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/devlink/internal/pkg/config"
	"github.com/shandysiswandi/devlink/internal/pkg/instrument"
	"github.com/shandysiswandi/devlink/internal/pkg/uid"
)

// Handler is the application-style handler used by this router.
//
// It returns a response payload (that will be JSON encoded) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	// Config provides runtime configuration values.
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// Instrument provides tracing and metrics helpers.
	Instrument instrument.Instrumentation
}

// Router is an http.Handler that wraps httprouter and a middleware chain.
type Router struct {
	hr         *httprouter.Router
	mws        []Middleware
	retryAfter int
}

// NewRouter builds the application router with the recover, correlation id
// and observability middleware applied to every route.
func NewRouter(cfg Config) *Router {
	hr := &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "endpoint not found"}, http.StatusNotFound)
		}),
		MethodNotAllowed: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, errorResponse{Message: "method not allowed"}, http.StatusMethodNotAllowed)
		}),
	}

	retryAfter := defaultRetryAfter
	if cfg.Config != nil {
		if v := cfg.Config.GetInt("app.server.retry_after_seconds"); v > 0 {
			retryAfter = v
		}
	}

	ro := &Router{
		hr:         hr,
		retryAfter: retryAfter,
		mws: []Middleware{
			middlewareRecoverer,
			middlewareCorrelationID(cfg.UUID),
			middlewareObservability(cfg.Config, cfg.Instrument),
		},
	}

	ro.GET("/", func(*Request) (any, error) {
		return map[string]string{"service": "devlink", "api": "/api/v1/verification"}, nil
	})

	return ro
}

// Handle registers h for method and path. Route middleware runs after the
// router-wide chain.
func (r *Router) Handle(method, path string, h Handler, mws ...Middleware) {
	r.hr.Handler(method, path, Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			if setter, ok := w.(errorSetter); ok {
				setter.SetError(err)
			}
			encodeError(w, err, r.retryAfter)
			return
		}
		encodeSuccess(w, resp)
	}), r.chain(mws)...))
}

// GET registers a GET endpoint using the application Handler signature.
func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodGet, path, h, mws...)
}

// GETRaw registers a GET endpoint that writes directly to the response writer,
// used for event streams.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.hr.Handler(http.MethodGet, path, Chain(h, r.chain(mws)...))
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodPost, path, h, mws...)
}

func (r *Router) PUT(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodPut, path, h, mws...)
}

func (r *Router) DELETE(path string, h Handler, mws ...Middleware) {
	r.Handle(http.MethodDelete, path, h, mws...)
}

func (r *Router) chain(extra []Middleware) []Middleware {
	out := make([]Middleware, 0, len(r.mws)+len(extra))
	out = append(out, r.mws...)
	return append(out, extra...)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
