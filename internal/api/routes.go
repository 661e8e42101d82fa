package api

import (
	"net/http"
	"net/http/pprof"

	"audarb/internal/api/middleware"
	"audarb/internal/dispatcher"
	"audarb/internal/sink"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies bundles everything SetupRoutes needs to wire the
// dashboard's HTTP surface.
type Dependencies struct {
	Dispatcher  *dispatcher.Dispatcher
	Broadcaster *sink.Broadcaster
	Log         *zap.Logger

	// BasicAuthUser/BasicAuthPasswordHash protect /debug/pprof when set.
	// An empty BasicAuthPasswordHash disables the check.
	BasicAuthUser         string
	BasicAuthPasswordHash string
}

// SetupRoutes builds the dashboard's HTTP router:
//
//	GET  /health                    - liveness + cache size
//	GET  /opportunities/latest      - most recent direct opportunities
//	GET  /opportunities/triangular  - most recent triangular opportunities
//	GET  /stream                    - WebSocket opportunity feed
//	GET  /metrics                   - Prometheus exposition
//	/debug/pprof/*                  - profiling, behind optional basic auth
//
// Global middleware order: Recovery, Logging, CORS — matching the order a
// request should be protected (never crash, always logged, then CORS'd)
// before reaching a handler.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))
	router.Use(middleware.CORS)

	if deps.Dispatcher != nil {
		router.HandleFunc("/health", healthHandler(deps.Dispatcher)).Methods(http.MethodGet)
		router.HandleFunc("/opportunities/latest", latestDirectHandler(deps.Dispatcher)).Methods(http.MethodGet)
		router.HandleFunc("/opportunities/triangular", latestTriHandler(deps.Dispatcher)).Methods(http.MethodGet)
	}

	if deps.Broadcaster != nil {
		router.HandleFunc("/stream", deps.Broadcaster.ServeWS).Methods(http.MethodGet)
	}

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(middleware.BasicAuth(deps.BasicAuthUser, deps.BasicAuthPasswordHash))
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.HandleFunc("/heap", pprof.Handler("heap").ServeHTTP)
	debug.HandleFunc("/goroutine", pprof.Handler("goroutine").ServeHTTP)
	debug.HandleFunc("/allocs", pprof.Handler("allocs").ServeHTTP)

	return router
}
