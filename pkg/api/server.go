// Package api exposes the query facade over HTTP: a read-only JSON API, a
// GraphQL endpoint, health and Prometheus metrics. Nothing here can mutate
// the loaded model; mutating verbs are rejected outright.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/p4lens/p4lens/pkg/engine"
	"github.com/p4lens/p4lens/pkg/logging"
	"github.com/p4lens/p4lens/pkg/model"
	"github.com/p4lens/p4lens/pkg/topology"
)

// Server is the HTTP API server over one loaded engine.
type Server struct {
	engine         *engine.Engine
	log            logging.Logger
	graphqlHandler *GraphQLHandler
	startTime      time.Time
	version        string
	port           int
}

// NewServer creates a new API server over a loaded engine.
func NewServer(e *engine.Engine, port int, log logging.Logger) *Server {
	if log == nil {
		log = logging.NewNopLogger()
	}

	s := &Server{
		engine:    e,
		log:       log.With(logging.Component("api")),
		startTime: time.Now(),
		version:   "1.0.0",
		port:      port,
	}

	schema, err := GenerateSchema(e)
	if err != nil {
		s.log.Warn("graphql schema generation failed", logging.Error(err))
	} else {
		s.graphqlHandler = NewGraphQLHandler(schema)
	}
	return s
}

// Handler builds the full HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.engine.Metrics().GetPrometheusRegistry(),
		promhttp.HandlerOpts{},
	))

	// GraphQL endpoint
	mux.HandleFunc("/graphql", s.handleGraphQL)

	// Program model endpoints
	mux.HandleFunc("/api/tables", s.handleTables)
	mux.HandleFunc("/api/tables/", s.handleTable) // /api/tables/{name}
	mux.HandleFunc("/api/actions/", s.handleAction)
	mux.HandleFunc("/api/jump-dict", s.handleJumpDict)
	mux.HandleFunc("/api/ranked-tables", s.handleRankedTables)
	mux.HandleFunc("/api/constraints", s.handleConstraints)
	mux.HandleFunc("/api/stateful", s.handleStateful)

	// Parser and header endpoints
	mux.HandleFunc("/api/headers", s.handleHeaders)
	mux.HandleFunc("/api/header-bits", s.handleHeaderBits)
	mux.HandleFunc("/api/parser/paths", s.handleParserPaths)
	mux.HandleFunc("/api/parser/states/", s.handleParserState)

	// Topology endpoints
	mux.HandleFunc("/api/hosts", s.handleHosts)
	mux.HandleFunc("/api/hosts/", s.handleHost) // /api/hosts/{id}[/zone]
	mux.HandleFunc("/api/links", s.handleLinks)
	mux.HandleFunc("/api/host-pair", s.handleHostPair)

	return s.panicRecoveryMiddleware(
		s.loggingMiddleware(
			s.metricsMiddleware(
				s.readOnlyMiddleware(
					s.corsMiddleware(mux)))))
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("api server starting",
		logging.String("addr", addr),
		logging.Program(s.engine.ProgramName()),
		logging.ContextID(s.engine.ID()),
	)

	go s.updateMetricsPeriodically()

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   s.version,
		Program:   s.engine.ProgramName(),
		ContextID: s.engine.ID(),
		Uptime:    time.Since(s.startTime).String(),
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	if s.graphqlHandler == nil {
		s.respondError(w, http.StatusServiceUnavailable, "GraphQL endpoint not available")
		return
	}
	s.graphqlHandler.ServeHTTP(w, r)
}

// Helper methods

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("response encoding failed", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// respondQueryError maps a facade error to its HTTP status: unknown names are
// 404, an unresolvable zone is 422, anything else is a 500.
func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound),
		errors.Is(err, model.ErrUnknownField),
		errors.Is(err, model.ErrUnknownState),
		errors.Is(err, topology.ErrHostNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, topology.ErrAmbiguousZone),
		errors.Is(err, topology.ErrTooFewHosts):
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
