// Package server exposes an agent configuration over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-http-utils/etag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sardine-ai/ctmagent-config/manager"
	"github.com/sardine-ai/ctmagent-config/model"
	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// maxBodySize bounds a desired-state document.
const maxBodySize = 1 << 20

type Server struct {
	Manager  *manager.Manager
	AuthKey  string
	registry *prometheus.Registry
	metrics  *metrics
	applyMu  sync.Mutex
}

func NewServer(mgr *manager.Manager, authKey string) *Server {
	registry := prometheus.NewRegistry()
	return &Server{
		Manager:  mgr,
		AuthKey:  authKey,
		registry: registry,
		metrics:  newMetrics(registry),
	}
}

func (s *Server) Start(addr string) error {
	logrus.WithField("addr", addr).Info("Starting server")
	return http.ListenAndServe(addr, s.CreateHandlers())
}

// CreateHandlers builds the routes. /health and /metrics are served without
// authentication.
func (s *Server) CreateHandlers() http.Handler {
	protected := http.NewServeMux()
	protected.Handle("GET /config", etag.Handler(s.instrument("config", s.readConfig), false))
	protected.Handle("POST /config", s.instrument("apply", s.applyConfig))
	protected.Handle("PUT /config", s.instrument("apply", s.applyConfig))
	protected.Handle("GET /schema", etag.Handler(s.instrument("schema", s.jsonSchema), false))

	var handler http.Handler = protected
	if s.AuthKey != "" {
		handler = Auth(handler, s.AuthKey)
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	mux.Handle("GET /health", s.instrument("health", s.health))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Auth is a middleware that checks if the request is authenticated.
// If not, it returns a 401 Unauthorized response.
func Auth(next http.Handler, authKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if key != authKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		h(rec, r)
		s.metrics.requests.WithLabelValues(name, strconv.Itoa(rec.code)).Inc()
	})
}

func (s *Server) readConfig(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Manager.Read()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	write(w, r.URL.Query().Get("format"), snapshot)
}

// applyConfig accepts a desired-state document in YAML or JSON.
func (s *Server) applyConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var desired model.DesiredState
	if err := yaml.Unmarshal(body, &desired); err != nil {
		s.metrics.applies.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if _, err := model.ParseState(string(desired.State)); err != nil {
		s.metrics.applies.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var opts []manager.Option
	if check, _ := strconv.ParseBool(r.URL.Query().Get("check")); check {
		opts = append(opts, manager.WithCheckMode())
	}

	s.applyMu.Lock()
	result, err := s.Manager.Apply(desired, opts...)
	s.applyMu.Unlock()

	var verr *schema.ValidationError
	var rerr *manager.ReadError
	var aerr *manager.ApplyError
	// A ReadError wraps the ValidationError of an undecodable stored value.
	switch {
	case errors.As(err, &rerr):
		s.metrics.applies.WithLabelValues("read_error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":            err.Error(),
			"key":              rerr.Key,
			"applied":          result.ChangedKeys,
			"restart_required": result.RestartRequired,
		})
		return
	case errors.As(err, &aerr):
		s.metrics.applies.WithLabelValues("apply_error").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   err.Error(),
			"key":     aerr.Key,
			"applied": aerr.Applied,
		})
		return
	case errors.As(err, &verr):
		s.metrics.applies.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		s.metrics.applies.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	switch {
	case result.CheckMode:
		s.metrics.applies.WithLabelValues("check").Inc()
	case result.Changed:
		s.metrics.applies.WithLabelValues("changed").Inc()
		for _, k := range result.ChangedKeys {
			s.metrics.changedKeys.WithLabelValues(k).Inc()
		}
		if len(result.RestartRequired) > 0 {
			s.metrics.restarts.Inc()
		}
	default:
		s.metrics.applies.WithLabelValues("unchanged").Inc()
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) jsonSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Manager.Schema.JSONSchema())
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.Manager.Read(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	_, err := w.Write([]byte("ok"))
	if err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func write(w http.ResponseWriter, format string, v interface{}) {
	if format == "json" {
		writeJSON(w, http.StatusOK, v)
		return
	}
	response, err := yaml.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	_, err = w.Write(response)
	if err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	response, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(response)
	if err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func writeError(w http.ResponseWriter, code int, err error) {
	logrus.WithError(err).WithField("code", code).Debug("request failed")
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
