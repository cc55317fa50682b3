// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"searchproxy/internal/metrics"
	"searchproxy/internal/proxy"
)

// version is the service's own release version, not Go's runtime version.
const version = "1.0.0"

// Server handles the HTTP requests for the search proxy. It is configured
// with a Service and optionally a Health aggregator for /readyz and the
// detailed health endpoint.
type Server struct {
	svc     *proxy.Service
	health  *metrics.Health
	logger  *zap.Logger
	started time.Time
}

// NewServer creates and configures a new API server.
func NewServer(svc *proxy.Service, health *metrics.Health, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, health: health, logger: logger, started: time.Now()}
}

// RegisterRoutes sets up the HTTP routes for the server on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	if s.health != nil {
		s.health.RegisterHandlers(mux, s.logger)
	}
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealthAlias)
	mux.HandleFunc("/api/v1/version", s.handleVersion)
	mux.HandleFunc("/api/v1/metrics/summary", s.handleMetricsSummary)

	mux.Handle("/api/v1/search", s.withAuth(http.HandlerFunc(s.handleSearch)))
	mux.Handle("/api/v1/batch-search", s.withAuth(http.HandlerFunc(s.handleBatchSearch)))
	mux.Handle("/api/v1/tokenize", s.withAuth(http.HandlerFunc(s.handleTokenize)))

	mux.Handle("/api/v1/admin/config/validate", s.withAuth(http.HandlerFunc(s.handleAdminConfigValidate)))
	mux.Handle("/api/v1/admin/config/hot-reload/trigger", s.withAuth(http.HandlerFunc(s.handleAdminHotReloadTrigger)))
	mux.Handle("/api/v1/admin/config/hot-reload/status", s.withAuth(http.HandlerFunc(s.handleAdminHotReloadStatus)))
	mux.Handle("/api/v1/admin/config/", s.withAuth(http.HandlerFunc(s.handleAdminConfigByType)))
	mux.Handle("/api/v1/admin/config", s.withAuth(http.HandlerFunc(s.handleAdminConfig)))
}

// ListenAndServe starts the HTTP server on the specified address, with
// timeouts sized for the index-engine round trips this proxy waits on.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info("search proxy API server listening", zap.String("addr", addr))
	return httpServer.ListenAndServe()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"service": "searchproxy", "version": version})
}

func (s *Server) handleHealthAlias(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return
	}
	report := s.health.Evaluate()
	status := http.StatusOK
	if report.Overall == metrics.Unhealthy.String() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, report)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, versionBody{Version: version, GoVersion: runtime.Version()})
}

func (s *Server) handleMetricsSummary(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.ConfigManager()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":    time.Since(s.started).Seconds(),
		"config_reloads":    cfg.ReloadCount(),
		"last_reload_at":    cfg.LastReloadAt(),
		"dictionary_size":   s.svc.DictionaryStore().Len(),
		"dictionary_version": s.svc.DictionaryStore().Version(),
	})
}

// withAuth enforces X-API-Key / Authorization: Bearer auth when the current
// Snapshot requires it, per spec §6's auth contract: 401 when the key is
// missing, 403 when it is present but wrong.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snap := s.svc.ConfigManager().Current()
		if !snap.APIKeyRequired {
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-Key")
		if key == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if key == "" {
			s.writeError(w, http.StatusUnauthorized, "unauthorized", "missing API key")
			return
		}
		if key != snap.IndexEngineAPIKey {
			s.writeError(w, http.StatusForbidden, "forbidden", "invalid API key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, errorBody{
		Error:     kind,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
