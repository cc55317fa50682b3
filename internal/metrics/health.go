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

package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// State is a single component's reported health.
type State int

const (
	Healthy State = iota
	Degraded
	Unhealthy
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	default:
		return "unhealthy"
	}
}

// ComponentCheck reports a single component's current State and, when not
// Healthy, a human-readable reason.
type ComponentCheck func() (State, string)

// Health aggregates per-component checks into an overall service health
// verdict, per spec §4.9: one degraded component is tolerated; any
// Unhealthy component, or more than one Degraded, makes the service
// Unhealthy overall.
type Health struct {
	checks map[string]ComponentCheck
}

// NewHealth builds a Health with the given named component checks
// (typically C1, C2, C3, C5, C10).
func NewHealth(checks map[string]ComponentCheck) *Health {
	return &Health{checks: checks}
}

// ComponentReport is one named component's health as of the last Evaluate.
type ComponentReport struct {
	Name   string `json:"name"`
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Report is the full service health snapshot.
type Report struct {
	Overall    string            `json:"overall"`
	Components []ComponentReport `json:"components"`
}

// Evaluate runs every registered check and aggregates the result.
func (h *Health) Evaluate() Report {
	degradedCount := 0
	unhealthy := false
	components := make([]ComponentReport, 0, len(h.checks))
	for name, check := range h.checks {
		state, reason := check()
		components = append(components, ComponentReport{Name: name, State: state.String(), Reason: reason})
		switch state {
		case Degraded:
			degradedCount++
		case Unhealthy:
			unhealthy = true
		}
	}
	overall := Healthy
	if unhealthy || degradedCount > 1 {
		overall = Unhealthy
	} else if degradedCount == 1 {
		overall = Degraded
	}
	return Report{Overall: overall.String(), Components: components}
}

// Ready reports whether the service should accept traffic: anything short
// of Unhealthy is considered ready, matching the "degrade, do not fail"
// principle of spec §7.
func (h *Health) Ready() bool {
	return h.Evaluate().Overall != Unhealthy.String()
}

// RegisterHandlers wires /healthz, /readyz, /metrics, and the detailed
// JSON health report onto mux, mirroring the teacher's shared health/metrics
// server shape.
func (h *Health) RegisterHandlers(mux *http.ServeMux, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if h.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
		}
	})

	mux.HandleFunc("/api/v1/health/detailed", func(w http.ResponseWriter, r *http.Request) {
		report := h.Evaluate()
		w.Header().Set("Content-Type", "application/json")
		if report.Overall == Unhealthy.String() {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.Error("failed to encode health report", zap.Error(err))
		}
	})
}
