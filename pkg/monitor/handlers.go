// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg"
	"github.com/telekom/icmptrace/pkg/api"
	"gopkg.in/yaml.v3"
)

const checkNameParam = "name"

// routes returns the endpoints served by the monitor
func (m *Monitor) routes() []api.Route {
	return []api.Route{
		{Path: api.ResultPath("{" + checkNameParam + "}"), Method: http.MethodGet, Handler: m.handleCheckResult},
		{Path: "/openapi", Method: http.MethodGet, Handler: m.handleOpenAPI},
		{
			Path:   "/metrics",
			Method: "*",
			Handler: promhttp.HandlerFor(
				m.telemetry.GetRegistry(),
				promhttp.HandlerOpts{Registry: m.telemetry.GetRegistry()},
			).ServeHTTP,
		},
	}
}

// handleCheckResult writes the latest result of the requested check as JSON
func (m *Monitor) handleCheckResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	name := chi.URLParam(r, checkNameParam)

	res, ok := m.db.Get(name)
	if !ok {
		log.DebugContext(ctx, "No result for check", "check", name)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.ErrorContext(ctx, "Failed to encode check result", "check", name, "error", err)
	}
}

// handleOpenAPI writes the OpenAPI document of the running checks as YAML
func (m *Monitor) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	doc, err := api.OpenAPI(ctx, pkg.Version, m.controller.Checks())
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	b, err := yaml.Marshal(&doc)
	if err != nil {
		log.ErrorContext(ctx, "Failed to marshal openapi document", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(b); err != nil {
		log.ErrorContext(ctx, "Failed to write openapi document", "error", err)
	}
}
