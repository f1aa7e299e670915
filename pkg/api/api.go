// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/icmptrace/internal/logger"
)

var _ API = (*api)(nil)

// API serves the check results over HTTP.
type API interface {
	// Run starts the api server and blocks until it is shut down
	// or the context is canceled.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the api server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds the given routes to the router.
	RegisterRoutes(ctx context.Context, routes ...Route) error
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

// Route is a single endpoint served by the api.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// New creates a new api server listening on the configured address.
func New(cfg Config) API {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	return &api{
		server: &http.Server{
			Addr:              cfg.ListeningAddress,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the registered routes until the server is shut down
// or the context is canceled.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	cErr := make(chan error, 1)

	go func() {
		var err error
		log.InfoContext(ctx, "Serving api", "addr", a.server.Addr, "tls", a.tls.Enabled)
		if a.tls.Enabled {
			err = a.server.ListenAndServeTLS(a.tls.CertPath, a.tls.KeyPath)
		} else {
			err = a.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Failed to serve api", "error", err)
			cErr <- fmt.Errorf("failed to serve api: %w", err)
			return
		}
		cErr <- nil
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrApiContext, ctx.Err())
	case err := <-cErr:
		return err
	}
}

// Shutdown gracefully stops the api server.
func (a *api) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down api server: %w", err)
	}
	return nil
}

// RegisterRoutes adds the given routes to the router.
// Every request handled by these routes carries the logger of ctx.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	r := a.router.With(logger.Middleware(ctx))
	for _, route := range routes {
		if route.Path == "" || route.Handler == nil {
			return ErrInvalidRoute{Path: route.Path, Method: route.Method}
		}
		switch route.Method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead:
			r.Method(route.Method, route.Path, route.Handler)
		case "*":
			r.Handle(route.Path, route.Handler)
		default:
			return ErrInvalidRoute{Path: route.Path, Method: route.Method}
		}
	}
	return nil
}
