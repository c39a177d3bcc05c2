package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/davidgut1982/mcp-diagnostics/internal/api"
	"github.com/davidgut1982/mcp-diagnostics/internal/cmd"
	"github.com/davidgut1982/mcp-diagnostics/internal/contracts"
	"github.com/davidgut1982/mcp-diagnostics/internal/domain"
	"github.com/davidgut1982/mcp-diagnostics/internal/errors"
)

// APIServer manages the HTTP API for the daemon.
// NewAPIServer should be used to create instances of APIServer.
type APIServer struct {
	// Logger for API server operations.
	logger hclog.Logger

	// HealthTracker stores the last known health of each registered server.
	healthTracker contracts.HealthMonitor

	// Prober runs on-demand probe batches.
	prober contracts.BatchProber

	// Admission is the daemon's own admission-control state machine.
	admission AdmissionController

	// Diagnostics runs full diagnostic passes.
	diagnostics api.DiagnosticRunner

	// Descriptors supplies the current probe targets.
	descriptors func() []domain.ServerDescriptor

	// Tokens validates bearer tokens when auth is enabled (nil disables auth).
	tokens contracts.TokenValidator

	// Addr specifies the network address to bind.
	addr string

	// CORS configuration for cross-origin requests.
	cors CORSConfig

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	shutdownTimeout time.Duration
}

// NewAPIServer creates a new API server with the provided dependencies and options.
// Applies default options first, then user-provided options to ensure all fields have valid values.
func NewAPIServer(deps APIDependencies, opt ...APIOption) (*APIServer, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for API server: %w", err)
	}

	// Ensure we always start with defaults and apply user options on top.
	apiOpts, err := NewAPIOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid API options: %w", err)
	}

	return &APIServer{
		logger:          deps.Logger.Named("api"),
		healthTracker:   deps.HealthTracker,
		prober:          deps.Prober,
		admission:       deps.Admission,
		diagnostics:     deps.Diagnostics,
		descriptors:     deps.Descriptors,
		tokens:          deps.Tokens,
		addr:            deps.Addr,
		cors:            apiOpts.CORS,
		shutdownTimeout: apiOpts.ShutdownTimeout,
	}, nil
}

// probePathPrefix is the sub-path for the daemon's own health probe routes.
// Requests under it bypass auth and admission accounting so that orchestrator
// probes keep working while the service is degraded or unauthenticated.
const probePathPrefix = "/health"

// Start starts the API server and blocks until the context is canceled or an error occurs.
func (a *APIServer) Start(ctx context.Context) error {
	// Create router.
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	// Add CORS middleware if enabled.
	if a.cors.Enabled {
		a.applyCORS(mux)
	}

	// Safe way to ensure /api/v1.
	apiPathPrefix, err := url.JoinPath("/api", "v1")
	if err != nil {
		return err
	}

	exempt := apiPathPrefix + probePathPrefix
	mux.Use(admissionMiddleware(a.admission, exempt))
	if a.tokens != nil {
		mux.Use(authMiddleware(a.logger, a.tokens, exempt))
	}

	config := huma.DefaultConfig("mcp-diagnostics docs", cmd.Version())
	router := humachi.New(mux, config)

	// Configure the error handling wrapping.
	huma.NewErrorWithContext = errorHandler(a.logger)

	// Group all routes under the /api/v1 prefix.
	v1 := huma.NewGroup(router, apiPathPrefix)
	api.RegisterProbeRoutes(v1, a.admission, probePathPrefix)
	api.RegisterHealthRoutes(v1, a.healthTracker, "/servers")
	api.RegisterServerRoutes(v1, a.healthTracker, a.prober, a.descriptors, "/servers")
	api.RegisterDiagnosticRoutes(v1, a.diagnostics, "/diagnostics")

	srv := &http.Server{
		Addr:    a.addr,
		Handler: mux,
	}
	errCh := make(chan error, 1)

	// Start the API.
	go func() {
		a.logger.Info("Starting API server", "address", a.addr, "prefix", apiPathPrefix)
		if a.cors.Enabled {
			a.logger.Info("CORS enabled", "origins", a.cors.AllowOrigins)
		}
		if a.tokens != nil {
			a.logger.Info("Bearer token authentication enabled")
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Handle graceful shutdown.
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("Shutting down API server...")
		_ = srv.Shutdown(shutdownCtx)
		a.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (a *APIServer) applyCORS(mux *chi.Mux) {
	a.logger.Info("Enabling CORS", "origins", a.cors.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins:   a.cors.AllowOrigins,
		AllowedMethods:   a.cors.AllowMethods,
		AllowedHeaders:   a.cors.AllowedHeaders,
		AllowCredentials: a.cors.AllowCredentials,
		MaxAge:           int(a.cors.MaxAge.Seconds()),
	}

	// Handle wildcard origins properly.
	for i, origin := range corsOptions.AllowedOrigins {
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			corsOptions.AllowCredentials = false
			break
		}
		corsOptions.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	mux.Use(cors.Handler(corsOptions))
}

// admissionMiddleware records every handled request into the admission
// controller. A response status below 500 counts as a success; requests to
// the daemon's own probe routes are not counted so that orchestrator polling
// cannot influence the readiness signal.
func admissionMiddleware(recorder contracts.AdmissionRecorder, exemptPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, exemptPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			recorder.RecordOutcome(ww.Status() < http.StatusInternalServerError)
		})
	}
}

// authMiddleware enforces bearer token authentication on all routes except
// the daemon's own probe routes, which must stay reachable for orchestrators.
func authMiddleware(
	logger hclog.Logger,
	tokens contracts.TokenValidator,
	exemptPrefix string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, exemptPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, "missing Authorization header")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeAuthError(w, "Authorization header must be 'Bearer <token>'")
				return
			}

			valid, err := tokens.Validate(r.Context(), token)
			if err != nil {
				logger.Error("Token validation failed", "error", err)
				writeAuthError(w, "token validation failed")
				return
			}
			if !valid {
				logger.Warn("Rejected invalid token", "remote", r.RemoteAddr)
				writeAuthError(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeAuthError writes a huma-style 401 error response.
func writeAuthError(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = fmt.Fprintf(w, `{"title":%q,"status":%d,"detail":%q}`, "Unauthorized", http.StatusUnauthorized, detail)
}

// mapError maps application domain errors to appropriate HTTP status codes.
//
// This function is the central place where domain errors from internal/errors are converted to HTTP responses.
// When adding new errors to internal/errors/errors.go, you MUST add them here to prevent them from falling
// through to the default case which returns HTTP 500.
//
// NOTE: Keep this function in sync with internal/errors/errors.go.
// Every error defined there should have an explicit case here otherwise it will default to 500.
//
// Mapping guidelines:
//   - 400: Client errors (bad input, invalid requests)
//   - 401: Authentication errors
//   - 404: Resource not found errors
//   - 500: Unexpected internal errors (default case)
//
// Don't forget to:
// 1. Add test cases to TestMapError (internal/daemon/api_server_test.go)
// 2. Update the documentation in internal/errors/errors.go
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, errors.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrNoCommand):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrNoURL):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrUnknownTransport):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrRegistryInvalid):
		return huma.Error400BadRequest(err.Error())
	case stdErrors.Is(err, errors.ErrUnauthorized):
		return huma.Error401Unauthorized(err.Error())
	case stdErrors.Is(err, errors.ErrServerNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrHealthNotTracked):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrRegistryNotFound):
		return huma.Error404NotFound(err.Error())
	default:
		logger.Error("Unexpected error handling request", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}

// errorHandler wraps error handling for the application when converting to API friendly errors.
// It allows the logger to be supplied to functions that resolve huma.StatusError,
// and it supports different behaviors based on the variadic errors parameter.
func errorHandler(logger hclog.Logger) func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
	return func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		switch len(errs) {
		case 0:
			// No errors provided; return a generic error.
			return huma.NewError(status, msg)
		case 1:
			// Single error; map it directly.
			return mapError(logger, errs[0])
		default:
			// Multiple errors; join them and map.
			combinedErr := stdErrors.Join(errs...)
			return mapError(logger, combinedErr)
		}
	}
}
