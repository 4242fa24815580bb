package httptransport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scaffold/internal/platform/config"
	"scaffold/internal/platform/metrics"
	"scaffold/pkg/platform/di"
	"scaffold/pkg/platform/httputil"
	"scaffold/pkg/platform/middleware/cors"
	"scaffold/pkg/platform/middleware/metadata"
	request "scaffold/pkg/platform/middleware/request"
	"scaffold/pkg/platform/middleware/requesttime"
	"scaffold/pkg/platform/registry"
	"scaffold/pkg/requestcontext"
)

// APIPrefix is mounted in front of every controller path.
const APIPrefix = "/api/v1"

// Controller serves one declared route. Returned errors are rendered as
// problem details.
type Controller interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

// Middleware is implemented by container-resolved route middlewares.
type Middleware interface {
	Wrap(next http.Handler) http.Handler
}

// NewRouter mounts every declared controller under APIPrefix, resolving each
// controller and its middlewares from c once. CORS is enabled when the
// resolved config lists allowed origins.
func NewRouter(c di.Resolver, reg *registry.Registry, logger *slog.Logger, m *metrics.Metrics) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Recover(logger))
	r.Use(request.Logger(logger, m))
	if cfg, err := di.Get[config.Config](c); err == nil && len(cfg.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cfg.Server.AllowedOrigins).Handler)
	}

	r.Method(http.MethodGet, "/metrics", m.Handler())

	api := chi.NewRouter()
	api.Get("/health-check", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, decl := range reg.Controllers() {
		h, err := controllerHandler(c, decl, logger)
		if err != nil {
			return nil, err
		}
		api.Method(decl.Method, decl.Path, h)
		logger.Info("route loaded",
			"method", decl.Method,
			"path", APIPrefix+decl.Path,
			"controller", decl.Identity.String(),
			"schema", decl.Schema,
		)
	}

	r.Mount(APIPrefix, api)
	return r, nil
}

func controllerHandler(c di.Resolver, decl registry.Controller, logger *slog.Logger) (http.Handler, error) {
	v, err := c.Get(decl.Identity)
	if err != nil {
		return nil, fmt.Errorf("resolve controller %s: %w", decl.Identity, err)
	}
	ctrl, ok := v.(Controller)
	if !ok {
		return nil, fmt.Errorf("controller %s does not implement Controller", decl.Identity)
	}

	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ctrl.Handle(w, r); err != nil {
			ctx := r.Context()
			logger.WarnContext(ctx, "request failed",
				"controller", decl.Identity.String(),
				"error", err,
				"request_id", request.GetRequestID(ctx),
				"subject", requestcontext.Subject(ctx),
			)
			httputil.WriteError(w, err)
		}
	})

	// First declared middleware is outermost.
	for i := len(decl.Middlewares) - 1; i >= 0; i-- {
		id := decl.Middlewares[i]
		mv, err := c.Get(id)
		if err != nil {
			return nil, fmt.Errorf("resolve middleware %s for %s %s: %w", id, decl.Method, decl.Path, err)
		}
		mw, ok := mv.(Middleware)
		if !ok {
			return nil, fmt.Errorf("middleware %s does not implement Middleware", id)
		}
		h = mw.Wrap(h)
	}
	return h, nil
}
