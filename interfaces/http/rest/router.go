package rest

import (
	"net/http"
	"strings"

	"seds-backend/application/commands/bus"
	querybus "seds-backend/application/queries/bus"
	"seds-backend/application/services"
	"seds-backend/interfaces/http/rest/docs"
	"seds-backend/interfaces/http/rest/handlers"
	"seds-backend/interfaces/http/rest/middleware"
	v1 "seds-backend/interfaces/http/rest/v1"
	"seds-backend/pkg/auth"
	pkgerrors "seds-backend/pkg/errors"
	"seds-backend/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router hands to its handlers.
// Collector and Tracer are optional.
type Dependencies struct {
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Confirmations  *services.ConfirmationService
	Authenticator  *middleware.Authenticator
	Collector      *observability.Collector
	Tracer         *observability.Tracer
	AllowedOrigins []string
	Debug          bool
	Logger         *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	deps   Dependencies
	errors *pkgerrors.ErrorHandler
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	return &Router{
		deps:   deps,
		errors: pkgerrors.NewErrorHandler(deps.Logger, deps.Debug),
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	if rt.deps.Tracer != nil {
		router.Use(rt.deps.Tracer.Middleware)
	}
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestContext)
	router.Use(middleware.Logger(rt.deps.Logger))
	router.Use(rt.errors.Middleware)
	if rt.deps.Collector != nil {
		router.Use(rt.deps.Collector.Middleware)
	}
	router.Use(versionMiddleware)

	origins := rt.deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	router.Get("/api/swagger", docs.Handler())

	// Legacy v1 routes keep the un-enveloped response shapes
	router.Group(func(r chi.Router) {
		r.Use(rt.deps.Authenticator.Middleware)
		r.Mount("/api/v1", v1.NewRouter(rt.deps.QueryBus, rt.errors))
	})

	forms := handlers.NewFormHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.errors, rt.deps.Logger)
	catalog := handlers.NewCatalogHandler(rt.deps.QueryBus, rt.errors, rt.deps.Logger)
	users := handlers.NewUserHandler(rt.deps.CommandBus, rt.deps.QueryBus, rt.deps.Confirmations, rt.errors, rt.deps.Logger)

	router.Route("/api/v2", func(r chi.Router) {
		r.Use(rt.deps.Authenticator.Middleware)

		r.Route("/forms/{state}/{year}/{quarter}/{form}", func(r chi.Router) {
			r.Get("/", forms.GetForm)
			r.Put("/answers/{answerEntry}", forms.SaveAnswer)
			r.Get("/grids/{answerEntry}", forms.GetGrid)
			r.Post("/certify", forms.Certify)
			r.Post("/uncertify", forms.Uncertify)
			r.Put("/notes", forms.UpdateSummaryNotes)
			r.Put("/not-applicable", forms.SetNotApplicable)
		})
		r.Get("/states/{state}/{year}/{quarter}", forms.ListStateForms)

		r.Post("/grids/render", catalog.RenderGrid)
		r.Get("/form-types", catalog.ListFormTypes)
		r.With(middleware.RequireRole(auth.RoleAdmin)).Post("/form-templates", catalog.GetFormTemplates)

		r.Route("/users", func(r chi.Router) {
			r.Post("/by-sub", users.GetUserBySub)
			r.Get("/{id}", users.GetUser)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))
				r.Get("/", users.ListUsers)
				r.Post("/", users.CreateUser)
				r.Post("/{id}/activation", users.RequestActivation)
			})
		})
		r.Post("/confirmations/{id}", users.ResolveConfirmation)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck reports ready once the buses are wired
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if rt.deps.CommandBus == nil || rt.deps.QueryBus == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// versionMiddleware adds API version headers to all responses
func versionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		version := "v2"
		if strings.HasPrefix(r.URL.Path, "/api/v1") {
			version = "v1"
		}

		w.Header().Set("X-API-Version", version)
		w.Header().Set("X-API-Latest", "v2")
		w.Header().Set("X-API-Deprecated", "false")
		if version == "v1" {
			w.Header().Set("X-API-Deprecated", "true")
		}

		next.ServeHTTP(w, r)
	})
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
