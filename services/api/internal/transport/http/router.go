package http

import (
	"log/slog"
	"net/http"

	"github.com/cimillas/festival/services/api/internal/notify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig wires the services behind the HTTP API.
type RouterConfig struct {
	Events      EventService
	Catalog     CatalogService
	ArtistTags  ArtistTagService
	Publisher   notify.Publisher
	DB          Pinger
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter builds the API handler: public event reads, admin writes, JSON
// errors for unknown routes and methods, request logging and CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = &notify.NoopPublisher{}
	}

	events := &eventHandlers{svc: cfg.Events, publisher: publisher, logger: logger}
	admin := &adminHandlers{catalog: cfg.Catalog, artistTags: cfg.ArtistTags, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(TraceContext(nil))
	r.Use(func(next http.Handler) http.Handler { return RequestLogger(next, logger) })
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(MethodNotAllowedHandler().ServeHTTP)

	r.Get("/health", HealthHandler)
	if cfg.DB != nil {
		r.Get("/ready", ReadyHandler(cfg.DB))
	}

	r.Get("/events", events.list)
	r.Get("/events/{id}", events.get)

	r.Route("/admin", func(r chi.Router) {
		r.Post("/events", events.create)
		r.Put("/events/{id}", events.update)
		r.Delete("/events/{id}", events.remove)

		r.Get("/areas", admin.listAreas)
		r.Post("/areas", admin.createArea)
		r.Get("/artists", admin.listArtists)
		r.Post("/artists", admin.createArtist)
		r.Put("/artists/{id}/tags", admin.replaceArtistTags)
		r.Get("/tags", admin.listTags)
		r.Post("/tags", admin.createTag)
	})

	return r
}
