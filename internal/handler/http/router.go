package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JesusFern/BookLog-ELK-Stack/pkg/health"
	"github.com/JesusFern/BookLog-ELK-Stack/pkg/middleware"

	"github.com/JesusFern/BookLog-ELK-Stack/internal/service"
)

// suggestCacheMaxAge is the Cache-Control max-age, in seconds, for
// suggestion and facet responses. These change only when the index does,
// so short-lived client caching keeps typeahead traffic off Elasticsearch.
const suggestCacheMaxAge = 60

// NewRouter creates a chi router with all routes registered.
func NewRouter(
	searchService *service.SearchService,
	catalogService *service.CatalogService,
	syncService *service.SyncService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	pprofCIDRs []string,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Tracing("booklog"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("booklog"))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	searchHandler := NewSearchHandler(searchService, syncService, logger)
	bookHandler := NewBookHandler(catalogService, searchService, logger)

	r.Route("/api/v1/search", func(r chi.Router) {
		r.Get("/", searchHandler.Search)
		r.Get("/related/{id}", searchHandler.Related)
		r.Post("/reindex", searchHandler.Reindex)

		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(suggestCacheMaxAge))
			r.Get("/suggest", searchHandler.Suggest)
			r.Get("/facets", searchHandler.Facets)
		})
	})

	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/top", bookHandler.Top)
		r.Get("/formats", bookHandler.Formats)
		r.Get("/{id}", bookHandler.Get)

		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Post("/", bookHandler.Create)
			r.Post("/{id}/purchase", bookHandler.Purchase)
		})
	})

	return r
}
