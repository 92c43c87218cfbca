// Package server assembles the fleetdesk HTTP API from the per-package
// routers and the shared middleware stack.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/fleetdesk/fleetdesk/pkg/assets"
	"github.com/fleetdesk/fleetdesk/pkg/attachments"
	"github.com/fleetdesk/fleetdesk/pkg/catalog"
	"github.com/fleetdesk/fleetdesk/pkg/httputil"
	"github.com/fleetdesk/fleetdesk/pkg/issues"
)

// Stores bundles every store the API serves.
type Stores struct {
	Catalog     *catalog.Store
	Registry    *catalog.Registry
	Assets      *assets.Store
	Issues      *issues.Store
	Attachments *attachments.Store
}

// New builds the top-level router: middleware, the v2 API, and health.
func New(db *gorm.DB, st Stores, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(requestLogger(logger))

	r.Get("/healthz", healthHandler(db))

	r.Route("/api/v2", func(r chi.Router) {
		r.Mount("/", catalog.Router(st.Catalog, st.Registry))
		r.Mount("/assets", assets.Router(st.Assets, st.Catalog))

		issueRouter := issues.Router(st.Issues, st.Catalog)
		attachments.Mount(issueRouter, st.Attachments)
		r.Mount("/issues", issueRouter)
	})

	return r
}

// healthHandler pings the database and reports the site count, so a healthy
// response proves both the process and its storage are up.
func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var one int
		if err := db.Raw("SELECT 1").Scan(&one).Error; err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		var siteCount int64
		if err := db.Table("sites").Count(&siteCount).Error; err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"ok":         true,
			"site_count": siteCount,
		})
	}
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"requestId", middleware.GetReqID(r.Context()),
			)
		})
	}
}
