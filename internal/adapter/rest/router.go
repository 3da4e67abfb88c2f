package rest

import (
	"net/http"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig carries the dependencies of the HTTP surface. Observer may be
// nil.
type RouterConfig struct {
	Listings       ListingService
	Auth           AuthService
	Observer       RequestObserver
	Logger         *logger.Logger
	MaxUploadBytes int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger.Named("HTTP")
	listings := NewListingHandler(cfg.Listings, log, cfg.MaxUploadBytes)
	auth := NewAuthHandler(cfg.Auth, log)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Instrument(log, cfg.Observer))
	r.Use(Authenticate(cfg.Auth, log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", auth.HandleRegister)
			r.Post("/login", auth.HandleLogin)
			r.With(RequireAuth).Post("/logout", auth.HandleLogout)
			r.With(RequireAuth).Get("/session", auth.HandleSession)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", listings.HandleGetListings)
			r.Get("/search", listings.HandleSearchListings)
			r.Get("/{id}", listings.HandleGetListing)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Post("/", listings.HandleCreateListing)
				r.Patch("/{id}", listings.HandleUpdateListing)
				r.Delete("/{id}", listings.HandleDeleteListing)
			})
		})

		r.Get("/users/{userID}/listings", listings.HandleListByUser)
		r.With(RequireAuth).Get("/me/listings", listings.HandleListMine)
	})

	return r
}
