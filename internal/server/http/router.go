package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Router assembles the chi mux with middleware and all API routes.
func (s *Server) Router(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(Recover(s.log))
	r.Use(Logging(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(Auth(s.signKey))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/verify", s.handleVerify)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/admin", s.handleAdminLogin)

		r.Get("/cycle", s.handleCycle)
		r.Get("/items", s.handleListItems)
		r.Get("/nutrition", s.handleListNutrition)
		r.Get("/report", s.handleReport)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/bids", s.handlePlaceBid)
			r.Get("/bids/mine", s.handleMyBids)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Post("/items", s.handleAddItem)
			r.Put("/items/{name}/min-bid", s.handleUpdateMinBid)
			r.Put("/discount", s.handleSetDiscount)
			r.Put("/nutrition/{name}", s.handleUpsertNutrition)
			r.Post("/cycle/reset", s.handleResetCycle)
		})
	})

	return r
}
