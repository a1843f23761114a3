package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.OptionalAuthMiddleware(jwtService))

		// Restaurants and menus
		r.Get("/restaurants", handlers.ListRestaurants)
		r.Route("/restaurants/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetRestaurant)
			r.Get("/menu", handlers.GetMenu)
			r.Get("/pickup-slots", handlers.PickupSlots)
			r.Get("/open", handlers.OpenStatus)
		})
		r.Get("/public/restaurants/by-slug/{slug}", handlers.GetRestaurantBySlug)

		// Cart
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handlers.GetCart)
			r.Delete("/", handlers.ClearCart)
			r.Post("/items", handlers.AddItem)
			r.Post("/switch/confirm", handlers.ConfirmSwitch)
			r.Post("/switch/cancel", handlers.CancelSwitch)
			r.Patch("/lines/{lineID}", handlers.UpdateQuantity)
			r.Put("/lines/{lineID}/options", handlers.UpdateLineOptions)
			r.Delete("/lines/{lineID}", handlers.RemoveLine)
			r.Get("/recommendations", handlers.Recommendations)
		})

		// Checkout, orders and reservations
		r.Post("/checkout", handlers.Checkout)
		r.Get("/orders/{id}", handlers.GetOrder)
		r.Post("/reservations", handlers.RequestReservation)
		r.Get("/reservations/{id}", handlers.GetReservation)

		// Customers
		r.Post("/customers/find-or-create", authHandlers.FindOrCreate)
		r.Route("/customer/auth", func(r chi.Router) {
			r.Post("/register", authHandlers.Register)
			r.Post("/authenticate", authHandlers.Authenticate)
			r.Post("/logout", authHandlers.Logout)
		})

		// Signed-in customers
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))
			r.Get("/customers/me", authHandlers.Me)
			r.Get("/customers/me/orders", handlers.ListMyOrders)
			r.Post("/orders/{id}/cancel", handlers.CancelOrder)
		})

		// Restaurant staff
		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))
			r.Use(middleware.RequireRole(auth.RoleStaff))
			r.Get("/restaurants/{id}/orders", handlers.ListRestaurantOrders)
			r.Get("/restaurants/{id}/reservations", handlers.ListRestaurantReservations)
			r.Post("/orders/{id}/ready", handlers.MarkOrderReady)
			r.Post("/orders/{id}/collect", handlers.CollectOrder)
			r.Post("/reservations/{id}/confirm", handlers.ConfirmReservation)
			r.Post("/reservations/{id}/decline", handlers.DeclineReservation)
		})
	})

	return r
}
