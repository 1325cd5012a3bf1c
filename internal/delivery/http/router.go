package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront/internal/delivery/http/middleware"
	"github.com/Pesokrava/storefront/internal/delivery/http/response"
	"github.com/Pesokrava/storefront/internal/domain"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
)

// Router holds HTTP handlers and router configuration
type Router struct {
	productHandler  *handler.ProductHandler
	reviewHandler   *handler.ReviewHandler
	cartHandler     *handler.CartHandler
	orderHandler    *handler.OrderHandler
	wishlistHandler *handler.WishlistHandler
	logger          *logger.Logger
	cfg             *config.Config
}

// NewRouter creates a new HTTP router
func NewRouter(
	productHandler *handler.ProductHandler,
	reviewHandler *handler.ReviewHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	wishlistHandler *handler.WishlistHandler,
	cfg *config.Config,
	log *logger.Logger,
) *Router {
	return &Router{
		productHandler:  productHandler,
		reviewHandler:   reviewHandler,
		cartHandler:     cartHandler,
		orderHandler:    orderHandler,
		wishlistHandler: wishlistHandler,
		logger:          log,
		cfg:             cfg,
	}
}

// Setup configures and returns the HTTP router
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logger(rt.logger))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	authenticate := middleware.Authenticate(rt.cfg.Auth.JWTSecret, rt.logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.productHandler.List)
			r.Get("/{id}", rt.productHandler.GetByID)
			r.Get("/{id}/reviews", rt.reviewHandler.GetByProductID)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/{id}/reviews", rt.reviewHandler.Create)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(middleware.RequireRoles(domain.RoleAdmin))
				r.Post("/", rt.productHandler.Create)
				r.Put("/{id}", rt.productHandler.Update)
				r.Delete("/{id}", rt.productHandler.Delete)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Use(authenticate)
			r.Put("/{id}", rt.reviewHandler.Update)
			r.Delete("/{id}", rt.reviewHandler.Delete)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", rt.cartHandler.Get)
			r.Delete("/", rt.cartHandler.Clear)
			r.Get("/quote", rt.cartHandler.Quote)
			r.Post("/items", rt.cartHandler.AddItem)
			r.Put("/items/{sku}", rt.cartHandler.UpdateItem)
			r.Delete("/items/{sku}", rt.cartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", rt.orderHandler.Place)
			r.Get("/", rt.orderHandler.List)
			r.Delete("/", rt.orderHandler.DeleteAll)
			r.Post("/invoice", rt.orderHandler.Invoice)
			r.Get("/{orderID}", rt.orderHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(domain.RoleManager, domain.RoleAdmin))
				r.Put("/{orderID}/status", rt.orderHandler.UpdateStatus)
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", rt.wishlistHandler.List)
			r.Post("/", rt.wishlistHandler.Add)
			r.Delete("/{productID}", rt.wishlistHandler.Remove)
		})
	})

	return r
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
