package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/storefront/internal/config"
	"github.com/Pesokrava/storefront/internal/delivery/events"
	httpDelivery "github.com/Pesokrava/storefront/internal/delivery/http"
	"github.com/Pesokrava/storefront/internal/delivery/http/handler"
	"github.com/Pesokrava/storefront/internal/pkg/cache"
	"github.com/Pesokrava/storefront/internal/pkg/database"
	"github.com/Pesokrava/storefront/internal/pkg/logger"
	cacheRepo "github.com/Pesokrava/storefront/internal/repository/cache"
	"github.com/Pesokrava/storefront/internal/repository/postgres"
	"github.com/Pesokrava/storefront/internal/usecase/cart"
	"github.com/Pesokrava/storefront/internal/usecase/catalog"
	"github.com/Pesokrava/storefront/internal/usecase/checkout"
	"github.com/Pesokrava/storefront/internal/usecase/invoice"
	"github.com/Pesokrava/storefront/internal/usecase/order"
	"github.com/Pesokrava/storefront/internal/usecase/review"
	"github.com/Pesokrava/storefront/internal/usecase/wishlist"

	_ "github.com/Pesokrava/storefront/docs"
)

// @title Storefront API
// @version 1.0
// @description A storefront backend with catalog, cart, order, invoice, review and wishlist APIs.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/storefront
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Products
// @tag.description Catalog management endpoints

// @tag.name Reviews
// @tag.description Review management endpoints

// @tag.name Cart
// @tag.description Shopping cart endpoints

// @tag.name Orders
// @tag.description Order and invoice endpoints

// @tag.name Wishlist
// @tag.description Wishlist endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Storefront API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	streamConfig := events.NewStreamConfig(publisher.JetStream(), appLogger)
	if err := streamConfig.EnsureReviewStream(); err != nil {
		appLogger.Fatal("Failed to ensure review stream", err)
	}
	if err := streamConfig.EnsureOrderStream(); err != nil {
		appLogger.Fatal("Failed to ensure order stream", err)
	}

	productRepo := postgres.NewProductRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	cartRepo := postgres.NewCartRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	wishlistRepo := postgres.NewWishlistRepository(db)
	redisCache := cacheRepo.NewRedisCache(
		redisClient,
		cfg.Cache.ProductTTL,
		cfg.Cache.ReviewsListTTL,
	)

	catalogService := catalog.NewService(productRepo, reviewRepo, redisCache, appLogger)
	reviewService := review.NewService(reviewRepo, redisCache, publisher, appLogger)
	cartService := cart.NewService(cartRepo, productRepo, appLogger)
	checkoutService := checkout.NewService(cartRepo, productRepo, appLogger)
	orderService := order.NewService(orderRepo, productRepo, publisher, appLogger)
	invoiceService := invoice.NewService(
		invoiceRepo,
		orderRepo,
		cfg.Billing.TaxRate,
		cfg.Billing.ShippingFee,
		appLogger,
	)
	wishlistService := wishlist.NewService(wishlistRepo, productRepo, appLogger)

	productHandler := handler.NewProductHandler(catalogService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)
	cartHandler := handler.NewCartHandler(cartService, checkoutService, appLogger)
	orderHandler := handler.NewOrderHandler(orderService, invoiceService, cartService, appLogger)
	wishlistHandler := handler.NewWishlistHandler(wishlistService, appLogger)

	router := httpDelivery.NewRouter(
		productHandler,
		reviewHandler,
		cartHandler,
		orderHandler,
		wishlistHandler,
		cfg,
		appLogger,
	)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
