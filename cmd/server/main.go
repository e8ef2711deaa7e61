package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/bigshop/internal/app"
	"github.com/linemk/bigshop/internal/app/handlers"
	"github.com/linemk/bigshop/internal/config"
	"github.com/linemk/bigshop/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/bigshop/internal/lib/logger"
	"github.com/linemk/bigshop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/bigshop/internal/service"
	"github.com/linemk/bigshop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, time.Duration(application.Config.JWT.TokenTTL)*time.Minute)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo, productRepo)
	checkoutService := service.NewCheckoutService(application.Logger, application.DB, cartRepo, productRepo, orderRepo)
	orderService := service.NewOrderService(application.Logger, orderRepo)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(application.Logger, authService))

	// публичная часть каталога
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/featured", handlers.FeaturedProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/category/{category}", handlers.ProductsByCategoryHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.GetProductHandler(application.Logger, catalogService))

	jwtMW := jwtmiddleware.NewJWTMiddleware()

	// корзина и заказы — только для аутентифицированных пользователей
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)
		r.Get("/api/cart", handlers.GetCartHandler(application.Logger, cartService))
		r.Post("/api/cart/add", handlers.AddToCartHandler(application.Logger, cartService))
		r.Put("/api/cart/{productId}", handlers.UpdateCartItemHandler(application.Logger, cartService))
		r.Delete("/api/cart/{productId}", handlers.RemoveFromCartHandler(application.Logger, cartService))
		r.Delete("/api/cart", handlers.ClearCartHandler(application.Logger, cartService))

		// оформление заказа из корзины
		r.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, checkoutService))
		r.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{id}", handlers.GetOrderHandler(application.Logger, orderService))
	})

	// административная часть
	router.Group(func(r chi.Router) {
		r.Use(jwtMW)
		r.Use(jwtmiddleware.RequireAdmin)
		r.Post("/api/products", handlers.CreateProductHandler(application.Logger, catalogService))
		r.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, catalogService))
		r.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, catalogService))
		r.Get("/api/admin/orders", handlers.AdminOrdersHandler(application.Logger, orderService))
		r.Put("/api/admin/orders/{id}", handlers.UpdateOrderStatusHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
