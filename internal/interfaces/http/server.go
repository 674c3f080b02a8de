// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/domain/analytics"
	"github.com/your-org/storefront/internal/domain/cart"
	"github.com/your-org/storefront/internal/domain/order"
	"github.com/your-org/storefront/internal/domain/product"
	"github.com/your-org/storefront/internal/domain/user"
	"github.com/your-org/storefront/internal/domain/wishlist"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/interfaces/http/routes"
	"github.com/your-org/storefront/internal/pkg/auth"
	"github.com/your-org/storefront/internal/pkg/email"
	"github.com/your-org/storefront/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Server is the HTTP server with all services wired in
type Server struct {
	config     *config.Config
	httpServer *http.Server

	authStream  *user.Stream
	cartService *cart.Service
	wishlistSet *wishlist.ReconcilerSet
	watcher     *analytics.Watcher
}

// NewServer wires the domain services together and builds the HTTP server
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Auth event stream; the cart service and wishlist set consume it to
	// drop per-user state when a session ends.
	authStream := user.NewStream()

	// Domain services
	jwtManager := auth.NewJWTManager(cfg)
	userService := user.NewService(db, redisClient, cfg, authStream)
	oauthService := user.NewOAuthService(cfg, userService)
	addressService := user.NewAddressService(db, cfg)
	productService := product.NewService(db, cfg)
	cartService := cart.NewService(db, redisClient, cfg, productService, authStream)
	wishlistService := wishlist.NewService(db, cfg)
	wishlistSet := wishlist.NewReconcilerSet(wishlistService, authStream)
	emailService := email.NewService(cfg)
	pdfService := pdf.NewService(cfg)
	orderService := order.NewService(db, redisClient, cfg, cartService, addressService, emailService)
	analyticsService := analytics.NewService(db, cfg)
	watcher := analytics.NewWatcher(analyticsService, redisClient)

	h := &routes.Handlers{
		Auth:     handlers.NewAuthHandler(userService, oauthService, redisClient),
		Product:  handlers.NewProductHandler(productService),
		Cart:     handlers.NewCartHandler(cartService),
		Wishlist: handlers.NewWishlistHandler(wishlistSet),
		Address:  handlers.NewAddressHandler(addressService),
		Order:    handlers.NewOrderHandler(orderService),
		Invoice:  handlers.NewInvoiceHandler(orderService, pdfService),
		Admin:    handlers.NewAdminHandler(orderService, productService, watcher),
	}

	router := gin.New()
	if len(cfg.Security.TrustedProxies) > 0 {
		router.SetTrustedProxies(cfg.Security.TrustedProxies)
	} else {
		router.SetTrustedProxies(nil)
	}

	router.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(),
		middleware.SecurityMiddleware(),
		middleware.CORSMiddleware(cfg),
		middleware.RequestSizeMiddleware(),
		middleware.TimeoutMiddleware(cfg.Server.WriteTimeout),
		middleware.RateLimitMiddleware(redisClient, cfg),
	)

	routes.SetupRoutes(router, cfg, jwtManager, h)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		authStream:  authStream,
		cartService: cartService,
		wishlistSet: wishlistSet,
		watcher:     watcher,
	}
}

// Start begins the analytics watcher and serves HTTP
func (s *Server) Start(ctx context.Context) error {
	if err := s.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start analytics watcher: %w", err)
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server and its background consumers
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.watcher.Close()
	s.authStream.Close()
	s.cartService.Close()
	s.wishlistSet.Close()

	return err
}
