// internal/interfaces/http/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/interfaces/http/handlers"
	"github.com/your-org/storefront/internal/interfaces/http/middleware"
	"github.com/your-org/storefront/internal/pkg/auth"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth     *handlers.AuthHandler
	Product  *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Wishlist *handlers.WishlistHandler
	Address  *handlers.AddressHandler
	Order    *handlers.OrderHandler
	Invoice  *handlers.InvoiceHandler
	Admin    *handlers.AdminHandler
}

// SetupRoutes mounts all API routes on the engine
func SetupRoutes(router *gin.Engine, cfg *config.Config, jwtManager *auth.JWTManager, h *Handlers) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})

	// OAuth completion always lands here, outside the API prefix
	router.GET("/auth/callback", h.Auth.GoogleCallback)

	v1 := router.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", h.Auth.SignUp)
		authRoutes.POST("/signin", h.Auth.SignIn)
		authRoutes.POST("/refresh", h.Auth.RefreshToken)
		authRoutes.GET("/google", h.Auth.GoogleSignIn)
	}

	// Authenticated auth routes
	authProtected := v1.Group("/auth")
	authProtected.Use(middleware.AuthMiddleware(jwtManager))
	{
		authProtected.POST("/signout", h.Auth.SignOut)
		authProtected.GET("/me", h.Auth.Me)
		authProtected.POST("/change-password", h.Auth.ChangePassword)
	}

	// Catalog routes
	products := v1.Group("/products")
	{
		products.GET("", h.Product.ListProducts)
		products.GET("/brands", h.Product.ListBrands)
		products.GET("/:id", h.Product.GetProduct)
	}

	// Cart routes work for both guests and signed-in users
	cart := v1.Group("/cart")
	cart.Use(middleware.OptionalAuthMiddleware(jwtManager), middleware.SessionMiddleware())
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:productId", h.Cart.UpdateQuantity)
		cart.DELETE("/items/:productId", h.Cart.RemoveItem)
	}

	// Wishlist requires sign-in
	wishlist := v1.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(jwtManager))
	{
		wishlist.GET("", h.Wishlist.ListItems)
		wishlist.POST("/items", h.Wishlist.AddItem)
		wishlist.GET("/items/:productId", h.Wishlist.Contains)
		wishlist.DELETE("/items/:productId", h.Wishlist.RemoveItem)
	}

	// Address book
	addresses := v1.Group("/addresses")
	addresses.Use(middleware.AuthMiddleware(jwtManager))
	{
		addresses.GET("", h.Address.ListAddresses)
		addresses.POST("", h.Address.CreateAddress)
		addresses.PUT("/:id", h.Address.UpdateAddress)
		addresses.DELETE("/:id", h.Address.DeleteAddress)
	}

	// Checkout and order history
	orders := v1.Group("/orders")
	orders.Use(middleware.AuthMiddleware(jwtManager))
	{
		orders.POST("", h.Order.PlaceOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.GET("/:id/invoice", h.Invoice.DownloadInvoice)
	}

	// Admin dashboard
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", h.Admin.Dashboard)
		admin.GET("/orders", h.Admin.ListOrders)
		admin.GET("/orders/:id", h.Admin.GetOrder)
		admin.PUT("/orders/:id/status", h.Admin.UpdateOrderStatus)
		admin.POST("/products", h.Admin.CreateProduct)
		admin.PUT("/products/:id", h.Admin.UpdateProduct)
		admin.DELETE("/products/:id", h.Admin.DeleteProduct)
	}
}
