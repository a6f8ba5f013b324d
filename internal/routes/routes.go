package routes

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartshop_back_end/internal/handlers/admin"
	"smartshop_back_end/internal/handlers/chat"
	pa "smartshop_back_end/internal/handlers/payement"
	"smartshop_back_end/internal/handlers/product"
	"smartshop_back_end/internal/handlers/user"
	"smartshop_back_end/internal/middleware"
)

func allowedOrigins() []string {
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		return strings.Split(raw, ",")
	}
	return []string{"http://localhost:5173", "http://localhost:3000"}
}

// RegisterRoutes câble l'API complète sur le routeur gin.
func RegisterRoutes(r *gin.Engine) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	// ================== PUBLIC ==================
	api.POST("/auth/register", middleware.RegisterRateLimit(), user.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), user.Login)
	api.POST("/auth/forgot-password", middleware.ForgotPasswordRateLimit(), user.ForgotPassword)
	api.POST("/auth/reset-password", user.ResetPassword)
	api.GET("/auth/:provider", user.BeginAuth)
	api.GET("/auth/:provider/callback", user.CallbackAuth)

	api.GET("/products", product.ListProducts)
	api.GET("/products/search", product.SearchProducts)
	api.GET("/products/:id", product.GetProduct)
	api.GET("/products/:id/reviews", product.GetProductReviews)
	api.GET("/products/:id/reviews/stats", product.GetReviewStats)

	api.GET("/categories", product.GetAllCategories)
	api.GET("/categories/:id", product.GetCategory)
	api.GET("/brands", product.GetAllBrands)
	api.GET("/brands/:id", product.GetBrand)

	api.POST("/chat", middleware.ChatRateLimit(), chat.Chat)
	api.POST("/chat/image", middleware.ChatRateLimit(), chat.ImageSearch)
	api.POST("/chat/compare", middleware.ChatRateLimit(), chat.CompareProducts)

	// ================== AUTHENTIFIÉ ==================
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.GET("/auth/me", user.Me)

		authed.GET("/cart", user.GetCart)
		authed.GET("/cart/count", user.CartCount)
		authed.GET("/cart/validate", user.ValidateCart)
		authed.GET("/cart/ws", user.CartWebSocket)
		authed.POST("/cart", middleware.CartRateLimit(), user.AddToCart)
		authed.PUT("/cart/:productId", middleware.CartRateLimit(), user.UpdateCartItem)
		authed.DELETE("/cart/:productId", middleware.CartRateLimit(), user.RemoveFromCart)
		authed.DELETE("/cart", middleware.CartRateLimit(), user.ClearCart)

		authed.POST("/checkout", pa.Checkout)

		authed.GET("/orders", user.MyOrders)
		authed.GET("/orders/:orderNumber", user.GetOrder)
		authed.PUT("/orders/:orderNumber/cancel", user.CancelMyOrder)

		authed.GET("/wishlist", user.GetWishlist)
		authed.GET("/wishlist/count", user.WishlistCount)
		authed.POST("/wishlist", user.AddToWishlist)
		authed.DELETE("/wishlist/:productId", user.RemoveFromWishlist)
		authed.POST("/wishlist/remove-multiple", user.RemoveMultipleFromWishlist)
		authed.PUT("/wishlist/:itemId/reorder", user.ReorderWishlist)
		authed.PUT("/wishlist/:itemId/move-up", user.MoveWishlistItemUp)
		authed.PUT("/wishlist/:itemId/move-down", user.MoveWishlistItemDown)

		authed.POST("/products/:id/reviews", product.CreateReview)
		authed.POST("/products/:id/reviews/images", product.UploadReviewImages)
	}

	// ================== ADMIN ==================
	adm := api.Group("/admin")
	adm.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adm.POST("/products", product.CreateProduct)
		adm.PUT("/products/:id", product.UpdateProduct)
		adm.DELETE("/products/:id", product.DeleteProduct)
		adm.POST("/products/:id/images", product.UploadProductImages)
		adm.POST("/products/:id/restock", product.RestockProduct)
		adm.POST("/products/:id/adjust-stock", product.AdjustStock)
		adm.GET("/products/:id/movements", product.GetStockMovements)
		adm.GET("/inventory/alerts", product.GetStockAlerts)

		adm.POST("/categories", product.CreateCategory)
		adm.PUT("/categories/:id", product.UpdateCategory)
		adm.DELETE("/categories/:id", product.DeleteCategory)
		adm.POST("/brands", product.CreateBrand)
		adm.PUT("/brands/:id", product.UpdateBrand)
		adm.DELETE("/brands/:id", product.DeleteBrand)

		adm.PUT("/reviews/:reviewId/reply", product.ReplyToReview)

		adm.GET("/orders", admin.ListOrders)
		adm.GET("/orders/stats", admin.GetOrderStats)
		adm.GET("/orders/:orderNumber", admin.GetOrder)
		adm.PUT("/orders/:orderNumber/status", admin.UpdateOrderStatus)
		adm.PUT("/orders/:orderNumber/payment-status", admin.UpdatePaymentStatus)

		adm.GET("/reports/stats", admin.GetReportStats)
		adm.GET("/reports/monthly", admin.GetMonthlyReport)
		adm.GET("/reports/products", admin.GetProductSalesReport)
	}
}
