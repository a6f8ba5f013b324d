package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"smartshop_back_end/internal/config"
	"smartshop_back_end/internal/database"
	"smartshop_back_end/internal/handlers/admin"
	"smartshop_back_end/internal/handlers/chat"
	pa "smartshop_back_end/internal/handlers/payement"
	"smartshop_back_end/internal/handlers/product"
	"smartshop_back_end/internal/handlers/user"
	"smartshop_back_end/internal/routes"
	"smartshop_back_end/internal/service"
	"smartshop_back_end/internal/services"
	"smartshop_back_end/internal/store"
)

func main() {
	config.Load()
	config.SetupOAuth()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Println("⚠️ STRIPE_SECRET_KEY manquant : paiement par carte indisponible")
	} else {
		log.Println("✅ Stripe initialisé")
	}

	database.ConnectDatabases()
	defer database.CloseMongo()
	database.InitIndexes()

	// Stores Mongo
	txRunner := store.NewMongoTxRunner(database.MongoClient)
	productStore := store.NewMongoProductStore(database.MongoProductsDB)
	cartStore := store.NewMongoCartStore(database.MongoUsersDB, database.MongoProductsDB)
	orderStore := store.NewMongoOrderStore(database.MongoOrdersDB)
	userStore := store.NewMongoUserStore(database.MongoUsersDB)
	reviewStore := store.NewMongoReviewStore(database.MongoProductsDB)
	wishlistStore := store.NewMongoWishlistStore(database.MongoUsersDB)
	reportStore := store.NewMongoReportStore(database.MongoOrdersDB)

	// Services
	orderService := service.NewOrderService(txRunner, productStore, cartStore, orderStore, reportStore)
	cartService := service.NewCartService(cartStore, productStore)
	aiClient := services.NewAIClient()

	// Injection dans les handlers
	user.InitAuth(userStore)
	user.InitCart(cartService)
	user.InitOrders(orderService)
	user.InitWishlist(wishlistStore, productStore)
	product.InitProducts(productStore)
	product.InitReviews(reviewStore)
	admin.InitOrders(orderService)
	admin.InitReports(reportStore)
	pa.InitCheckout(orderService)
	chat.InitChat(aiClient, productStore)

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur SmartShop lancé sur le port", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Arrêt serveur: %v", err)
	}
}
