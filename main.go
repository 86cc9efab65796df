package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jmoralesv/go-storefront/app/auth"
	"github.com/jmoralesv/go-storefront/app/cart"
	"github.com/jmoralesv/go-storefront/app/catalog"
	"github.com/jmoralesv/go-storefront/app/categories"
	"github.com/jmoralesv/go-storefront/app/orders"
	"github.com/jmoralesv/go-storefront/models"
)

func main() {
	// Load environment variables
	_ = godotenv.Load()

	db := initDatabase()

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.OrderLine{},
		&models.Cart{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	secret := []byte(os.Getenv("JWT_SECRET"))
	if len(secret) == 0 {
		log.Fatal("JWT_SECRET must be set")
	}

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	cartRepo := models.NewCartRepository(db)
	ordersRepo := models.NewOrdersRepository(db)

	catalogHandler := catalog.NewCatalogHandler(productsRepo, categoriesRepo)
	categoryHandler := categories.NewCategoryHandler(categoriesRepo)
	cartHandler := cart.NewCartHandler(cartRepo)
	ordersHandler := orders.NewOrdersHandler(ordersRepo)

	mux := http.NewServeMux()

	// Public catalog surface
	mux.HandleFunc("GET /catalog", catalogHandler.HandleGet)
	mux.HandleFunc("GET /catalog/{slug}", catalogHandler.HandleGetProduct)
	mux.HandleFunc("GET /categories", categoryHandler.HandleGetAll)
	mux.HandleFunc("GET /categories/{slug}", catalogHandler.HandleGetCategory)

	// Catalog management
	mux.HandleFunc("POST /categories", auth.RequireAuth(secret, categoryHandler.HandleCreate))
	mux.HandleFunc("PUT /categories/{slug}", auth.RequireAuth(secret, categoryHandler.HandleRename))

	// Cart and checkout
	mux.HandleFunc("POST /cart", auth.RequireAuth(secret, cartHandler.HandleCreate))
	mux.HandleFunc("GET /cart", auth.RequireAuth(secret, cartHandler.HandleGet))
	mux.HandleFunc("DELETE /cart", auth.RequireAuth(secret, cartHandler.HandleClear))
	mux.HandleFunc("POST /cart/{slug}", auth.RequireAuth(secret, cartHandler.HandleAdd))
	mux.HandleFunc("POST /checkout", auth.RequireAuth(secret, ordersHandler.HandleCheckout))
	mux.HandleFunc("GET /orders", auth.RequireAuth(secret, ordersHandler.HandleList))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection. TranslateError is on so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// cart ledger relies on for its get-or-create retries.
func initDatabase() *gorm.DB {
	cfg := &gorm.Config{TranslateError: true}

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		db, err := gorm.Open(postgres.Open(databaseURL), cfg)
		if err != nil {
			log.Fatalf("DB connection failed: %v", err)
		}
		return db
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "storefront"),
		getEnv("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		log.Fatalf("DB connection failed: %v", err)
	}
	return db
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
