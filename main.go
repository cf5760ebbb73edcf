package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shopapp/internal/handlers"
	"shopapp/internal/middleware"
	"shopapp/internal/models"
	"shopapp/internal/remote"
	"shopapp/internal/session"
	"shopapp/internal/store"
	"shopapp/pkg/events"
)

// application bundles the state containers built once at process start.
type application struct {
	auth     *store.AuthStore
	cart     *store.CartStore
	products *store.ProductStore
	orders   *store.OrderStore
}

// newApplication wires the containers over the remote clients and the
// durable session repository.
func newApplication(identity *remote.IdentityClient, docs *remote.StoreClient, sessions session.Repository, publisher store.Publisher) *application {
	auth := store.NewAuthStore(identity, sessions)
	return &application{
		auth:     auth,
		cart:     store.NewCartStore(),
		products: store.NewProductStore(docs, auth),
		orders:   store.NewOrderStore(docs, auth, publisher),
	}
}

// newRouter builds the HTTP facade over the containers. Auth, catalog
// listing and cart routes are public; seller and order routes sit behind
// the session guard.
func newRouter(app *application) *fiber.App {
	router := fiber.New()
	router.Use(logger.New())

	authHandler := handlers.NewAuthHandler(app.auth)
	productHandler := handlers.NewProductHandler(app.products)
	cartHandler := handlers.NewCartHandler(app.cart)
	orderHandler := handlers.NewOrderHandler(app.orders, app.cart)

	apiV1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterRoutes(apiV1)

	guarded := apiV1.Group("", middleware.SessionRequired(app.auth))
	productHandler.RegisterSellerRoutes(guarded)
	orderHandler.RegisterRoutes(guarded)

	router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return router
}

func main() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("IDENTITY_URL", "http://localhost:9099/v1")
	viper.SetDefault("IDENTITY_API_KEY", "")
	viper.SetDefault("STORE_URL", "http://localhost:9000")
	viper.SetDefault("SESSION_DB_PATH", "sessions.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	db, err := gorm.Open(sqlite.Open(viper.GetString("SESSION_DB_PATH")), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open session database: %v", err)
	}
	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		log.Fatalf("Failed to migrate session database: %v", err)
	}
	sessions := session.NewGORMRepository(db)

	identity := remote.NewIdentityClient(viper.GetString("IDENTITY_URL"), viper.GetString("IDENTITY_API_KEY"))
	docs := remote.NewStoreClient(viper.GetString("STORE_URL"))

	// The broker is optional: without RABBITMQ_URL checkout events are
	// simply not published.
	var publisher store.Publisher
	var mqClient *events.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = events.NewClient(events.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize AMQP client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
	}

	app := newApplication(identity, docs, sessions, publisher)
	if app.auth.Restore() {
		log.Printf("Restored persisted session for user %s", app.auth.UserID())
	}

	router := newRouter(app)

	if mqClient != nil {
		go func() {
			log.Println("Starting checkout event consumer...")
			consumeErr := mqClient.ConsumeCheckoutEvents(func(msg amqp.Delivery) error {
				log.Printf("Checkout event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			})
			if consumeErr != nil {
				log.Printf("Checkout event consumer stopped: %v", consumeErr)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", appPort)
		if err := router.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := router.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
