package main

import (
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"closet/internal/config"
	"closet/internal/database"
	"closet/internal/handlers"
	"closet/internal/imaging"
	"closet/internal/repositories"
	"closet/internal/services"
	"closet/internal/storage"
	"closet/internal/vton"
	"closet/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	// --- Database ---
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Asset storage ---
	assets, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize asset store: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// The API stays functional without a broker; events are simply skipped.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, closet events disabled: %v", err)
		} else {
			defer mqClient.Close()
			go func() {
				if consumeErr := mqClient.Consume(func(msg amqp.Delivery) error {
					log.Printf("Closet event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
					return nil
				}); consumeErr != nil {
					log.Printf("Failed to start closet event consumer: %v", consumeErr)
				}
			}()
		}
	}

	// --- Generation client ---
	// Mode is fixed here at construction; nothing downstream branches on it.
	var generator vton.Generator
	if cfg.EnableMockVTON {
		generator = vton.NewMockClient()
	} else {
		generator, err = vton.NewClient(cfg.VTONAPIURL, cfg.VTONAPIKey, cfg.VTONModelVersion)
		if err != nil {
			log.Fatalf("Failed to configure generation client: %v", err)
		}
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	itemRepo := repositories.NewGORMItemRepository(db)
	outfitRepo := repositories.NewGORMOutfitRepository(db)

	// --- Services ---
	processor := imaging.NewProcessor(imaging.NewHeuristicRemover(), runtime.NumCPU())
	userService := services.NewUserService(userRepo)
	closetService := services.NewClosetService(userRepo, itemRepo, processor, assets, mqClient)
	tryOnService := services.NewTryOnService(userRepo, itemRepo, outfitRepo, generator, cfg.StaticBaseURL, mqClient)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService)
	closetHandler := handlers.NewClosetHandler(closetService)
	tryOnHandler := handlers.NewTryOnHandler(tryOnService)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // phone photos run large
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))

	// Uploaded assets are served from the same process for local/dev use.
	app.Static(storage.StaticPrefix, cfg.UploadDir)

	api := app.Group("/api")
	userHandler.RegisterRoutes(api)
	closetHandler.RegisterRoutes(api)
	tryOnHandler.RegisterRoutes(api)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the virtual closet API"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
