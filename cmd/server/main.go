package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/dejanvasic/shopgram/configs"
	"github.com/dejanvasic/shopgram/internal/api/handlers"
	"github.com/dejanvasic/shopgram/internal/api/middleware"
	"github.com/dejanvasic/shopgram/internal/graph"
	job "github.com/dejanvasic/shopgram/internal/jobs"
	"github.com/dejanvasic/shopgram/internal/queue"
	"github.com/dejanvasic/shopgram/internal/repository"
	"github.com/dejanvasic/shopgram/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    50 * 1024 * 1024, // 50 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	productRepo := repository.NewProductRepository(db)
	productImageRepo := repository.NewProductImageRepository(db)
	scheduledPostRepo := repository.NewScheduledPostRepository(db)

	graphClient := graph.NewClient(cfg.GraphAPIVersion)

	r2Service := service.NewR2Service(*cfg)
	facebookService := service.NewFacebookService(graphClient)
	instagramService := service.NewInstagramService(graphClient)
	publishService := service.NewPublishService(*cfg, graphClient, productRepo, productImageRepo, facebookService, instagramService)
	mediaService := service.NewMediaService(productRepo, productImageRepo, *r2Service)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	social := handlers.NewSocialHandler(publishService, scheduledPostRepo, client)
	api.Post("/social/publish", social.Publish)
	api.Get("/social/scheduled", social.ListScheduled)
	api.Post("/social/scheduled/remove", social.RemoveScheduled)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/products/:id/images", media.UploadProductImage)

	// queue
	queueW := queue.NewQueue(scheduledPostRepo, publishService, func(payload queue.DispatchPostPayload, delay time.Duration) error {
		return queue.EnqueuePost(client, payload, delay)
	})

	// cron jobs
	staleDispatchJob := job.NewStaleDispatchJob(scheduledPostRepo)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", staleDispatchJob.SweepStuck)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeDispatchPost, queueW.HandleDispatchPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
