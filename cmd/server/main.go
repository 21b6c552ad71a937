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
	config "github.com/socialmagic/content-engine/configs"
	"github.com/socialmagic/content-engine/internal/api/handlers"
	"github.com/socialmagic/content-engine/internal/api/middleware"
	job "github.com/socialmagic/content-engine/internal/jobs"
	"github.com/socialmagic/content-engine/internal/queue"
	"github.com/socialmagic/content-engine/internal/repository"
	"github.com/socialmagic/content-engine/internal/service"
	"github.com/robfig/cron"
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
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	postRepo := repository.NewPostRepository(db)
	weeklyRepo := repository.NewWeeklyGenerationRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	attemptRepo := repository.NewPublishAttemptRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	contentProvider := service.NewGeminiService(*cfg)
	mediaStorage := service.NewS3Storage(*cfg)
	instagram := service.NewInstagramService(*cfg)
	facebook := service.NewFacebookService(*cfg)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo)
	subscriptionService := service.NewSubscriptionService(*cfg, postRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	postService := service.NewPostService(*cfg, postRepo, weeklyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	platform := handlers.NewPlatformHandler(platformService, *cfg)
	app.Get("/auth/connect", platform.AddSocialAccount)
	app.Get("/auth/callback", platform.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, client)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/overdue", post.ListOverduePosts)
	api.Post("/posts/approve", post.ApprovePost)
	api.Post("/posts/reject", post.RejectPost)

	campaign := handlers.NewCampaignHandler(campaignRepo)
	api.Post("/campaigns/create", campaign.CreateCampaign)
	api.Get("/campaigns", campaign.ListCampaigns)
	api.Post("/campaigns/deactivate", campaign.DeactivateCampaign)

	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	notification := handlers.NewNotificationHandler(notificationService)
	api.Get("/notifications", notification.ListNotifications)
	api.Post("/notifications/read", notification.MarkNotificationRead)

	// cron jobs
	generationSweep := job.NewGenerationSweepJob(userRepo, weeklyRepo, subscriptionService, client)
	publishSweep := job.NewPublishSweepJob(*cfg, postRepo, client)
	tokenRefresh := job.NewTokenRefreshJob(*cfg, socialAccountRepo, platformService)

	worker := queue.NewWorker(*cfg, client, userRepo, profileRepo, campaignRepo,
		postRepo, weeklyRepo, socialAccountRepo, attemptRepo,
		contentProvider, mediaStorage, instagram, facebook, notificationService)

	c := cron.New()
	c.AddFunc(cfg.Scheduling.GenerationSpec, generationSweep.Run)
	c.AddFunc(fmt.Sprintf("@every %s", cfg.Scheduling.PublishSweepInterval), publishSweep.Run)
	c.AddFunc(fmt.Sprintf("@every %s", cfg.Scheduling.TokenRefreshWindow), tokenRefresh.Run)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		worker.Register(mux)

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
