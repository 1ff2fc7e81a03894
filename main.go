package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"esports-arena/handlers"
	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"
	"esports-arena/utils"
	"esports-arena/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024, // uploads are images only
	})

	// Load allowed origins from environment variable
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	origins := strings.Split(allowedOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID",
		ExposeHeaders:    "Content-Length, Content-Type",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 not configured (%v) — storing uploads locally", err)
		if err := utils.EnsureUploadDir(); err != nil {
			log.Fatal("failed to ensure upload dir:", err)
		}
	}

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}
	authServiceToken := os.Getenv("AUTH_SERVICE_TOKEN")
	if authServiceToken == "" {
		log.Fatal("AUTH_SERVICE_TOKEN environment variable not set")
	}
	authClient := services.NewAuthServiceClient(authServiceURL, authServiceToken)

	kv := store.NewPostgresStore(db)
	gamificationService := services.NewGamificationService(kv)
	userService := services.NewUserService(kv, authClient, gamificationService)
	tournamentService := services.NewTournamentService(kv, gamificationService)
	teamService := services.NewTeamService(kv, gamificationService)
	socialService := services.NewSocialService(kv, gamificationService)
	notificationService := services.NewNotificationService(kv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	leaderboardWorker := workers.NewLeaderboardWorker(kv, gamificationService, 30*time.Second)
	leaderboardWorker.Start(ctx)

	tournamentService.StartPublishScheduler()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
	})

	handlers.SetupUserRoutes(app, userService, socialService, authClient, kv)
	handlers.SetupGamificationRoutes(app, gamificationService, authClient)
	handlers.SetupTournamentRoutes(app, tournamentService, authClient, kv)
	handlers.SetupTeamRoutes(app, teamService, authClient)
	handlers.SetupNotificationRoutes(app, notificationService, authClient)

	app.Static("/uploads", "./uploads")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Leaderboard snapshot worker running (every 30s)")
	log.Println("✅ Tournament publish scheduler running (every 1m)")
	log.Printf("✅ CORS configured for origins: %s", strings.Join(origins, ","))

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
