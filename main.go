package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/redis/go-redis/v9"

	"classroom/access"
	"classroom/config"
	announcementController "classroom/controllers/announcement"
	authController "classroom/controllers/auth"
	courseControllers "classroom/controllers/course"
	discussionController "classroom/controllers/discussion"
	submittableController "classroom/controllers/submittable"
	syllabusController "classroom/controllers/syllabus"
	"classroom/database"
	"classroom/middleware"
	"classroom/models"
	"classroom/routers/announcementRoutes"
	"classroom/routers/authRoutes"
	"classroom/routers/courseRoutes"
	"classroom/routers/discussionRoutes"
	"classroom/routers/submittableRoutes"
	"classroom/routers/syllabusRoutes"
	"classroom/storage"
	"classroom/utils"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	var store storage.Store
	switch cfg.StorageDriver {
	case "b2":
		store, err = storage.NewB2Store(context.Background(), cfg.B2AccountID, cfg.B2AppKey, cfg.B2Bucket)
		if err != nil {
			log.Fatalf("B2 storage init failed: %v", err)
		}
	default:
		store, err = storage.NewDiskStore(cfg.UploadDir, cfg.UploadBaseURL)
		if err != nil {
			log.Fatalf("Local storage init failed: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	gate := access.NewGate(db, rdb)
	mailer := utils.NewMailer(cfg.SendGridKey, cfg.EmailSender)

	authCtl := authController.NewAuthController(db, cfg)
	courseCtl := courseControllers.NewCourseController(db, gate)
	assignmentCtl := submittableController.NewSubmittableController(db, store, gate, mailer, models.KindAssignment, "Assignment", "assignments")
	activityCtl := submittableController.NewSubmittableController(db, store, gate, mailer, models.KindActivity, "Activity", "activities")
	announcementCtl := announcementController.NewAnnouncementController(db, store, gate)
	discussionCtl := discussionController.NewDiscussionController(db, store, gate)
	syllabusCtl := syllabusController.NewSyllabusController(db, store, gate)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Serve stored files directly when using the local disk driver
	if cfg.StorageDriver != "b2" {
		app.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	auth := middleware.JWTMiddleware(cfg.JWTKey)

	authRoutes.SetupAuthRoutes(app, auth, authCtl)
	courseRoutes.SetupCourseRoutes(app, auth, courseCtl)
	submittableRoutes.SetupSubmittableRoutes(app, "/assignment", auth, assignmentCtl)
	submittableRoutes.SetupSubmittableRoutes(app, "/activity", auth, activityCtl)
	announcementRoutes.SetupAnnouncementRoutes(app, auth, announcementCtl)
	discussionRoutes.SetupDiscussionRoutes(app, auth, discussionCtl)
	syllabusRoutes.SetupSyllabusRoutes(app, auth, syllabusCtl)

	if cfg.EnableSchedulers {
		utils.StartReminderScheduler(db, mailer)
		utils.StartWebhookNotifier(db, cfg.WebhookURL)
	}

	log.Printf("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
