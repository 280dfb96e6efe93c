package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studiobooking/internal/calendar"
	"studiobooking/internal/config"
	"studiobooking/internal/database"
	"studiobooking/internal/email"
	"studiobooking/internal/invoicing"
	"studiobooking/internal/middleware"
	"studiobooking/internal/modules/admin"
	"studiobooking/internal/modules/auth"
	"studiobooking/internal/modules/booking"
	"studiobooking/internal/modules/catalog"
	"studiobooking/internal/modules/feed"
	"studiobooking/internal/modules/lifecycle"
	jwtsvc "studiobooking/internal/pkg/jwt"
	"studiobooking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	invoicer := invoicing.New(invoicing.Config{
		BaseURL: cfg.Invoicing.BaseURL,
		APIKey:  cfg.Invoicing.APIKey,
	})
	mailer := email.New(email.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		From:      cfg.SMTP.From,
		AdminAddr: cfg.SMTP.AdminAddr,
	})
	calendarClient := calendar.New(calendar.Config{
		BaseURL:    cfg.Calendar.BaseURL,
		APIKey:     cfg.Calendar.APIKey,
		CalendarID: cfg.Calendar.CalendarID,
	})

	lifecycleService := lifecycle.NewService(
		bookingRepo,
		policyRepo,
		invoicer,
		mailer,
		calendarClient,
		cfg.StudioTimezone,
		cfg.Invoicing.FeeDueDays,
		log.Printf,
	)

	hub := feed.NewHub()
	defer hub.Close()
	feedHandler := feed.NewHandler(hub, j)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	bookingService := booking.NewService(bookingRepo, catalogRepo, lifecycleService, cfg.StudioTimezone)
	bookingHandler := booking.NewHandler(bookingService)

	catalogService := catalog.NewService(catalogRepo, bookingRepo, cfg.StudioTimezone)
	catalogHandler := catalog.NewHandler(catalogService)

	adminService := admin.NewService(bookingRepo, lifecycleService, policyRepo, catalogRepo, hub, log.Printf)
	adminHandler := admin.NewHandler(adminService)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), middleware.ErrorLogger(), middleware.CORS())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws/feed", feedHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)
		catalogHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			adminHandler.RegisterRoutes(adminGroup)
		}
	}

	log.Printf("listening on %s (env=%s, tz=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.StudioTimezone)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
