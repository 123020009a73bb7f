package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"hostelms/internal/config"
	"hostelms/internal/database"
	"hostelms/internal/middleware"
	"hostelms/internal/modules/allocation"
	"hostelms/internal/modules/catalog"
	jwtsvc "hostelms/internal/pkg/jwt"
	"hostelms/internal/pkg/response"
	"hostelms/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	allocRepo := repository.NewAllocationRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	calc := allocation.NewCalculator(allocRepo, roomRepo)
	allocService := allocation.NewService(allocRepo, roomRepo, userRepo, calc)
	allocHandler := allocation.NewHandler(allocService)

	catalogService := catalog.NewService(roomRepo, allocRepo)
	catalogHandler := catalog.NewHandler(catalogService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst))

	api.GET("/health", func(c *gin.Context) {
		response.Success(c, 200, gin.H{"status": "ok"})
	})

	protected := api.Group("/")
	protected.Use(middleware.Auth(j))
	{
		catalogCache := cache.New(cfg.CatalogCache, 2*cfg.CatalogCache)
		catalogHandler.RegisterRoutes(
			protected,
			middleware.RequireStaff(),
			middleware.Cache(catalogCache, cfg.CatalogCache),
		)
		allocHandler.RegisterRoutes(protected)
	}

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
