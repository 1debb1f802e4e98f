package main

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Beachman4/properview/config"
	"github.com/Beachman4/properview/internal/agents"
	"github.com/Beachman4/properview/internal/api"
	"github.com/Beachman4/properview/internal/database"
	"github.com/Beachman4/properview/internal/geocoding"
	"github.com/Beachman4/properview/internal/inquiries"
	"github.com/Beachman4/properview/internal/properties"
	"github.com/Beachman4/properview/internal/viewcache"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		logger.Info("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}

	if err := database.SeedDefaultAgent(db); err != nil {
		logger.WithError(err).Fatal("Failed to seed default agent")
	}

	tokens, err := agents.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize token manager")
	}

	geocoder := geocoding.NewGeocoder(logger, cfg.Mapbox.AccessToken)

	// The cache lives for the whole process; its sweeper stops when the
	// server exits.
	views := viewcache.NewCache(cfg.Views.DedupTTL)

	propertySvc := properties.NewService(db, geocoder, views, logger, cfg.Search.RadiusMiles)
	inquirySvc := inquiries.NewService(db, logger)
	agentSvc := agents.NewService(db, tokens, logger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	handler := api.NewHandler(propertySvc, inquirySvc, agentSvc, logger,
		cfg.Search.PublicPageSize, cfg.Search.AgentPageSize)
	api.SetupRoutes(router, handler, api.AuthRequired(agentSvc, logger))

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
