package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pageza/forkfeed/backend/config"
	"github.com/pageza/forkfeed/backend/internal/api"
	"github.com/pageza/forkfeed/backend/internal/database"
	"github.com/pageza/forkfeed/backend/internal/router"
	"github.com/pageza/forkfeed/backend/internal/server"
	"github.com/pageza/forkfeed/backend/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if os.Getenv("AUTO_MIGRATE") == "true" {
		if err := database.RunMigrations(db, "migrations"); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	s3cfg, err := config.NewS3Config(context.Background(), cfg.S3Bucket)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}
	storage := service.NewS3Storage(s3cfg)

	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db, storage)
	recipeService := service.NewRecipeService(db)
	relationService := service.NewRelationService(db)
	ingredientService := service.NewIngredientService(db)
	shoppingListService := service.NewShoppingListService(db)
	shortLinkService := service.NewShortLinkService(db, redisClient, cfg.BaseURL)

	engine := router.SetupRouter(router.Deps{
		AuthHandler: api.NewAuthHandler(authService, userService),
		RecipeHandler: api.NewRecipeHandler(
			recipeService,
			relationService,
			shoppingListService,
			shortLinkService,
			storage,
			cfg.BaseURL,
		),
		UserHandler:       api.NewUserHandler(userService, relationService),
		IngredientHandler: api.NewIngredientHandler(ingredientService),
		ShortLinkHandler:  api.NewShortLinkHandler(shortLinkService),
		TokenValidator:    authService,
		Redis:             redisClient,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server shutdown error")
	}
	log.Info().Msg("server stopped")
}
