package main

import (
	"context"
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/pageza/forkfeed/backend/config"
	"github.com/pageza/forkfeed/backend/internal/database"
	"github.com/pageza/forkfeed/backend/internal/service"
)

func main() {
	file := flag.String("file", "data/ingredients.json", "Path to a .json or .csv ingredients file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	created, err := service.NewIngredientService(db).ImportFile(context.Background(), *file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("ingredient import failed")
	}
	log.Info().Int("created", created).Str("file", *file).Msg("ingredient import complete")
}
