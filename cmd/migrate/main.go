package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pomodoro/zenpomo/internal/config"
	"pomodoro/zenpomo/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg := config.Load()
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer database.Close()

	if err := db.RunMigrations(database, db.MigrationsFS(cfg.MigrationsDir)); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	log.Info().Str("db", cfg.DBPath).Msg("migrations applied successfully")
}
