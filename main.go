// main.go
//
// Entry point for the word search server.
// Responsibilities:
//   - Load .env and configure zerolog from LOG_LEVEL.
//   - Load the puzzle catalog (PUZZLES_FILE or the embedded default).
//   - Open SQLite (DB_PATH) and apply embedded migrations.
//   - Serve HTTP on PORT.

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordsearch/assets"
	"github.com/robalobadob/wordsearch/internal/httpserver"
	"github.com/robalobadob/wordsearch/internal/puzzles"
	"github.com/robalobadob/wordsearch/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := puzzles.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load puzzle catalog")
	}
	stats := puzzles.Default().Stats()
	log.Info().Interface("levels", stats).Msg("puzzle catalog loaded")

	db, err := store.OpenSQLite(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db, assets.FS, assets.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(store.NewMemoryStore(), db, puzzles.Default())
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting wordsearch server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
