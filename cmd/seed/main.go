package main

import (
	"context"
	"log/slog"
	"os"

	"biblioteca/config"
	bookrepo "biblioteca/repository/book"
	userrepo "biblioteca/repository/user"
	"biblioteca/seed"
	"biblioteca/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	loader := &seed.Loader{
		Books: bookrepo.New(db),
		Users: userrepo.New(db),
		Log:   log,
	}
	if err := loader.Run(ctx); err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}
}
