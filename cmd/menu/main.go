package main

import (
	"context"
	"log/slog"
	"os"

	"biblioteca/app/menu"
	"biblioteca/config"
	bookrepo "biblioteca/repository/book"
	loanrepo "biblioteca/repository/loan"
	userrepo "biblioteca/repository/user"
	booksvc "biblioteca/service/book"
	loansvc "biblioteca/service/loan"
	usersvc "biblioteca/service/user"
	"biblioteca/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	br := bookrepo.New(db)
	ur := userrepo.New(db)
	lr := loanrepo.New(db)

	bs := booksvc.New(br)
	us := usersvc.New(ur, lr)
	ls := loansvc.New(lr, br, us)

	menu.New(bs, us, ls, os.Stdin, os.Stdout).Run(ctx)
}
