// Package main biblioteca API.
//
// @title           Biblioteca API
// @version         1.0
// @description     library service (livros, usuarios, emprestimos).
// @BasePath        /
// @schemes         http
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"biblioteca/app/echoServer"
	bookctrl "biblioteca/app/echoServer/controller/book"
	loanctrl "biblioteca/app/echoServer/controller/loan"
	userctrl "biblioteca/app/echoServer/controller/user"
	"biblioteca/app/echoServer/validation"
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

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	br := bookrepo.New(db)
	ur := userrepo.New(db)
	lr := loanrepo.New(db)

	// services
	bs := booksvc.New(br)
	us := usersvc.New(ur, lr)
	ls := loansvc.New(lr, br, us)

	// controllers
	v := validator.New()
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status": "ok",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Book: bookC,
		User: userC,
		Loan: loanC,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
