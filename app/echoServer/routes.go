package echoServer

import (
	"biblioteca/app/echoServer/controller/book"
	"biblioteca/app/echoServer/controller/loan"
	"biblioteca/app/echoServer/controller/user"

	"github.com/labstack/echo/v4"
)

type C struct {
	Book *book.Controller
	User *user.Controller
	Loan *loan.Controller
}

func Register(e *echo.Echo, c C) {
	// Livros
	e.POST("/livros", c.Book.Create)
	e.GET("/livros", c.Book.List)
	e.GET("/livros/disponiveis", c.Book.Available)
	e.GET("/livros/emprestados", c.Book.Borrowed)
	e.GET("/livros/:id", c.Book.Detail)
	e.GET("/livros/:id/disponibilidade", c.Book.Availability)
	e.PUT("/livros/:id", c.Book.Update)
	e.DELETE("/livros/:id", c.Book.Delete)

	// Usuarios
	e.POST("/usuarios", c.User.Create)
	e.GET("/usuarios", c.User.List)
	e.GET("/usuarios/matricula/:matricula", c.User.ByRegistration)
	e.GET("/usuarios/:id", c.User.Detail)
	e.PUT("/usuarios/:id", c.User.Update)
	e.DELETE("/usuarios/:id", c.User.Delete)

	// Emprestimos
	e.POST("/emprestimos", c.Loan.Create)
	e.GET("/emprestimos", c.Loan.List)
	e.GET("/emprestimos/atrasados", c.Loan.Overdue)
	e.GET("/emprestimos/usuario/:id", c.Loan.ByUser)
	e.GET("/emprestimos/:id", c.Loan.Detail)
	e.PUT("/emprestimos/:id/devolucao", c.Loan.Return)
	e.PUT("/emprestimos/:id/renovacao", c.Loan.Renew)
	e.PUT("/emprestimos/:id/cancelamento", c.Loan.Cancel)
}
