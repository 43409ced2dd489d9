package book

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"biblioteca/model"
	"biblioteca/repository"
	booksvc "biblioteca/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /livros
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "json inválido"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "todos os campos são obrigatórios"})
	}

	b, err := h.Svc.Register(c.Request().Context(), req.Title, req.Author, req.Year, req.Category)
	if err != nil {
		return h.fail(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /livros  (?titulo= busca parcial, ?categoria= filtro)
func (h *Controller) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		rows []model.Book
		err  error
	)
	switch {
	case c.QueryParam("titulo") != "":
		rows, err = h.Svc.SearchByTitle(ctx, c.QueryParam("titulo"))
	case c.QueryParam("categoria") != "":
		rows, err = h.Svc.ByCategory(ctx, c.QueryParam("categoria"))
	default:
		rows, err = h.Svc.List(ctx)
	}
	if err != nil {
		return h.fail(c, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /livros/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	b, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book detail", err)
	}
	return c.JSON(http.StatusOK, b)
}

// GET /livros/:id/disponibilidade
func (h *Controller) Availability(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	available, err := h.Svc.IsAvailable(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "book availability", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"disponivel": available})
}

// GET /livros/disponiveis
func (h *Controller) Available(c echo.Context) error {
	rows, err := h.Svc.Available(c.Request().Context())
	if err != nil {
		return h.fail(c, "available books", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /livros/emprestados
func (h *Controller) Borrowed(c echo.Context) error {
	rows, err := h.Svc.Borrowed(c.Request().Context())
	if err != nil {
		return h.fail(c, "borrowed books", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PUT /livros/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "json inválido"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "todos os campos são obrigatórios"})
	}

	b := &model.Book{
		ID:       id,
		Title:    req.Title,
		Author:   req.Author,
		Year:     req.Year,
		Category: model.BookCategory(req.Category),
	}
	if err := h.Svc.Update(c.Request().Context(), b); err != nil {
		return h.fail(c, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /livros/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"mensagem": "livro não encontrado"})
	case errors.Is(err, booksvc.ErrBadInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "título e autor são obrigatórios"})
	case errors.Is(err, booksvc.ErrInvalidCategory):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "categoria inválida"})
	case errors.Is(err, booksvc.ErrTitleTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "livro já cadastrado"})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"mensagem": "erro interno"})
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
