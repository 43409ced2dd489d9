package loan

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"biblioteca/repository"
	loansvc "biblioteca/service/loan"
)

type Controller struct {
	Svc loansvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /emprestimos
func (h *Controller) Create(c echo.Context) error {
	var req CreateLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "json inválido"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "livro_id e usuario_id são obrigatórios"})
	}

	ln, err := h.Svc.Borrow(c.Request().Context(), req.BookID, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"mensagem": "livro ou usuário não encontrado"})
		}
		return h.fail(c, "loan create", err)
	}
	return c.JSON(http.StatusCreated, ln)
}

// PUT /emprestimos/:id/devolucao
func (h *Controller) Return(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	ln, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan return", err)
	}
	return c.JSON(http.StatusOK, ln)
}

// PUT /emprestimos/:id/renovacao
func (h *Controller) Renew(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	ln, err := h.Svc.Renew(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan renew", err)
	}
	return c.JSON(http.StatusOK, ln)
}

// PUT /emprestimos/:id/cancelamento
func (h *Controller) Cancel(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	ln, err := h.Svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan cancel", err)
	}
	return c.JSON(http.StatusOK, ln)
}

// GET /emprestimos
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return h.fail(c, "loan list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /emprestimos/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	ln, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loan detail", err)
	}
	return c.JSON(http.StatusOK, ln)
}

// GET /emprestimos/atrasados
func (h *Controller) Overdue(c echo.Context) error {
	rows, err := h.Svc.Overdue(c.Request().Context())
	if err != nil {
		return h.fail(c, "overdue loans", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /emprestimos/usuario/:id
func (h *Controller) ByUser(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	rows, err := h.Svc.ByUser(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "loans by user", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch loansvc.Code(err) {
	case loansvc.ErrLimitExceeded:
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "usuário atingiu o limite de empréstimos ativos"})
	case loansvc.ErrAlreadyBorrowed:
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "este livro já está emprestado"})
	case loansvc.ErrAlreadyReturned:
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "empréstimo já devolvido"})
	case loansvc.ErrNotActive:
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "empréstimo não está ativo"})
	case loansvc.ErrTerminal:
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "empréstimo encerrado não pode ser renovado"})
	}
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"mensagem": "empréstimo não encontrado"})
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
