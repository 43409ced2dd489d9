package user

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"biblioteca/model"
	"biblioteca/repository"
	usersvc "biblioteca/service/user"
)

type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /usuarios
func (h *Controller) Create(c echo.Context) error {
	var req RegisterUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "json inválido"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "todos os campos são obrigatórios"})
	}

	u, err := h.Svc.Register(c.Request().Context(), usersvc.RegisterInput{
		Registration: req.Registration,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
	})
	if err != nil {
		return h.fail(c, "user create", err)
	}
	return c.JSON(http.StatusCreated, u)
}

// GET /usuarios  (?nome= busca parcial)
func (h *Controller) List(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		rows []model.User
		err  error
	)
	if name := c.QueryParam("nome"); name != "" {
		rows, err = h.Svc.SearchByName(ctx, name)
	} else {
		rows, err = h.Svc.List(ctx)
	}
	if err != nil {
		return h.fail(c, "user list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /usuarios/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	u, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, "user detail", err)
	}
	return c.JSON(http.StatusOK, u)
}

// GET /usuarios/matricula/:matricula
func (h *Controller) ByRegistration(c echo.Context) error {
	matricula := c.Param("matricula")
	if matricula == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "matrícula inválida"})
	}
	u, err := h.Svc.ByRegistration(c.Request().Context(), matricula)
	if err != nil {
		return h.fail(c, "user by matricula", err)
	}
	return c.JSON(http.StatusOK, u)
}

// PUT /usuarios/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	var req UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "json inválido"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "todos os campos são obrigatórios"})
	}

	u := &model.User{
		ID:           id,
		Registration: req.Registration,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := h.Svc.Update(c.Request().Context(), u); err != nil {
		return h.fail(c, "user update", err)
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /usuarios/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "id inválido"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(c, "user delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"mensagem": "usuário não encontrado"})
	case errors.Is(err, usersvc.ErrBadInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "todos os campos são obrigatórios"})
	case errors.Is(err, usersvc.ErrInvalidEmail):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "email inválido"})
	case errors.Is(err, usersvc.ErrInvalidMatricula):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "matrícula deve ser alfanumérica"})
	case errors.Is(err, usersvc.ErrInvalidPhone):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "telefone inválido"})
	case errors.Is(err, usersvc.ErrMatriculaTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "matrícula já cadastrada"})
	case errors.Is(err, usersvc.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"mensagem": "email já cadastrado"})
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
