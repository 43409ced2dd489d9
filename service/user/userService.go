package usersvc

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"biblioteca/model"
	"biblioteca/repository"
)

// MaxActiveLoans is the hard limit of simultaneous active loans per user.
const MaxActiveLoans = 3

var (
	ErrBadInput         = errors.New("all fields are required")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidMatricula = errors.New("matricula must be alphanumeric")
	ErrInvalidPhone     = errors.New("invalid telefone")
	ErrMatriculaTaken   = errors.New("matricula already registered")
	ErrEmailTaken       = errors.New("email already registered")
)

var (
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	matriculaRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	nonDigitRe  = regexp.MustCompile(`\D`)
)

type RegisterInput struct {
	Registration string
	Name         string
	Email        string
	Phone        string
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByRegistration(ctx context.Context, matricula string) (*model.User, error)
	All(ctx context.Context) ([]model.User, error)
	ByPartialName(ctx context.Context, name string) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
}

// LoanCounter is the slice of the loan repository the limit check needs.
type LoanCounter interface {
	CountActiveByUser(ctx context.Context, userID int64) (int, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByRegistration(ctx context.Context, matricula string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SearchByName(ctx context.Context, name string) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id int64) error
	CanBorrow(ctx context.Context, userID int64) (bool, error)
}

type service struct {
	r     Repo
	loans LoanCounter
}

func New(r Repo, loans LoanCounter) Service { return &service{r: r, loans: loans} }

func (s *service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if in.Registration == "" || in.Name == "" || in.Email == "" || in.Phone == "" {
		return nil, ErrBadInput
	}
	if !emailRe.MatchString(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !matriculaRe.MatchString(in.Registration) {
		return nil, ErrInvalidMatricula
	}
	phone := nonDigitRe.ReplaceAllString(in.Phone, "")
	if len(phone) < 8 || len(phone) > 11 {
		return nil, ErrInvalidPhone
	}

	u := &model.User{
		Registration: in.Registration,
		Name:         in.Name,
		Email:        strings.ToLower(in.Email),
		Phone:        phone,
	}
	if err := s.r.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	if !repository.IsUniqueViolation(err) {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "matricula") {
		return ErrMatriculaTaken
	}
	if strings.Contains(msg, "email") {
		return ErrEmailTaken
	}
	return ErrBadInput
}

func (s *service) ByID(ctx context.Context, id int64) (*model.User, error) { return s.r.ByID(ctx, id) }

func (s *service) ByRegistration(ctx context.Context, matricula string) (*model.User, error) {
	return s.r.ByRegistration(ctx, matricula)
}

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.r.All(ctx) }

func (s *service) SearchByName(ctx context.Context, name string) ([]model.User, error) {
	return s.r.ByPartialName(ctx, name)
}

func (s *service) Update(ctx context.Context, u *model.User) error {
	if u.Registration == "" || u.Name == "" || u.Email == "" || u.Phone == "" {
		return ErrBadInput
	}
	if !emailRe.MatchString(u.Email) {
		return ErrInvalidEmail
	}
	u.Email = strings.ToLower(u.Email)
	u.Phone = nonDigitRe.ReplaceAllString(u.Phone, "")
	if err := s.r.Update(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return derr
		}
		return err
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.r.Delete(ctx, id) }

// CanBorrow reports whether the user is under the active-loan limit.
func (s *service) CanBorrow(ctx context.Context, userID int64) (bool, error) {
	n, err := s.loans.CountActiveByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return n < MaxActiveLoans, nil
}
