package loansvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biblioteca/model"
	loanrepo "biblioteca/repository/loan"
)

// TermDays is the fixed loan term: due date = loan date + 15 days.
const TermDays = 15

// errors used by controllers

type ErrCode string

const (
	ErrLimitExceeded   ErrCode = "LIMIT_EXCEEDED"
	ErrAlreadyBorrowed ErrCode = "ALREADY_BORROWED"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrNotActive       ErrCode = "NOT_ACTIVE"
	ErrTerminal        ErrCode = "TERMINAL"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

// AsError wraps a code as an error value.
func AsError(c ErrCode) error { return codedError{code: c} }

// Code extracts the business-rule code, or "" for plain errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	Create(ctx context.Context, ln *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	All(ctx context.Context) ([]model.Loan, error)
	ActiveByBookID(ctx context.Context, bookID int64) (*model.Loan, error)
	ByUserID(ctx context.Context, userID int64) ([]model.Loan, error)
	Update(ctx context.Context, ln *model.Loan) error
}

var _ Repo = loanrepo.Repo(nil)

// Books is the slice of the book service borrowing needs.
type Books interface {
	ByID(ctx context.Context, id int64) (*model.Book, error)
	HasActiveLoan(ctx context.Context, bookID int64) (bool, error)
}

// Users is the slice of the user service borrowing needs.
type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	CanBorrow(ctx context.Context, userID int64) (bool, error)
}

type Service interface {
	Borrow(ctx context.Context, bookID, userID int64) (*model.Loan, error)
	Return(ctx context.Context, loanID int64) (*model.Loan, error)
	ReturnByBook(ctx context.Context, bookID int64) (*model.Loan, error)
	Renew(ctx context.Context, loanID int64) (*model.Loan, error)
	Cancel(ctx context.Context, loanID int64) (*model.Loan, error)
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	List(ctx context.Context) ([]model.Loan, error)
	ByUser(ctx context.Context, userID int64) ([]model.Loan, error)
	Overdue(ctx context.Context) ([]model.Loan, error)
}

type service struct {
	loans Repo
	books Books
	users Users
	now   func() time.Time
}

func New(loans Repo, books Books, users Users) Service {
	return &service{loans: loans, books: books, users: users, now: time.Now}
}

// Borrow checks book and user existence, the user's loan limit and the
// book's availability, then opens an EM_ANDAMENTO loan due in TermDays.
//
// The availability check and the insert are two separate store calls, so two
// simultaneous requests for the same book can both pass the check.
func (s *service) Borrow(ctx context.Context, bookID, userID int64) (*model.Loan, error) {
	book, err := s.books.ByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("livro %d: %w", bookID, err)
	}
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("usuario %d: %w", userID, err)
	}

	ok, err := s.users.CanBorrow(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, AsError(ErrLimitExceeded)
	}

	borrowed, err := s.books.HasActiveLoan(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if borrowed {
		return nil, AsError(ErrAlreadyBorrowed)
	}

	loanedAt := s.now()
	ln := &model.Loan{
		BookID:   book.ID,
		UserID:   user.ID,
		LoanedAt: loanedAt,
		DueAt:    loanedAt.AddDate(0, 0, TermDays),
		Status:   model.LoanInProgress,
	}
	if err := s.loans.Create(ctx, ln); err != nil {
		return nil, fmt.Errorf("save emprestimo: %w", err)
	}
	return ln, nil
}

func (s *service) Return(ctx context.Context, loanID int64) (*model.Loan, error) {
	ln, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	switch ln.Status {
	case model.LoanReturned:
		return nil, AsError(ErrAlreadyReturned)
	case model.LoanCancelled:
		return nil, AsError(ErrNotActive)
	}

	ln.Return(s.now())
	if err := s.loans.Update(ctx, ln); err != nil {
		return nil, err
	}
	return ln, nil
}

// ReturnByBook closes the book's EM_ANDAMENTO loan, looked up by book id.
func (s *service) ReturnByBook(ctx context.Context, bookID int64) (*model.Loan, error) {
	ln, err := s.loans.ActiveByBookID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.Return(ctx, ln.ID)
}

// Renew resets any non-terminal loan to EM_ANDAMENTO with a fresh term.
func (s *service) Renew(ctx context.Context, loanID int64) (*model.Loan, error) {
	ln, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if ln.Status.Terminal() {
		return nil, AsError(ErrTerminal)
	}

	ln.Renew(s.now().AddDate(0, 0, TermDays))
	if err := s.loans.Update(ctx, ln); err != nil {
		return nil, err
	}
	return ln, nil
}

func (s *service) Cancel(ctx context.Context, loanID int64) (*model.Loan, error) {
	ln, err := s.loans.ByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if ln.Status.Terminal() {
		return nil, AsError(ErrNotActive)
	}

	ln.Cancel()
	if err := s.loans.Update(ctx, ln); err != nil {
		return nil, err
	}
	return ln, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	return s.loans.ByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]model.Loan, error) {
	return s.loans.All(ctx)
}

func (s *service) ByUser(ctx context.Context, userID int64) ([]model.Loan, error) {
	return s.loans.ByUserID(ctx, userID)
}

// Overdue derives lateness at read time: active loans whose due date has
// passed, reported with status ATRASADO. Nothing is written back.
func (s *service) Overdue(ctx context.Context) ([]model.Loan, error) {
	all, err := s.loans.All(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var out []model.Loan
	for _, ln := range all {
		ln.RefreshStatus(now)
		if ln.Status == model.LoanOverdue {
			out = append(out, ln)
		}
	}
	return out, nil
}
