package loansvc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"biblioteca/model"
	"biblioteca/repository"
)

type loansMock struct {
	createFn func(ctx context.Context, ln *model.Loan) error
	byIDFn   func(ctx context.Context, id int64) (*model.Loan, error)
	allFn    func(ctx context.Context) ([]model.Loan, error)
	activeFn func(ctx context.Context, bookID int64) (*model.Loan, error)
	byUserFn func(ctx context.Context, userID int64) ([]model.Loan, error)
	updateFn func(ctx context.Context, ln *model.Loan) error
}

func (m *loansMock) Create(ctx context.Context, ln *model.Loan) error { return m.createFn(ctx, ln) }
func (m *loansMock) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	return m.byIDFn(ctx, id)
}
func (m *loansMock) All(ctx context.Context) ([]model.Loan, error) { return m.allFn(ctx) }
func (m *loansMock) ActiveByBookID(ctx context.Context, bookID int64) (*model.Loan, error) {
	return m.activeFn(ctx, bookID)
}
func (m *loansMock) ByUserID(ctx context.Context, userID int64) ([]model.Loan, error) {
	return m.byUserFn(ctx, userID)
}
func (m *loansMock) Update(ctx context.Context, ln *model.Loan) error { return m.updateFn(ctx, ln) }

type booksMock struct {
	byIDFn   func(ctx context.Context, id int64) (*model.Book, error)
	activeFn func(ctx context.Context, bookID int64) (bool, error)
}

func (m *booksMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *booksMock) HasActiveLoan(ctx context.Context, bookID int64) (bool, error) {
	return m.activeFn(ctx, bookID)
}

type usersMock struct {
	byIDFn      func(ctx context.Context, id int64) (*model.User, error)
	canBorrowFn func(ctx context.Context, userID int64) (bool, error)
}

func (m *usersMock) ByID(ctx context.Context, id int64) (*model.User, error) {
	return m.byIDFn(ctx, id)
}
func (m *usersMock) CanBorrow(ctx context.Context, userID int64) (bool, error) {
	return m.canBorrowFn(ctx, userID)
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
}

func newService(loans *loansMock, books *booksMock, users *usersMock) *service {
	s := New(loans, books, users).(*service)
	s.now = fixedNow
	return s
}

func happyBooks() *booksMock {
	return &booksMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, Title: "O Hobbit", Author: "Tolkien", Year: 1937, Category: model.CategoryFantasy}, nil
		},
		activeFn: func(ctx context.Context, bookID int64) (bool, error) { return false, nil },
	}
}

func happyUsers() *usersMock {
	return &usersMock{
		byIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Registration: "M1", Name: "Ana", Email: "a@x.com", Phone: "11999999999"}, nil
		},
		canBorrowFn: func(ctx context.Context, userID int64) (bool, error) { return true, nil },
	}
}

func TestBorrow_Success(t *testing.T) {
	var saved *model.Loan
	loans := &loansMock{
		createFn: func(ctx context.Context, ln *model.Loan) error {
			ln.ID = 7
			saved = ln
			return nil
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.Borrow(context.Background(), 3, 5)
	require.NoError(t, err)
	require.Same(t, saved, ln)
	require.Equal(t, int64(7), ln.ID)
	require.Equal(t, model.LoanInProgress, ln.Status)
	require.Nil(t, ln.ReturnedAt)
	require.Equal(t, fixedNow(), ln.LoanedAt)
	require.Equal(t, fixedNow().AddDate(0, 0, TermDays), ln.DueAt)
}

func TestBorrow_BookNotFound(t *testing.T) {
	books := happyBooks()
	books.byIDFn = func(ctx context.Context, id int64) (*model.Book, error) {
		return nil, repository.ErrNotFound
	}
	s := newService(&loansMock{}, books, happyUsers())

	_, err := s.Borrow(context.Background(), 99, 5)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestBorrow_UserNotFound(t *testing.T) {
	users := happyUsers()
	users.byIDFn = func(ctx context.Context, id int64) (*model.User, error) {
		return nil, repository.ErrNotFound
	}
	s := newService(&loansMock{}, happyBooks(), users)

	_, err := s.Borrow(context.Background(), 3, 99)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBorrow_LimitExceeded(t *testing.T) {
	users := happyUsers()
	users.canBorrowFn = func(ctx context.Context, userID int64) (bool, error) { return false, nil }
	s := newService(&loansMock{}, happyBooks(), users)

	_, err := s.Borrow(context.Background(), 3, 5)
	require.Equal(t, ErrLimitExceeded, Code(err))
}

func TestBorrow_AlreadyBorrowed(t *testing.T) {
	books := happyBooks()
	books.activeFn = func(ctx context.Context, bookID int64) (bool, error) { return true, nil }
	s := newService(&loansMock{}, books, happyUsers())

	_, err := s.Borrow(context.Background(), 3, 5)
	require.Equal(t, ErrAlreadyBorrowed, Code(err))
}

func TestBorrow_SaveError(t *testing.T) {
	loans := &loansMock{
		createFn: func(ctx context.Context, ln *model.Loan) error { return errors.New("db down") },
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.Borrow(context.Background(), 3, 5)
	require.Error(t, err)
	require.Equal(t, ErrCode(""), Code(err))
}

func TestReturn_Success(t *testing.T) {
	stored := &model.Loan{
		ID:       1,
		Status:   model.LoanInProgress,
		LoanedAt: fixedNow().AddDate(0, 0, -3),
		DueAt:    fixedNow().AddDate(0, 0, 12),
	}
	var updated *model.Loan
	loans := &loansMock{
		byIDFn:   func(ctx context.Context, id int64) (*model.Loan, error) { return stored, nil },
		updateFn: func(ctx context.Context, ln *model.Loan) error { updated = ln; return nil },
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.Return(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, ln.Status)
	require.NotNil(t, ln.ReturnedAt)
	require.Equal(t, fixedNow(), *ln.ReturnedAt)
	require.Same(t, updated, ln)
}

func TestReturn_NotFound(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return nil, repository.ErrNotFound
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.Return(context.Background(), 404)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReturn_AlreadyReturned(t *testing.T) {
	at := fixedNow().AddDate(0, 0, -1)
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanReturned, ReturnedAt: &at}, nil
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.Return(context.Background(), 1)
	require.Equal(t, ErrAlreadyReturned, Code(err))
}

func TestReturn_Cancelled(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanCancelled}, nil
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.Return(context.Background(), 1)
	require.Equal(t, ErrNotActive, Code(err))
}

func TestReturn_FromOverdue(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanOverdue, DueAt: fixedNow().AddDate(0, 0, -2)}, nil
		},
		updateFn: func(ctx context.Context, ln *model.Loan) error { return nil },
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.Return(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, ln.Status)
}

func TestRenew_ResetsOverdueLoan(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanOverdue, DueAt: fixedNow().AddDate(0, 0, -2)}, nil
		},
		updateFn: func(ctx context.Context, ln *model.Loan) error { return nil },
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.Renew(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanInProgress, ln.Status)
	require.Equal(t, fixedNow().AddDate(0, 0, TermDays), ln.DueAt)
}

func TestRenew_TerminalRejected(t *testing.T) {
	for _, status := range []model.LoanStatus{model.LoanReturned, model.LoanCancelled} {
		loans := &loansMock{
			byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
				return &model.Loan{ID: 1, Status: status}, nil
			},
		}
		s := newService(loans, happyBooks(), happyUsers())

		_, err := s.Renew(context.Background(), 1)
		require.Equal(t, ErrTerminal, Code(err), "status %s", status)
	}
}

func TestCancel_ActiveLoan(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanInProgress}, nil
		},
		updateFn: func(ctx context.Context, ln *model.Loan) error { return nil },
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.Cancel(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanCancelled, ln.Status)
}

func TestCancel_TerminalRejected(t *testing.T) {
	loans := &loansMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			return &model.Loan{ID: 1, Status: model.LoanReturned}, nil
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.Cancel(context.Background(), 1)
	require.Equal(t, ErrNotActive, Code(err))
}

func TestOverdue_DerivedAtReadTime(t *testing.T) {
	now := fixedNow()
	loans := &loansMock{
		allFn: func(ctx context.Context) ([]model.Loan, error) {
			return []model.Loan{
				{ID: 1, Status: model.LoanInProgress, DueAt: now.AddDate(0, 0, -1)}, // late
				{ID: 2, Status: model.LoanInProgress, DueAt: now.AddDate(0, 0, 1)},  // on time
				{ID: 3, Status: model.LoanInProgress, DueAt: now},                   // due right now, not late
				{ID: 4, Status: model.LoanReturned, DueAt: now.AddDate(0, 0, -9)},   // closed
				{ID: 5, Status: model.LoanCancelled, DueAt: now.AddDate(0, 0, -9)},  // closed
				{ID: 6, Status: model.LoanOverdue, DueAt: now.AddDate(0, 0, -3)},    // already tagged
			}, nil
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	out, err := s.Overdue(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(1), out[0].ID)
	require.Equal(t, model.LoanOverdue, out[0].Status)
	require.Equal(t, int64(6), out[1].ID)
}

// Full lifecycle from the catalog scenario: borrow, duplicate rejected,
// return, borrow again.
func TestBorrowReturnBorrowScenario(t *testing.T) {
	var (
		store  []*model.Loan
		nextID int64
	)
	loans := &loansMock{
		createFn: func(ctx context.Context, ln *model.Loan) error {
			nextID++
			ln.ID = nextID
			cp := *ln
			store = append(store, &cp)
			return nil
		},
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			for _, ln := range store {
				if ln.ID == id {
					return ln, nil
				}
			}
			return nil, repository.ErrNotFound
		},
		updateFn: func(ctx context.Context, ln *model.Loan) error {
			for i, cur := range store {
				if cur.ID == ln.ID {
					store[i] = ln
					return nil
				}
			}
			return repository.ErrNotFound
		},
	}
	books := happyBooks()
	books.activeFn = func(ctx context.Context, bookID int64) (bool, error) {
		for _, ln := range store {
			if ln.BookID == bookID && ln.Status == model.LoanInProgress {
				return true, nil
			}
		}
		return false, nil
	}
	s := newService(loans, books, happyUsers())
	ctx := context.Background()

	first, err := s.Borrow(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanInProgress, first.Status)
	require.Equal(t, first.LoanedAt.AddDate(0, 0, 15), first.DueAt)

	_, err = s.Borrow(ctx, 1, 1)
	require.Equal(t, ErrAlreadyBorrowed, Code(err))

	returned, err := s.Return(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, returned.Status)

	second, err := s.Borrow(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, model.LoanInProgress, second.Status)
	require.NotEqual(t, first.ID, second.ID)
}

func TestReturnByBook(t *testing.T) {
	active := &model.Loan{
		ID:       7,
		BookID:   3,
		UserID:   5,
		LoanedAt: fixedNow().AddDate(0, 0, -2),
		DueAt:    fixedNow().AddDate(0, 0, 13),
		Status:   model.LoanInProgress,
	}
	loans := &loansMock{
		activeFn: func(ctx context.Context, bookID int64) (*model.Loan, error) {
			require.Equal(t, int64(3), bookID)
			return active, nil
		},
		byIDFn: func(ctx context.Context, id int64) (*model.Loan, error) {
			require.Equal(t, int64(7), id)
			return active, nil
		},
		updateFn: func(ctx context.Context, ln *model.Loan) error { return nil },
	}
	s := newService(loans, happyBooks(), happyUsers())

	ln, err := s.ReturnByBook(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, ln.Status)
	require.NotNil(t, ln.ReturnedAt)
	require.Equal(t, fixedNow(), *ln.ReturnedAt)
}

func TestReturnByBook_NotOut(t *testing.T) {
	loans := &loansMock{
		activeFn: func(ctx context.Context, bookID int64) (*model.Loan, error) {
			return nil, repository.ErrNotFound
		},
	}
	s := newService(loans, happyBooks(), happyUsers())

	_, err := s.ReturnByBook(context.Background(), 3)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
