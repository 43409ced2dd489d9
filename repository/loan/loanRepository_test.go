package loanrepo

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/require"

	"biblioteca/model"
	"biblioteca/repository"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var loanCols = []string{
	"id", "livro_id", "usuario_id",
	"data_emprestimo", "data_devolucao_prevista", "data_devolucao_efetiva", "status",
	"titulo", "autor", "ano_publicacao", "categoria",
	"matricula", "nome", "email", "telefone",
}

func loanRow(rows *pgxmock.Rows, id int64, loanedAt, dueAt time.Time, returnedAt *time.Time, status model.LoanStatus) *pgxmock.Rows {
	return rows.AddRow(
		id, int64(11), int64(3),
		loanedAt, dueAt, returnedAt, status,
		"O Hobbit", "J.R.R. Tolkien", 1937, model.CategoryFantasy,
		"20250003", "Larissa Araújo", "bryanda-cruz@ig.com.br", "08118868023",
	)
}

func TestCreate_HydratesBookAndUser(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	loanedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	dueAt := loanedAt.AddDate(0, 0, 15)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM livros`).
		WithArgs(int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM usuarios`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO emprestimos`).
		WithArgs(int64(11), int64(3), loanedAt, dueAt, (*time.Time)(nil), model.LoanInProgress).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(77)))
	mock.ExpectQuery(`SELECT e\.id, .+ FROM emprestimos e JOIN livros l ON l\.id = e\.livro_id JOIN usuarios u`).
		WithArgs(int64(77)).
		WillReturnRows(loanRow(pgxmock.NewRows(loanCols), 77, loanedAt, dueAt, nil, model.LoanInProgress))

	ln := &model.Loan{
		BookID:   11,
		UserID:   3,
		LoanedAt: loanedAt,
		DueAt:    dueAt,
		Status:   model.LoanInProgress,
	}
	require.NoError(t, r.Create(context.Background(), ln))
	require.Equal(t, int64(77), ln.ID)
	require.NotNil(t, ln.Book)
	require.Equal(t, "O Hobbit", ln.Book.Title)
	require.Equal(t, int64(11), ln.Book.ID)
	require.NotNil(t, ln.User)
	require.Equal(t, "Larissa Araújo", ln.User.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_MissingBook(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM livros`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ln := &model.Loan{BookID: 99, UserID: 3, Status: model.LoanInProgress}
	err := r.Create(context.Background(), ln)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Contains(t, err.Error(), "livro 99")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveByBookID(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	loanedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	dueAt := loanedAt.AddDate(0, 0, 15)

	mock.ExpectQuery(`SELECT e\.id, .+ WHERE e\.livro_id = \$1 AND e\.status = \$2`).
		WithArgs(int64(11), model.LoanInProgress).
		WillReturnRows(loanRow(pgxmock.NewRows(loanCols), 77, loanedAt, dueAt, nil, model.LoanInProgress))

	ln, err := r.ActiveByBookID(context.Background(), 11)
	require.NoError(t, err)
	require.Equal(t, int64(77), ln.ID)
	require.Equal(t, model.LoanInProgress, ln.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveByBookID_NotOut(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	mock.ExpectQuery(`SELECT e\.id, .+ FROM emprestimos e`).
		WithArgs(int64(11), model.LoanInProgress).
		WillReturnError(pgx.ErrNoRows)

	_, err := r.ActiveByBookID(context.Background(), 11)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountActiveByUser(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM emprestimos`).
		WithArgs(model.LoanInProgress, model.LoanOverdue, int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	n, err := r.CountActiveByUser(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestByUserID(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	loanedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	dueAt := loanedAt.AddDate(0, 0, 15)
	returnedAt := loanedAt.AddDate(0, 0, 7)

	rows := pgxmock.NewRows(loanCols)
	rows = loanRow(rows, 70, loanedAt, dueAt, &returnedAt, model.LoanReturned)
	rows = loanRow(rows, 77, loanedAt, dueAt, nil, model.LoanInProgress)

	mock.ExpectQuery(`SELECT e\.id, .+ WHERE e\.usuario_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	out, err := r.ByUserID(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, model.LoanReturned, out[0].Status)
	require.NotNil(t, out[0].ReturnedAt)
	require.Equal(t, returnedAt, *out[0].ReturnedAt)
	require.Nil(t, out[1].ReturnedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MissingRow(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	loanedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE emprestimos SET`).
		WithArgs(int64(11), int64(3), loanedAt, loanedAt.AddDate(0, 0, 15), (*time.Time)(nil), model.LoanInProgress, int64(42)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := r.Update(context.Background(), &model.Loan{
		ID:       42,
		BookID:   11,
		UserID:   3,
		LoanedAt: loanedAt,
		DueAt:    loanedAt.AddDate(0, 0, 15),
		Status:   model.LoanInProgress,
	})
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	mock := newMock(t)
	r := New(mock)

	mock.ExpectExec(`DELETE FROM emprestimos WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, r.Delete(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}
