// Package loanrepo persists loans and hydrates the referenced book and user
// on every read by joining across the three tables.
package loanrepo

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"biblioteca/model"
	"biblioteca/repository"
	"biblioteca/util/retry"
)

const table = "emprestimos"

// joined column set: loan row, then book row, then user row
var columns = []string{
	"e.id", "e.livro_id", "e.usuario_id",
	"e.data_emprestimo", "e.data_devolucao_prevista", "e.data_devolucao_efetiva", "e.status",
	"l.titulo", "l.autor", "l.ano_publicacao", "l.categoria",
	"u.matricula", "u.nome", "u.email", "u.telefone",
}

type Repo interface {
	Create(ctx context.Context, ln *model.Loan) error
	ByID(ctx context.Context, id int64) (*model.Loan, error)
	All(ctx context.Context) ([]model.Loan, error)
	ActiveByBookID(ctx context.Context, bookID int64) (*model.Loan, error)
	ByUserID(ctx context.Context, userID int64) ([]model.Loan, error)
	CountActiveByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, ln *model.Loan) error
	Delete(ctx context.Context, id int64) error
}

type repo struct {
	db      repository.Querier
	builder squirrel.StatementBuilderType
	retry   retry.Policy
}

func New(db repository.Querier) Repo {
	return &repo{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		retry:   retry.Default,
	}
}

// Create verifies both referenced rows exist before inserting, then rereads
// the loan so the caller gets the hydrated book and user back.
func (r *repo) Create(ctx context.Context, ln *model.Loan) error {
	if err := r.refExists(ctx, "livros", ln.BookID, "livro"); err != nil {
		return err
	}
	if err := r.refExists(ctx, "usuarios", ln.UserID, "usuario"); err != nil {
		return err
	}

	sqlStr, args, err := r.builder.Insert(table).
		Columns("livro_id", "usuario_id", "data_emprestimo", "data_devolucao_prevista", "data_devolucao_efetiva", "status").
		Values(ln.BookID, ln.UserID, ln.LoanedAt, ln.DueAt, ln.ReturnedAt, ln.Status).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert emprestimo: %w", err)
	}

	err = r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&ln.ID); err != nil {
			return fmt.Errorf("insert emprestimo: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	hydrated, err := r.ByID(ctx, ln.ID)
	if err != nil {
		return err
	}
	*ln = *hydrated
	return nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Loan, error) {
	return r.one(ctx, squirrel.Eq{"e.id": id})
}

func (r *repo) All(ctx context.Context) ([]model.Loan, error) {
	return r.list(ctx, r.base())
}

// ActiveByBookID returns the single EM_ANDAMENTO loan for a book, or
// repository.ErrNotFound when the book is not out.
func (r *repo) ActiveByBookID(ctx context.Context, bookID int64) (*model.Loan, error) {
	return r.one(ctx, squirrel.Eq{"e.livro_id": bookID, "e.status": model.LoanInProgress})
}

func (r *repo) ByUserID(ctx context.Context, userID int64) ([]model.Loan, error) {
	return r.list(ctx, r.base().Where(squirrel.Eq{"e.usuario_id": userID}))
}

// CountActiveByUser counts loans that hold against the user's limit.
func (r *repo) CountActiveByUser(ctx context.Context, userID int64) (int, error) {
	sqlStr, args, err := r.builder.Select("COUNT(*)").
		From(table).
		Where(squirrel.Eq{
			"usuario_id": userID,
			"status":     []model.LoanStatus{model.LoanInProgress, model.LoanOverdue},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count emprestimos: %w", err)
	}

	var n int
	err = r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
			return fmt.Errorf("count emprestimos: %w", err)
		}
		return nil
	})
	return n, err
}

func (r *repo) Update(ctx context.Context, ln *model.Loan) error {
	if ln.ID == 0 {
		return fmt.Errorf("update emprestimo: %w", repository.ErrNotFound)
	}

	sqlStr, args, err := r.builder.Update(table).
		Set("livro_id", ln.BookID).
		Set("usuario_id", ln.UserID).
		Set("data_emprestimo", ln.LoanedAt).
		Set("data_devolucao_prevista", ln.DueAt).
		Set("data_devolucao_efetiva", ln.ReturnedAt).
		Set("status", ln.Status).
		Where(squirrel.Eq{"id": ln.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update emprestimo: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("update emprestimo: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := r.builder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete emprestimo: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("delete emprestimo: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

func (r *repo) base() squirrel.SelectBuilder {
	return r.builder.Select(columns...).
		From(table + " e").
		Join("livros l ON l.id = e.livro_id").
		Join("usuarios u ON u.id = e.usuario_id").
		OrderBy("e.data_emprestimo", "e.id")
}

func (r *repo) refExists(ctx context.Context, refTable string, id int64, label string) error {
	sqlStr, args, err := r.builder.Select().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM "+refTable+" WHERE id = ?)", id)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build %s existence check: %w", label, err)
	}

	var exists bool
	err = r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&exists); err != nil {
			return fmt.Errorf("%s existence check: %w", label, err)
		}
		if !exists {
			return retry.Permanent(fmt.Errorf("%s %d: %w", label, id, repository.ErrNotFound))
		}
		return nil
	})
	return err
}

func (r *repo) one(ctx context.Context, pred any) (*model.Loan, error) {
	sqlStr, args, err := r.base().Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select emprestimo: %w", err)
	}

	var ln model.Loan
	err = r.retry.Do(ctx, func() error {
		if err := scanLoan(r.db.QueryRow(ctx, sqlStr, args...), &ln); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return retry.Permanent(repository.ErrNotFound)
			}
			return fmt.Errorf("scan emprestimo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ln, nil
}

func (r *repo) list(ctx context.Context, q squirrel.SelectBuilder) ([]model.Loan, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select emprestimos: %w", err)
	}

	var out []model.Loan
	err = r.retry.Do(ctx, func() error {
		rows, err := r.db.Query(ctx, sqlStr, args...)
		if err != nil {
			return fmt.Errorf("select emprestimos: %w", err)
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var ln model.Loan
			if err := scanLoan(rows, &ln); err != nil {
				return fmt.Errorf("scan emprestimo: %w", err)
			}
			out = append(out, ln)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanLoan(row pgx.Row, ln *model.Loan) error {
	var (
		b model.Book
		u model.User
	)
	if err := row.Scan(
		&ln.ID, &ln.BookID, &ln.UserID,
		&ln.LoanedAt, &ln.DueAt, &ln.ReturnedAt, &ln.Status,
		&b.Title, &b.Author, &b.Year, &b.Category,
		&u.Registration, &u.Name, &u.Email, &u.Phone,
	); err != nil {
		return err
	}
	b.ID = ln.BookID
	u.ID = ln.UserID
	ln.Book = &b
	ln.User = &u
	return nil
}
