package bookrepo

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

const table = "livros"

var columns = []string{"id", "titulo", "autor", "ano_publicacao", "categoria"}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	ByID(ctx context.Context, id int64) (*model.Book, error)
	All(ctx context.Context) ([]model.Book, error)
	ByPartialTitle(ctx context.Context, title string) ([]model.Book, error)
	ByCategory(ctx context.Context, c model.BookCategory) ([]model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	Available(ctx context.Context) ([]model.Book, error)
	Borrowed(ctx context.Context) ([]model.Book, error)
	HasActiveLoan(ctx context.Context, bookID int64) (bool, error)
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

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	sqlStr, args, err := r.builder.Insert(table).
		Columns("titulo", "autor", "ano_publicacao", "categoria").
		Values(b.Title, b.Author, b.Year, b.Category).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert livro: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&b.ID); err != nil {
			return storeErr(fmt.Errorf("insert livro: %w", err))
		}
		return nil
	})
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	sqlStr, args, err := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select livro: %w", err)
	}

	var b model.Book
	err = r.retry.Do(ctx, func() error {
		return scanBook(r.db.QueryRow(ctx, sqlStr, args...), &b)
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) All(ctx context.Context) ([]model.Book, error) {
	q := r.builder.Select(columns...).From(table).OrderBy("titulo")
	return r.list(ctx, q)
}

func (r *repo) ByPartialTitle(ctx context.Context, title string) ([]model.Book, error) {
	q := r.builder.Select(columns...).
		From(table).
		Where(squirrel.ILike{"titulo": "%" + title + "%"}).
		OrderBy("titulo")
	return r.list(ctx, q)
}

func (r *repo) ByCategory(ctx context.Context, c model.BookCategory) ([]model.Book, error) {
	q := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"categoria": c}).
		OrderBy("titulo")
	return r.list(ctx, q)
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	if b.ID == 0 {
		return fmt.Errorf("update livro: %w", repository.ErrNotFound)
	}

	sqlStr, args, err := r.builder.Update(table).
		Set("titulo", b.Title).
		Set("autor", b.Author).
		Set("ano_publicacao", b.Year).
		Set("categoria", b.Category).
		Where(squirrel.Eq{"id": b.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update livro: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("update livro: %w", err))
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
		return fmt.Errorf("build delete livro: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("delete livro: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

// Available lists books without an EM_ANDAMENTO loan.
func (r *repo) Available(ctx context.Context) ([]model.Book, error) {
	q := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM emprestimos e WHERE e.livro_id = livros.id AND e.status = ?)",
			model.LoanInProgress,
		)).
		OrderBy("titulo")
	return r.list(ctx, q)
}

func (r *repo) Borrowed(ctx context.Context) ([]model.Book, error) {
	q := r.builder.Select(columns...).
		From(table).
		Where(squirrel.Expr(
			"EXISTS (SELECT 1 FROM emprestimos e WHERE e.livro_id = livros.id AND e.status = ?)",
			model.LoanInProgress,
		)).
		OrderBy("titulo")
	return r.list(ctx, q)
}

func (r *repo) HasActiveLoan(ctx context.Context, bookID int64) (bool, error) {
	sqlStr, args, err := r.builder.
		Select().
		Column(squirrel.Expr(
			"EXISTS (SELECT 1 FROM emprestimos e WHERE e.livro_id = ? AND e.status = ?)",
			bookID, model.LoanInProgress,
		)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build active loan check: %w", err)
	}

	var out bool
	err = r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&out); err != nil {
			return storeErr(fmt.Errorf("active loan check: %w", err))
		}
		return nil
	})
	return out, err
}

func (r *repo) list(ctx context.Context, q squirrel.SelectBuilder) ([]model.Book, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select livros: %w", err)
	}

	var out []model.Book
	err = r.retry.Do(ctx, func() error {
		rows, err := r.db.Query(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("select livros: %w", err))
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var b model.Book
			if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.Category); err != nil {
				return fmt.Errorf("scan livro: %w", err)
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanBook(row pgx.Row, b *model.Book) error {
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.Category); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return retry.Permanent(repository.ErrNotFound)
		}
		return fmt.Errorf("scan livro: %w", err)
	}
	return nil
}

// storeErr keeps constraint violations out of the retry budget.
func storeErr(err error) error {
	if repository.IsUniqueViolation(err) {
		return retry.Permanent(err)
	}
	return err
}
