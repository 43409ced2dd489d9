package userrepo

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

const table = "usuarios"

var columns = []string{"id", "matricula", "nome", "email", "telefone"}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id int64) (*model.User, error)
	ByRegistration(ctx context.Context, matricula string) (*model.User, error)
	All(ctx context.Context) ([]model.User, error)
	ByPartialName(ctx context.Context, name string) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
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

func (r *repo) Create(ctx context.Context, u *model.User) error {
	sqlStr, args, err := r.builder.Insert(table).
		Columns("matricula", "nome", "email", "telefone").
		Values(u.Registration, u.Name, u.Email, u.Phone).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert usuario: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&u.ID); err != nil {
			return storeErr(fmt.Errorf("insert usuario: %w", err))
		}
		return nil
	})
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return r.one(ctx, squirrel.Eq{"id": id})
}

func (r *repo) ByRegistration(ctx context.Context, matricula string) (*model.User, error) {
	return r.one(ctx, squirrel.Eq{"matricula": matricula})
}

func (r *repo) All(ctx context.Context) ([]model.User, error) {
	q := r.builder.Select(columns...).From(table).OrderBy("nome")
	return r.list(ctx, q)
}

func (r *repo) ByPartialName(ctx context.Context, name string) ([]model.User, error) {
	q := r.builder.Select(columns...).
		From(table).
		Where(squirrel.ILike{"nome": "%" + name + "%"}).
		OrderBy("nome")
	return r.list(ctx, q)
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	if u.ID == 0 {
		return fmt.Errorf("update usuario: %w", repository.ErrNotFound)
	}

	sqlStr, args, err := r.builder.Update(table).
		Set("matricula", u.Registration).
		Set("nome", u.Name).
		Set("email", u.Email).
		Set("telefone", u.Phone).
		Where(squirrel.Eq{"id": u.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update usuario: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("update usuario: %w", err))
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
		return fmt.Errorf("build delete usuario: %w", err)
	}

	return r.retry.Do(ctx, func() error {
		tag, err := r.db.Exec(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("delete usuario: %w", err))
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(repository.ErrNotFound)
		}
		return nil
	})
}

func (r *repo) one(ctx context.Context, pred any) (*model.User, error) {
	sqlStr, args, err := r.builder.Select(columns...).
		From(table).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select usuario: %w", err)
	}

	var u model.User
	err = r.retry.Do(ctx, func() error {
		err := r.db.QueryRow(ctx, sqlStr, args...).
			Scan(&u.ID, &u.Registration, &u.Name, &u.Email, &u.Phone)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return retry.Permanent(repository.ErrNotFound)
			}
			return fmt.Errorf("scan usuario: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) list(ctx context.Context, q squirrel.SelectBuilder) ([]model.User, error) {
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select usuarios: %w", err)
	}

	var out []model.User
	err = r.retry.Do(ctx, func() error {
		rows, err := r.db.Query(ctx, sqlStr, args...)
		if err != nil {
			return storeErr(fmt.Errorf("select usuarios: %w", err))
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var u model.User
			if err := rows.Scan(&u.ID, &u.Registration, &u.Name, &u.Email, &u.Phone); err != nil {
				return fmt.Errorf("scan usuario: %w", err)
			}
			out = append(out, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func storeErr(err error) error {
	if repository.IsUniqueViolation(err) {
		return retry.Permanent(err)
	}
	return err
}
