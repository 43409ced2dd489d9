package booksvc

import (
	"context"
	"errors"

	"biblioteca/model"
	"biblioteca/repository"
	bookrepo "biblioteca/repository/book"
)

var (
	ErrBadInput        = errors.New("titulo e autor are required")
	ErrInvalidCategory = errors.New("invalid categoria")
	ErrTitleTaken      = errors.New("livro already registered")
)

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

var _ Repo = bookrepo.Repo(nil)

type Service interface {
	Register(ctx context.Context, title, author string, year int, category string) (*model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	SearchByTitle(ctx context.Context, title string) ([]model.Book, error)
	ByCategory(ctx context.Context, category string) ([]model.Book, error)
	Available(ctx context.Context) ([]model.Book, error)
	Borrowed(ctx context.Context) ([]model.Book, error)
	IsAvailable(ctx context.Context, id int64) (bool, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Register(ctx context.Context, title, author string, year int, category string) (*model.Book, error) {
	if title == "" || author == "" {
		return nil, ErrBadInput
	}
	cat, ok := model.ParseBookCategory(category)
	if !ok {
		return nil, ErrInvalidCategory
	}

	b := &model.Book{Title: title, Author: author, Year: year, Category: cat}
	if err := s.r.Create(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrTitleTaken
		}
		return nil, err
	}
	return b, nil
}

func (s *service) ByID(ctx context.Context, id int64) (*model.Book, error) { return s.r.ByID(ctx, id) }
func (s *service) List(ctx context.Context) ([]model.Book, error)         { return s.r.All(ctx) }

func (s *service) SearchByTitle(ctx context.Context, title string) ([]model.Book, error) {
	return s.r.ByPartialTitle(ctx, title)
}

func (s *service) ByCategory(ctx context.Context, category string) ([]model.Book, error) {
	cat, ok := model.ParseBookCategory(category)
	if !ok {
		return nil, ErrInvalidCategory
	}
	return s.r.ByCategory(ctx, cat)
}

func (s *service) Available(ctx context.Context) ([]model.Book, error) { return s.r.Available(ctx) }
func (s *service) Borrowed(ctx context.Context) ([]model.Book, error)  { return s.r.Borrowed(ctx) }

// IsAvailable reports whether the book exists and has no active loan.
func (s *service) IsAvailable(ctx context.Context, id int64) (bool, error) {
	if _, err := s.r.ByID(ctx, id); err != nil {
		return false, err
	}
	active, err := s.r.HasActiveLoan(ctx, id)
	if err != nil {
		return false, err
	}
	return !active, nil
}

func (s *service) Update(ctx context.Context, b *model.Book) error {
	if b.Title == "" || b.Author == "" {
		return ErrBadInput
	}
	cat, ok := model.ParseBookCategory(string(b.Category))
	if !ok {
		return ErrInvalidCategory
	}
	b.Category = cat
	return s.r.Update(ctx, b)
}

func (s *service) Delete(ctx context.Context, id int64) error { return s.r.Delete(ctx, id) }
