// Package menu is the interactive console frontend. It talks to the same
// services as the HTTP controllers, so every business rule applies to both.
package menu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"biblioteca/model"
	booksvc "biblioteca/service/book"
	loansvc "biblioteca/service/loan"
	usersvc "biblioteca/service/user"
)

type Menu struct {
	Books booksvc.Service
	Users usersvc.Service
	Loans loansvc.Service

	in  *bufio.Scanner
	out io.Writer
}

func New(books booksvc.Service, users usersvc.Service, loans loansvc.Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		Books: books,
		Users: users,
		Loans: loans,
		in:    bufio.NewScanner(in),
		out:   out,
	}
}

// Run loops until the user picks 0 or input ends.
func (m *Menu) Run(ctx context.Context) {
	for {
		m.printf("\n--- Sistema Biblioteca ---\n")
		m.printf("1. Cadastrar Livro\n")
		m.printf("2. Listar Livros\n")
		m.printf("3. Cadastrar Usuário\n")
		m.printf("4. Listar Usuários\n")
		m.printf("5. Emprestar Livro\n")
		m.printf("6. Devolver Livro\n")
		m.printf("7. Listar Empréstimos\n")
		m.printf("8. Buscar Livro por Título\n")
		m.printf("9. Empréstimos por Usuário\n")
		m.printf("10. Livros Disponíveis\n")
		m.printf("11. Buscar Livros por Categoria\n")
		m.printf("0. Sair\n")

		opt, ok := m.ask("Escolha uma opção: ")
		if !ok {
			return
		}

		switch opt {
		case "1":
			m.registerBook(ctx)
		case "2":
			m.listBooks(ctx)
		case "3":
			m.registerUser(ctx)
		case "4":
			m.listUsers(ctx)
		case "5":
			m.borrow(ctx)
		case "6":
			m.returnBook(ctx)
		case "7":
			m.listLoans(ctx)
		case "8":
			m.searchByTitle(ctx)
		case "9":
			m.loansByUser(ctx)
		case "10":
			m.availableBooks(ctx)
		case "11":
			m.booksByCategory(ctx)
		case "0":
			m.printf("Saindo...\n")
			return
		default:
			m.printf("Opção inválida!\n")
		}
	}
}

func (m *Menu) registerBook(ctx context.Context) {
	title, ok := m.ask("Título do livro: ")
	if !ok {
		return
	}
	author, ok := m.ask("Autor: ")
	if !ok {
		return
	}
	year, ok := m.askInt("Ano de publicação: ")
	if !ok {
		return
	}
	category, ok := m.ask("Categoria (LITERATURA, FANTASIA, BIOGRAFIA, FICCAO_CIENTIFICA, ROMANCE): ")
	if !ok {
		return
	}

	b, err := m.Books.Register(ctx, title, author, int(year), category)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printf("Livro %q cadastrado com id %d.\n", b.Title, b.ID)
}

func (m *Menu) listBooks(ctx context.Context) {
	books, err := m.Books.List(ctx)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printBooks(books)
}

func (m *Menu) registerUser(ctx context.Context) {
	matricula, ok := m.ask("Matrícula: ")
	if !ok {
		return
	}
	name, ok := m.ask("Nome do usuário: ")
	if !ok {
		return
	}
	email, ok := m.ask("Email: ")
	if !ok {
		return
	}
	phone, ok := m.ask("Telefone: ")
	if !ok {
		return
	}

	u, err := m.Users.Register(ctx, usersvc.RegisterInput{
		Registration: matricula,
		Name:         name,
		Email:        email,
		Phone:        phone,
	})
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printf("Usuário %q cadastrado com id %d.\n", u.Name, u.ID)
}

func (m *Menu) listUsers(ctx context.Context) {
	users, err := m.Users.List(ctx)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	if len(users) == 0 {
		m.printf("Nenhum usuário cadastrado.\n")
		return
	}
	for _, u := range users {
		m.printf("[%d] %s (matrícula %s, %s)\n", u.ID, u.Name, u.Registration, u.Email)
	}
}

func (m *Menu) borrow(ctx context.Context) {
	bookID, ok := m.askInt("ID do livro: ")
	if !ok {
		return
	}
	userID, ok := m.askInt("ID do usuário: ")
	if !ok {
		return
	}

	ln, err := m.Loans.Borrow(ctx, bookID, userID)
	if err != nil {
		m.printf("Erro: %s\n", loanErrMsg(err))
		return
	}
	m.printf("Empréstimo %d criado, devolução até %s.\n", ln.ID, ln.DueAt.Format("02/01/2006"))
}

func (m *Menu) returnBook(ctx context.Context) {
	bookID, ok := m.askInt("ID do livro a devolver: ")
	if !ok {
		return
	}

	ln, err := m.Loans.ReturnByBook(ctx, bookID)
	if err != nil {
		m.printf("Erro: %s\n", loanErrMsg(err))
		return
	}
	m.printf("Empréstimo %d devolvido.\n", ln.ID)
}

func (m *Menu) listLoans(ctx context.Context) {
	loans, err := m.Loans.List(ctx)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printLoans(loans)
}

func (m *Menu) searchByTitle(ctx context.Context) {
	title, ok := m.ask("Título (busca parcial): ")
	if !ok {
		return
	}
	books, err := m.Books.SearchByTitle(ctx, title)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printBooks(books)
}

func (m *Menu) loansByUser(ctx context.Context) {
	userID, ok := m.askInt("ID do usuário: ")
	if !ok {
		return
	}
	loans, err := m.Loans.ByUser(ctx, userID)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printLoans(loans)
}

func (m *Menu) availableBooks(ctx context.Context) {
	books, err := m.Books.Available(ctx)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printBooks(books)
}

func (m *Menu) booksByCategory(ctx context.Context) {
	category, ok := m.ask("Categoria: ")
	if !ok {
		return
	}
	books, err := m.Books.ByCategory(ctx, category)
	if err != nil {
		m.printf("Erro: %v\n", err)
		return
	}
	m.printBooks(books)
}

func (m *Menu) printBooks(books []model.Book) {
	if len(books) == 0 {
		m.printf("Nenhum livro encontrado.\n")
		return
	}
	for _, b := range books {
		m.printf("[%d] %s, %s (%d) - %s\n", b.ID, b.Title, b.Author, b.Year, b.Category)
	}
}

func (m *Menu) printLoans(loans []model.Loan) {
	if len(loans) == 0 {
		m.printf("Nenhum empréstimo encontrado.\n")
		return
	}
	for _, ln := range loans {
		title := fmt.Sprintf("livro %d", ln.BookID)
		if ln.Book != nil {
			title = ln.Book.Title
		}
		name := fmt.Sprintf("usuário %d", ln.UserID)
		if ln.User != nil {
			name = ln.User.Name
		}
		m.printf("[%d] %s -> %s | %s | devolução até %s\n",
			ln.ID, title, name, ln.Status, ln.DueAt.Format("02/01/2006"))
	}
}

func loanErrMsg(err error) string {
	switch loansvc.Code(err) {
	case loansvc.ErrLimitExceeded:
		return "usuário atingiu o limite de empréstimos ativos"
	case loansvc.ErrAlreadyBorrowed:
		return "este livro já está emprestado"
	case loansvc.ErrAlreadyReturned:
		return "empréstimo já devolvido"
	case loansvc.ErrNotActive:
		return "empréstimo não está ativo"
	}
	return err.Error()
}

func (m *Menu) ask(prompt string) (string, bool) {
	m.printf("%s", prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) askInt(prompt string) (int64, bool) {
	raw, ok := m.ask(prompt)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.printf("Número inválido!\n")
		return 0, false
	}
	return n, true
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
