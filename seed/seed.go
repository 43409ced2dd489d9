// Package seed loads the initial catalog. Inserts go straight through the
// repositories and unique violations are reported, not fatal, so the loader
// can run repeatedly against the same database.
package seed

import (
	"context"
	"log/slog"

	"biblioteca/model"
	"biblioteca/repository"
	bookrepo "biblioteca/repository/book"
	userrepo "biblioteca/repository/user"
)

var books = []model.Book{
	{Title: "1984", Author: "George Orwell", Year: 1949, Category: model.CategoryLiterature},
	{Title: "Dom Casmurro", Author: "Machado de Assis", Year: 1899, Category: model.CategoryLiterature},
	{Title: "O Senhor dos Anéis", Author: "J.R.R. Tolkien", Year: 1954, Category: model.CategoryFantasy},
	{Title: "Cem Anos de Solidão", Author: "Gabriel García Márquez", Year: 1967, Category: model.CategoryLiterature},
	{Title: "Orgulho e Preconceito", Author: "Jane Austen", Year: 1813, Category: model.CategoryLiterature},
	{Title: "A Revolução dos Bichos", Author: "George Orwell", Year: 1945, Category: model.CategoryLiterature},
	{Title: "O Pequeno Príncipe", Author: "Antoine de Saint-Exupéry", Year: 1943, Category: model.CategoryLiterature},
	{Title: "A Menina que Roubava Livros", Author: "Markus Zusak", Year: 2005, Category: model.CategoryLiterature},
	{Title: "O Código Da Vinci", Author: "Dan Brown", Year: 2003, Category: model.CategoryLiterature},
	{Title: "O Apanhador no Campo de Centeio", Author: "J.D. Salinger", Year: 1951, Category: model.CategoryLiterature},
	{Title: "O Hobbit", Author: "J.R.R. Tolkien", Year: 1937, Category: model.CategoryFantasy},
	{Title: "A Cor Púrpura", Author: "Alice Walker", Year: 1982, Category: model.CategoryLiterature},
	{Title: "A Culpa é das Estrelas", Author: "John Green", Year: 2012, Category: model.CategoryLiterature},
	{Title: "Ensaio sobre a Cegueira", Author: "José Saramago", Year: 1995, Category: model.CategoryLiterature},
	{Title: "O Diário de Anne Frank", Author: "Anne Frank", Year: 1947, Category: model.CategoryBiography},
	{Title: "It: A Coisa", Author: "Stephen King", Year: 1986, Category: model.CategoryLiterature},
	{Title: "Fahrenheit 451", Author: "Ray Bradbury", Year: 1953, Category: model.CategoryScienceFiction},
	{Title: "O Alquimista", Author: "Paulo Coelho", Year: 1988, Category: model.CategoryLiterature},
	{Title: "Torto Arado", Author: "Itamar Vieira Junior", Year: 2019, Category: model.CategoryLiterature},
	{Title: "O Morro dos Ventos Uivantes", Author: "Emily Brontë", Year: 1847, Category: model.CategoryLiterature},
}

var users = []model.User{
	{Registration: "20250001", Name: "Isabella Farias", Email: "henriqueda-costa@almeida.br", Phone: "0900 961 7318"},
	{Registration: "20250002", Name: "Esther Sales", Email: "bryanmonteiro@farias.br", Phone: "0500 763 7790"},
	{Registration: "20250003", Name: "Larissa Araújo", Email: "bryanda-cruz@ig.com.br", Phone: "(081) 1886-8023"},
	{Registration: "20250004", Name: "Camila Freitas", Email: "nicoleda-mata@sales.br", Phone: "+55 21 6436-1016"},
	{Registration: "20250005", Name: "Raul Ramos", Email: "oliviapeixoto@costa.net", Phone: "(071) 1270 6665"},
	{Registration: "20250006", Name: "Lucas Gabriel da Mata", Email: "xmartins@yahoo.com.br", Phone: "+55 (051) 1178 6235"},
	{Registration: "20250007", Name: "Otávio Monteiro", Email: "yfreitas@goncalves.com", Phone: "0900-615-3033"},
	{Registration: "20250008", Name: "Calebe Dias", Email: "marcos-vinicius85@gmail.com", Phone: "+55 (011) 7543-1649"},
	{Registration: "20250009", Name: "Heitor Castro", Email: "emanuelly55@gmail.com", Phone: "+55 81 9723-1700"},
	{Registration: "20250010", Name: "Luiz Henrique Peixoto", Email: "nramos@yahoo.com.br", Phone: "+55 81 6763-5974"},
	{Registration: "20250011", Name: "Yasmin Moreira", Email: "maria-cecilia46@ig.com.br", Phone: "0500-588-0555"},
	{Registration: "20250012", Name: "Dr. Lorenzo Teixeira", Email: "silveiracaio@ig.com.br", Phone: "51 0216 1323"},
	{Registration: "20250013", Name: "Valentina Pinto", Email: "murilo45@gmail.com", Phone: "61 8498 8258"},
	{Registration: "20250014", Name: "Pedro Henrique das Neves", Email: "ferreiramaysa@ig.com.br", Phone: "+55 84 1805 1770"},
	{Registration: "20250015", Name: "Esther Moraes", Email: "barrosbernardo@uol.com.br", Phone: "+55 71 9012-0887"},
	{Registration: "20250016", Name: "Matheus Aragão", Email: "portoantonio@bol.com.br", Phone: "+55 (031) 4731 5036"},
	{Registration: "20250017", Name: "Benjamin Correia", Email: "leandroda-luz@da.br", Phone: "(021) 6496-0228"},
	{Registration: "20250018", Name: "Giovanna Mendes", Email: "vitor-hugo78@ig.com.br", Phone: "51 6996 8064"},
	{Registration: "20250019", Name: "Enrico Porto", Email: "dsales@ig.com.br", Phone: "(021) 8629-6905"},
	{Registration: "20250020", Name: "Marcelo da Paz", Email: "rmendes@gmail.com", Phone: "+55 (061) 1522 4314"},
}

type Loader struct {
	Books bookrepo.Repo
	Users userrepo.Repo
	Log   *slog.Logger
}

// Run inserts the catalog. Rows that already exist are skipped; any other
// store error aborts the load.
func (l *Loader) Run(ctx context.Context) error {
	for i := range books {
		b := books[i]
		if err := l.Books.Create(ctx, &b); err != nil {
			if repository.IsUniqueViolation(err) {
				l.Log.Info("livro já existe", "titulo", b.Title)
				continue
			}
			return err
		}
		l.Log.Info("livro inserido", "id", b.ID, "titulo", b.Title)
	}

	for i := range users {
		u := users[i]
		if err := l.Users.Create(ctx, &u); err != nil {
			if repository.IsUniqueViolation(err) {
				l.Log.Info("usuário já existe", "matricula", u.Registration)
				continue
			}
			return err
		}
		l.Log.Info("usuário inserido", "id", u.ID, "nome", u.Name)
	}

	l.Log.Info("dados iniciais carregados", "livros", len(books), "usuarios", len(users))
	return nil
}
