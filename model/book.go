// model/book.go
package model

import "strings"

type BookCategory string

const (
	CategoryLiterature     BookCategory = "LITERATURA"
	CategoryFantasy        BookCategory = "FANTASIA"
	CategoryBiography      BookCategory = "BIOGRAFIA"
	CategoryScienceFiction BookCategory = "FICCAO_CIENTIFICA"
	CategoryRomance        BookCategory = "ROMANCE"
)

// ParseBookCategory accepts the stored value in any casing.
func ParseBookCategory(s string) (BookCategory, bool) {
	c := BookCategory(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CategoryLiterature, CategoryFantasy, CategoryBiography, CategoryScienceFiction, CategoryRomance:
		return c, true
	}
	return "", false
}

type Book struct {
	ID       int64        `json:"id"`
	Title    string       `json:"titulo"`
	Author   string       `json:"autor"`
	Year     int          `json:"ano_publicacao"`
	Category BookCategory `json:"categoria"`
}
