// model/user.go
package model

type User struct {
	ID           int64  `json:"id"`
	Registration string `json:"matricula"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	Phone        string `json:"telefone"`
}
