package user

type RegisterUserReq struct {
	Registration string `json:"matricula" validate:"required"`
	Name         string `json:"nome" validate:"required"`
	Email        string `json:"email" validate:"required"`
	Phone        string `json:"telefone" validate:"required"`
}

type UpdateUserReq struct {
	Registration string `json:"matricula" validate:"required"`
	Name         string `json:"nome" validate:"required"`
	Email        string `json:"email" validate:"required"`
	Phone        string `json:"telefone" validate:"required"`
}
