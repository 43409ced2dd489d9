package loan

type CreateLoanReq struct {
	BookID int64 `json:"livro_id" validate:"required,gt=0"`
	UserID int64 `json:"usuario_id" validate:"required,gt=0"`
}
