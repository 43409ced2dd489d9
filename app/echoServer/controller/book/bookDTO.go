package book

type CreateBookReq struct {
	Title    string `json:"titulo" validate:"required"`
	Author   string `json:"autor" validate:"required"`
	Year     int    `json:"ano_publicacao" validate:"required"`
	Category string `json:"categoria" validate:"required"`
}

type UpdateBookReq struct {
	Title    string `json:"titulo" validate:"required"`
	Author   string `json:"autor" validate:"required"`
	Year     int    `json:"ano_publicacao" validate:"required"`
	Category string `json:"categoria" validate:"required"`
}
