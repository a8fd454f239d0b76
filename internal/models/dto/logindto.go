package dto

type LoginRequestDTO struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type LoginResponseDTO struct {
	Token string `json:"token"`
}
