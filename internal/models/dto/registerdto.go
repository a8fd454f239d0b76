package dto

type RegisterRequestDTO struct {
	Username string `json:"username" validate:"required,max=64"`
	// bcrypt rejects passwords longer than 72 bytes.
	Password string `json:"password" validate:"required,max=72"`
}

type MessageResponseDTO struct {
	Message string `json:"message"`
}
