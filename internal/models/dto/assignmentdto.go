package dto

type UploadAssignmentRequestDTO struct {
	Task  string `json:"task" validate:"required,min=1,max=4096"`
	Admin string `json:"admin" validate:"required"`
}

type RateLimitResponse struct {
	Message string `json:"message"`
}
