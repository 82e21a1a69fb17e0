package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@spacebook.local"`
	Password string `json:"password" binding:"required" example:"user123"`
}

// UpdateContactRequest registers where notifications are delivered.
type UpdateContactRequest struct {
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
	FCMToken *string `json:"fcm_token" validate:"omitempty,max=512"`
}
