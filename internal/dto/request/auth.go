package request

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// ResetPasswordRequest is the reset-commit body. Code format and password
// length are enforced again by the service, which owns the typed errors.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,max=72"`
}
