package response

type ForgotPasswordResponse struct {
	ExpiresInMinutes int    `json:"expires_in_minutes"`
	Name             string `json:"name"`
	// DevCode is only set when mail delivery is not configured outside
	// production.
	DevCode string `json:"dev_code,omitempty"`
}
