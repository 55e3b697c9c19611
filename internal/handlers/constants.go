package handlers

const (
	DashboardCookieName = "dashboard_token"

	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many attempts, please wait"
)
