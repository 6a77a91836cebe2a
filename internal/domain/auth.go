package domain

// ============================================================
// Authentication
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login. Token is the
// upstream-issued bearer; UserID is the subject decoded from it so the web
// client never has to parse the token itself.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// RegisterRequest is the body for POST /v1/auth/register. ConfirmPassword is
// checked client-side and never forwarded upstream.
type RegisterRequest struct {
	Name            string `json:"name"`
	UserID          string `json:"userId"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	UserID  string `json:"userId"`
	Message string `json:"message,omitempty"`
}
