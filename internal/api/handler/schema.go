package handler

type registerRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// userResponse is the sanitized user projection. It never carries the hash.
type userResponse struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type registerResponse struct {
	Message string       `json:"msg"`
	User    userResponse `json:"user"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"msg"`
}
