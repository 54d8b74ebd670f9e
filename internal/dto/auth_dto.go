package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	Password string `json:"password" validate:"required,min=4,max=72"`
	Role     string `json:"role"     validate:"required,oneof=admin cashier"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1"`
	Password string `json:"password" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// StatusResponse mirrors the {status, detail} acknowledgements of the auth routes.
type StatusResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

type MeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
