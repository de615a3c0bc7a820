package dto

// LoginRequest is the JSON body for POST /login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the freshly minted bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}
