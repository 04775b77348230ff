package model

import "github.com/golang-jwt/jwt/v5"

// LoginRequest is the request body for POST /v1/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the resolved identity
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	TopicID  int    `json:"topicId,omitempty"` // assigned topic set, raters only
}

// UserClaims are the JWT claims for an authenticated user
type UserClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
