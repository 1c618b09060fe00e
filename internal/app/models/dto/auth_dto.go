package dto

import "time"

// ChallengeRequest asks for a login challenge for an address
type ChallengeRequest struct {
	Address string `json:"address" binding:"required" validate:"required,eth_addr" example:"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"`
}

// ChallengeResponse carries the message the wallet must sign
type ChallengeResponse struct {
	Address   string    `json:"address" example:"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginRequest submits the signed challenge
type LoginRequest struct {
	Address   string `json:"address" binding:"required" validate:"required,eth_addr"`
	Signature string `json:"signature" binding:"required" validate:"required"`
}

// TokenResponse represents the token data returned after login
type TokenResponse struct {
	AccessToken string   `json:"accessToken" example:"eyJhbGciOiJIUzI1NiIs..."`
	TokenType   string   `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64    `json:"expiresIn" example:"3600"`
	Address     string   `json:"address" example:"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"`
	Roles       []string `json:"roles" example:"INSTITUTION"`
}
