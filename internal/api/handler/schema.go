package handler

import (
	"github.com/connectly/support-api/internal/core/domain"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error" example:"Invalid email or password"`
}

// --- Auth ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" example:"agent@connectly.io"`
	Password string `json:"password" validate:"required,password" example:"S3cure!pass"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=agent admin" example:"agent"`
}

type loginRequest struct {
	Email    string `json:"email" example:"agent@connectly.io"`
	Password string `json:"password" example:"S3cure!pass"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
}

type profileUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

type profileResponse struct {
	User profileUser `json:"user"`
}

type verifyUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

type verifyResponse struct {
	Valid bool       `json:"valid"`
	User  verifyUser `json:"user"`
}

type usersResponse struct {
	Count int           `json:"count"`
	Users []profileUser `json:"users"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Role: u.Role}
}

func toProfileUser(u *domain.User) profileUser {
	return profileUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: domain.FormatTimestamp(u.CreatedAt),
	}
}

// --- Chats ---

type sendMessageRequest struct {
	CustomerName string `json:"customerName" example:"Ana"`
	Message      string `json:"message" example:"Hi, my order has not arrived"`
}
