package models

import (
	"time"

	"github.com/mr-atuzie/angt-votify-BE/storage"
)

type RegisterUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID           string               `json:"id"`
	FullName     string               `json:"fullName"`
	Email        string               `json:"email"`
	Role         string               `json:"role"`
	Subscription storage.Subscription `json:"subscription"`
	CreatedAt    time.Time            `json:"createdAt"`
}

type AuthUserResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

func TransformUserFromStorage(u *storage.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Role:         u.Role,
		Subscription: u.Subscription,
		CreatedAt:    u.CreatedAt,
	}
}
