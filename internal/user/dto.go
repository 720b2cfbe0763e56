package user

import "time"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TeamID   *int64 `json:"team_id"`
}

type RegisterResponse struct {
	Success bool  `json:"success"`
	UserID  int64 `json:"user_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool         `json:"success"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type UserResponse struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	TeamID               *int64    `json:"team_id"`
	TeamName             *string   `json:"team_name"`
	Role                 string    `json:"role"`
	AnnualLeaveTotal     float64   `json:"annual_leave_total"`
	AnnualLeaveUsed      float64   `json:"annual_leave_used"`
	AnnualLeaveRemaining float64   `json:"annual_leave_remaining"`
	CreatedAt            time.Time `json:"created_at"`
}

type UpdateRoleRequest struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type AssignTeamRequest struct {
	UserID int64  `json:"user_id"`
	TeamID *int64 `json:"team_id"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
