package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
)

const (
	RoleMember = userDatamodel.RoleMember
	RoleAdmin  = userDatamodel.RoleAdmin
)

type User struct {
	ID               int64     `json:"id"`
	TeamID           *int64    `json:"team_id"`
	TeamName         *string   `json:"team_name"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             string    `json:"role"`
	AnnualLeaveTotal float64   `json:"annual_leave_total"`
	AnnualLeaveUsed  float64   `json:"annual_leave_used"`
	CreatedAt        time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RemainingLeave is the unused part of the annual leave allowance. It can be
// negative after an administrator lowers the total.
func (u *User) RemainingLeave() float64 {
	return u.AnnualLeaveTotal - u.AnnualLeaveUsed
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		TeamID:               u.TeamID,
		TeamName:             u.TeamName,
		Role:                 u.Role,
		AnnualLeaveTotal:     u.AnnualLeaveTotal,
		AnnualLeaveUsed:      u.AnnualLeaveUsed,
		AnnualLeaveRemaining: u.RemainingLeave(),
		CreatedAt:            u.CreatedAt,
	}
}

func NewUser(name, email, passwordHash string, teamID *int64) *User {
	return &User{
		TeamID:           teamID,
		Name:             name,
		Email:            email,
		PasswordHash:     passwordHash,
		Role:             RoleMember,
		AnnualLeaveTotal: 15,
		CreatedAt:        time.Now(),
	}
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:               u.ID,
		TeamID:           u.TeamID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             u.Role,
		AnnualLeaveTotal: u.AnnualLeaveTotal,
		AnnualLeaveUsed:  u.AnnualLeaveUsed,
		CreatedAt:        u.CreatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:               u.ID,
		TeamID:           u.TeamID,
		Name:             u.Name,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Role:             u.Role,
		AnnualLeaveTotal: u.AnnualLeaveTotal,
		AnnualLeaveUsed:  u.AnnualLeaveUsed,
		CreatedAt:        u.CreatedAt,
	}
}

func FromDataModelWithTeam(u *userDatamodel.UserWithTeam) *User {
	domainUser := FromDataModel(&u.User)
	domainUser.TeamName = u.TeamName
	return domainUser
}
