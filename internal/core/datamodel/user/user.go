package user

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID               int64     `gorm:"primaryKey"`
	TeamID           *int64    `gorm:"column:team_id"`
	Name             string    `gorm:"column:name;not null"`
	Email            string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash     string    `gorm:"column:password_hash;not null"`
	Role             string    `gorm:"column:role;not null;default:member"`
	AnnualLeaveTotal float64   `gorm:"column:annual_leave_total;not null;default:15"`
	AnnualLeaveUsed  float64   `gorm:"column:annual_leave_used;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// UserWithTeam is a user row joined with its team name.
type UserWithTeam struct {
	User
	TeamName *string `gorm:"column:team_name"`
}
