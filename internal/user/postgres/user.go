package postgres

import (
	"context"
	"errors"

	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) withTeam(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users").
		Select("users.*, teams.name AS team_name").
		Joins("LEFT JOIN teams ON teams.id = users.team_id")
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.UserWithTeam, error) {
	var u userDatamodel.UserWithTeam
	err := r.withTeam(ctx).Where("users.id = ?", id).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListWithTeams(ctx context.Context) ([]*userDatamodel.UserWithTeam, error) {
	var users []*userDatamodel.UserWithTeam
	err := r.withTeam(ctx).Order("users.id ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) update(ctx context.Context, id int64, column string, value interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) (bool, error) {
	return r.update(ctx, id, "role", role)
}

func (r *UserRepository) UpdateLeaveTotal(ctx context.Context, id int64, total float64) (bool, error) {
	return r.update(ctx, id, "annual_leave_total", total)
}

func (r *UserRepository) UpdateTeam(ctx context.Context, id int64, teamID *int64) (bool, error) {
	return r.update(ctx, id, "team_id", teamID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error) {
	return r.update(ctx, id, "password_hash", passwordHash)
}
