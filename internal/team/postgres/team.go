package postgres

import (
	"context"
	"errors"

	teamDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/team"
	"gorm.io/gorm"
)

type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) team.RepositoryAPI {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetAll(ctx context.Context) ([]*teamDatamodel.Team, error) {
	var teams []*teamDatamodel.Team
	err := r.db.WithContext(ctx).Order("id ASC").Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error) {
	var t teamDatamodel.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) Create(ctx context.Context, t *teamDatamodel.Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TeamRepository) CountMembers(ctx context.Context, id int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("team_id = ?", id).Count(&count).Error
	return count, err
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&teamDatamodel.Team{}, id).Error
}
