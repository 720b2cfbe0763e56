package postgres

import (
	"context"

	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
	leaveDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/leave"
	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
	teamDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/status"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// StatusRepository reads across users, attendance, leave and schedules.
// Per-day lookups go through gorm; the hours rollup is one hand-written
// aggregate run through sqlx.
type StatusRepository struct {
	db  *gorm.DB
	sql *sqlx.DB
}

func NewStatusRepository(db *gorm.DB, sqlDB *sqlx.DB) status.RepositoryAPI {
	return &StatusRepository{db: db, sql: sqlDB}
}

func (r *StatusRepository) TeamExists(ctx context.Context, teamID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&teamDatamodel.Team{}).Where("id = ?", teamID).Count(&count).Error
	return count > 0, err
}

func (r *StatusRepository) ListMembers(ctx context.Context, teamID *int64) ([]status.Member, error) {
	q := r.db.WithContext(ctx).
		Table("users").
		Select("users.id, users.name, users.role, teams.name AS team_name").
		Joins("LEFT JOIN teams ON teams.id = users.team_id").
		Where("users.role <> ?", userDatamodel.RoleAdmin)
	if teamID != nil {
		q = q.Where("users.team_id = ?", *teamID)
	}

	var members []status.Member
	err := q.Order("users.id ASC").Scan(&members).Error
	return members, err
}

// LatestSessions keeps the highest-id session per user on the date.
func (r *StatusRepository) LatestSessions(ctx context.Context, userIDs []int64, date string) (map[int64]*attendanceDatamodel.Session, error) {
	var rows []*attendanceDatamodel.Session
	err := r.db.WithContext(ctx).
		Where("user_id IN ? AND date = ?", userIDs, date).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[int64]*attendanceDatamodel.Session, len(rows))
	for _, row := range rows {
		latest[row.UserID] = row
	}
	return latest, nil
}

func (r *StatusRepository) LeaveTypes(ctx context.Context, userIDs []int64, date string) (map[int64]string, error) {
	var rows []*leaveDatamodel.Entry
	err := r.db.WithContext(ctx).Where("user_id IN ? AND date = ?", userIDs, date).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	types := make(map[int64]string, len(rows))
	for _, row := range rows {
		types[row.UserID] = row.Type
	}
	return types, nil
}

func (r *StatusRepository) Schedules(ctx context.Context, userIDs []int64, date string) (map[int64]*scheduleDatamodel.Entry, error) {
	var rows []*scheduleDatamodel.Entry
	err := r.db.WithContext(ctx).Where("user_id IN ? AND date = ?", userIDs, date).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	plans := make(map[int64]*scheduleDatamodel.Entry, len(rows))
	for _, row := range rows {
		plans[row.UserID] = row
	}
	return plans, nil
}

const hoursQuery = `
SELECT u.id, u.name, t.name AS team_name, COALESCE(SUM(a.work_minutes), 0) AS total_minutes
FROM users u
LEFT JOIN teams t ON t.id = u.team_id
LEFT JOIN attendance_sessions a ON a.user_id = u.id AND a.date >= ? AND a.date <= ?
WHERE u.role <> ?
GROUP BY u.id, u.name, t.name
ORDER BY total_minutes DESC, u.id ASC`

func (r *StatusRepository) Hours(ctx context.Context, from, to string) ([]status.Hours, error) {
	var rows []status.Hours
	err := r.sql.SelectContext(ctx, &rows, r.sql.Rebind(hoursQuery), from, to, userDatamodel.RoleAdmin)
	return rows, err
}
