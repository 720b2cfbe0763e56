package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/attendance/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}

func (r *AttendanceRepository) first(q *gorm.DB) (*attendanceDatamodel.Session, error) {
	var s attendanceDatamodel.Session
	err := q.Order("id DESC").Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *AttendanceRepository) FindOpen(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Session, error) {
	return r.first(r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND clock_in IS NOT NULL AND clock_out IS NULL", userID, date))
}

func (r *AttendanceRepository) FindLatest(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Session, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date))
}

func (r *AttendanceRepository) ListByDate(ctx context.Context, userID int64, date string) ([]*attendanceDatamodel.Session, error) {
	var sessions []*attendanceDatamodel.Session
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *AttendanceRepository) SumByDates(ctx context.Context, userID int64, dates []string) (map[string]int, error) {
	var rows []struct {
		Date    string
		Minutes int
	}
	err := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Session{}).
		Select("date, COALESCE(SUM(work_minutes), 0) AS minutes").
		Where("user_id = ? AND date IN ?", userID, dates).
		Group("date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := make(map[string]int, len(rows))
	for _, row := range rows {
		sums[row.Date] = row.Minutes
	}
	return sums, nil
}

func (r *AttendanceRepository) Create(ctx context.Context, s *attendanceDatamodel.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// Close stamps the clock-out only if the session is still open, so two
// concurrent clock-outs cannot both succeed.
func (r *AttendanceRepository) Close(ctx context.Context, id int64, clockOut string, workMinutes int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Session{}).
		Where("id = ? AND clock_out IS NULL", id).
		Updates(map[string]interface{}{
			"clock_out":    clockOut,
			"work_minutes": workMinutes,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *AttendanceRepository) Save(ctx context.Context, s *attendanceDatamodel.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}
