package postgres

import (
	"context"
	"errors"

	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
	"github.com/frahmantamala/attendance/internal/schedule"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) schedule.RepositoryAPI {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Get(ctx context.Context, userID int64, date string) (*scheduleDatamodel.Entry, error) {
	var e scheduleDatamodel.Entry
	err := r.db.WithContext(ctx).Where("user_id = ? AND date = ?", userID, date).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *ScheduleRepository) ListByDates(ctx context.Context, userID int64, dates []string) ([]*scheduleDatamodel.Entry, error) {
	var entries []*scheduleDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date IN ?", userID, dates).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

// Upsert writes all entries in one transaction, replacing the planned window
// of any (user, date) already stored.
func (r *ScheduleRepository) Upsert(ctx context.Context, entries ...*scheduleDatamodel.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{"planned_in", "planned_out"}),
			}).Create(e).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
