package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) GetBalance(ctx context.Context, userID int64) (*leave.Balance, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("annual_leave_total", "annual_leave_used").
		Where("id = ?", userID).
		Take(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &leave.Balance{Total: u.AnnualLeaveTotal, Used: u.AnnualLeaveUsed}, nil
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.Entry, error) {
	var e leaveDatamodel.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *LeaveRepository) ListByUser(ctx context.Context, userID int64) ([]*leaveDatamodel.Entry, error) {
	var entries []*leaveDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&entries).Error
	return entries, err
}

func (r *LeaveRepository) ListByDates(ctx context.Context, userID int64, dates []string) ([]*leaveDatamodel.Entry, error) {
	var entries []*leaveDatamodel.Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date IN ?", userID, dates).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

// Book adds the entry and charges the balance. The charge only applies while
// the remaining balance covers it, so two concurrent bookings cannot
// overdraw. The returned balance is read inside the same transaction.
func (r *LeaveRepository) Book(ctx context.Context, e *leaveDatamodel.Entry, deduction float64) (*leave.Balance, error) {
	var after userDatamodel.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}

		res := tx.Model(&userDatamodel.User{}).
			Where("id = ? AND annual_leave_total - annual_leave_used >= ?", e.UserID, deduction).
			Update("annual_leave_used", gorm.Expr("annual_leave_used + ?", deduction))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return leave.ErrInsufficientBalance
		}

		return tx.Select("annual_leave_total", "annual_leave_used").
			Where("id = ?", e.UserID).
			Take(&after).Error
	})
	if err != nil {
		return nil, err
	}
	return &leave.Balance{Total: after.AnnualLeaveTotal, Used: after.AnnualLeaveUsed}, nil
}

func (r *LeaveRepository) Cancel(ctx context.Context, e *leaveDatamodel.Entry, deduction float64) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", e.ID).Delete(&leaveDatamodel.Entry{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Model(&userDatamodel.User{}).
			Where("id = ?", e.UserID).
			Update("annual_leave_used", gorm.Expr(
				"CASE WHEN annual_leave_used >= ? THEN annual_leave_used - ? ELSE 0 END",
				deduction, deduction,
			)).Error
	})
	return removed, err
}
