package leave

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/leave"
)

const (
	TypeAnnual = leaveDatamodel.TypeAnnual
	TypeHalfAM = leaveDatamodel.TypeHalfAM
	TypeHalfPM = leaveDatamodel.TypeHalfPM
)

// Entry is one day of leave booked by a user.
type Entry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Date      string    `json:"date"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// Deduction is the number of days a leave type takes from the annual balance.
func Deduction(leaveType string) float64 {
	if leaveType == TypeAnnual {
		return 1.0
	}
	return 0.5
}

func ToDataModel(e *Entry) *leaveDatamodel.Entry {
	return &leaveDatamodel.Entry{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
}

func FromDataModel(e *leaveDatamodel.Entry) *Entry {
	return &Entry{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Type:      e.Type,
		CreatedAt: e.CreatedAt,
	}
}
