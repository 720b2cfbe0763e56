package schedule

import (
	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
)

// Entry is a planned working window for one user on one day.
type Entry struct {
	Date       string `json:"date"`
	PlannedIn  string `json:"planned_in"`
	PlannedOut string `json:"planned_out"`
}

func ToDataModel(userID int64, e Entry) *scheduleDatamodel.Entry {
	return &scheduleDatamodel.Entry{
		UserID:     userID,
		Date:       e.Date,
		PlannedIn:  e.PlannedIn,
		PlannedOut: e.PlannedOut,
	}
}

func FromDataModel(e *scheduleDatamodel.Entry) Entry {
	return Entry{
		Date:       e.Date,
		PlannedIn:  e.PlannedIn,
		PlannedOut: e.PlannedOut,
	}
}
