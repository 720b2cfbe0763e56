// Package status derives who is working, absent or on leave, and rolls up
// worked hours for administrators.
package status

import (
	"github.com/frahmantamala/attendance/internal/attendance"
	leaveDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/leave"
)

const (
	CodeAnnualLeave = "annual_leave"
	CodeHalfAMLeave = "half_am_leave"
	CodeHalfPMLeave = "half_pm_leave"
	CodeLeave       = "leave"
	CodeClockedOut  = "clocked_out"
	CodeWorking     = "working"
	CodeAbsent      = "absent"
)

const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

type Status struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var leaveStatuses = map[string]Status{
	leaveDatamodel.TypeAnnual: {Code: CodeAnnualLeave, Label: "연차"},
	leaveDatamodel.TypeHalfAM: {Code: CodeHalfAMLeave, Label: "오전반차"},
	leaveDatamodel.TypeHalfPM: {Code: CodeHalfPMLeave, Label: "오후반차"},
}

// Derive picks a user's status for a day. Leave wins over attendance, and
// attendance over absence. session is the latest session of the day.
func Derive(leaveType *string, session *attendance.Session) Status {
	if leaveType != nil {
		if s, ok := leaveStatuses[*leaveType]; ok {
			return s
		}
		return Status{Code: CodeLeave, Label: "휴가"}
	}
	if session != nil {
		if session.IsClosed() {
			return Status{Code: CodeClockedOut, Label: "퇴근"}
		}
		return Status{Code: CodeWorking, Label: "근무중"}
	}
	return Status{Code: CodeAbsent, Label: "미출근"}
}

// Member is a non-admin user as seen by the status views.
type Member struct {
	ID       int64   `db:"id"`
	Name     string  `db:"name"`
	Role     string  `db:"role"`
	TeamName *string `db:"team_name"`
}

// Hours is one row of the worked-time rollup.
type Hours struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Team         *string `db:"team_name" json:"team"`
	TotalMinutes int     `db:"total_minutes" json:"total_minutes"`
}
