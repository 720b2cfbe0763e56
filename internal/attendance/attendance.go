package attendance

import (
	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
)

// Session is one work interval on a calendar day. A session is open while it
// has a clock-in and no clock-out.
type Session struct {
	ID          int64   `json:"id"`
	UserID      int64   `json:"user_id"`
	Date        string  `json:"date"`
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	WorkMinutes int     `json:"work_minutes"`
}

func (s *Session) IsOpen() bool {
	return s.ClockIn != nil && s.ClockOut == nil
}

func (s *Session) IsClosed() bool {
	return s.ClockOut != nil
}

func ToDataModel(s *Session) *attendanceDatamodel.Session {
	return &attendanceDatamodel.Session{
		ID:          s.ID,
		UserID:      s.UserID,
		Date:        s.Date,
		ClockIn:     s.ClockIn,
		ClockOut:    s.ClockOut,
		WorkMinutes: s.WorkMinutes,
	}
}

func FromDataModel(s *attendanceDatamodel.Session) *Session {
	return &Session{
		ID:          s.ID,
		UserID:      s.UserID,
		Date:        s.Date,
		ClockIn:     s.ClockIn,
		ClockOut:    s.ClockOut,
		WorkMinutes: s.WorkMinutes,
	}
}
