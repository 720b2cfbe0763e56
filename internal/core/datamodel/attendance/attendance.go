package attendance

// Session is one clock-in/clock-out interval. Date is YYYY-MM-DD and the
// times are HH:MM in the company timezone.
type Session struct {
	ID          int64   `gorm:"primaryKey"`
	UserID      int64   `gorm:"column:user_id;not null"`
	Date        string  `gorm:"column:date;not null"`
	ClockIn     *string `gorm:"column:clock_in"`
	ClockOut    *string `gorm:"column:clock_out"`
	WorkMinutes int     `gorm:"column:work_minutes;not null;default:0"`
}

func (Session) TableName() string {
	return "attendance_sessions"
}

func (s *Session) IsOpen() bool {
	return s.ClockIn != nil && s.ClockOut == nil
}
