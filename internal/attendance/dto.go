package attendance

type ClockInRequest struct {
	UserID    int64    `json:"user_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type ClockOutRequest struct {
	UserID int64 `json:"user_id"`
}

type ClockInResponse struct {
	Success bool   `json:"success"`
	ClockIn string `json:"clock_in"`
	Message string `json:"message"`
}

type ClockOutResponse struct {
	Success     bool   `json:"success"`
	ClockOut    string `json:"clock_out"`
	WorkMinutes int    `json:"work_minutes"`
	Message     string `json:"message"`
}

type TodayResponse struct {
	IsWorking             bool       `json:"is_working"`
	Sessions              []*Session `json:"sessions"`
	TotalMinutes          int        `json:"total_minutes"`
	CurrentClockIn        *string    `json:"current_clock_in"`
	CurrentElapsedMinutes int        `json:"current_elapsed_minutes"`
}

type DayMinutes struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type WeeklyResponse struct {
	Days            []DayMinutes `json:"days"`
	TotalMinutes    int          `json:"total_minutes"`
	TargetHours     float64      `json:"target_hours"`
	ProgressPercent float64      `json:"progress_percent"`
}

type AdminUpdateRequest struct {
	UserID   int64   `json:"user_id"`
	Date     string  `json:"date"`
	ClockIn  *string `json:"clock_in"`
	ClockOut *string `json:"clock_out"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
