package status

type TeamMemberStatus struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Status      string  `json:"status"`
	StatusCode  string  `json:"status_code"`
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	PlannedIn   string  `json:"planned_in"`
	PlannedOut  string  `json:"planned_out"`
	IsScheduled bool    `json:"is_scheduled"`
}

type UserStatus struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Team        *string `json:"team"`
	Status      string  `json:"status"`
	StatusCode  string  `json:"status_code"`
	ClockIn     *string `json:"clock_in"`
	ClockOut    *string `json:"clock_out"`
	WorkMinutes int     `json:"work_minutes"`
}
