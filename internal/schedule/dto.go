package schedule

type Day struct {
	Date       string `json:"date"`
	PlannedIn  string `json:"planned_in"`
	PlannedOut string `json:"planned_out"`
	IsDefault  bool   `json:"is_default"`
}

type UpsertRequest struct {
	UserID     int64  `json:"user_id"`
	Date       string `json:"date"`
	PlannedIn  string `json:"planned_in"`
	PlannedOut string `json:"planned_out"`
}

type BatchRequest struct {
	UserID    int64   `json:"user_id"`
	Schedules []Entry `json:"schedules"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
