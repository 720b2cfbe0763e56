package leave

type CreateLeaveRequest struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
	Type   string `json:"type"`
}

type CreateLeaveResponse struct {
	Success   bool    `json:"success"`
	LeaveID   int64   `json:"leave_id"`
	Remaining float64 `json:"remaining"`
}

type WeekDay struct {
	Date string  `json:"date"`
	Type *string `json:"type"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
