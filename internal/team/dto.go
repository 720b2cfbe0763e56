package team

type TeamResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type CreateTeamResponse struct {
	Success bool  `json:"success"`
	TeamID  int64 `json:"team_id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
