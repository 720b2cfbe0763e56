package team

import (
	"time"

	teamDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/team"
)

type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Team) ToResponse() TeamResponse {
	return TeamResponse{ID: t.ID, Name: t.Name}
}

func NewTeam(name string) *Team {
	return &Team{Name: name, CreatedAt: time.Now()}
}

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
