package team

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	teamDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/team"
	"github.com/frahmantamala/attendance/internal/storage"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*teamDatamodel.Team, error)
	GetByID(ctx context.Context, id int64) (*teamDatamodel.Team, error)
	Create(ctx context.Context, team *teamDatamodel.Team) error
	CountMembers(ctx context.Context, id int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]TeamResponse, error) {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to list teams", "error", err)
		return nil, internal.NewInternalError("failed to list teams", err)
	}

	responses := make([]TeamResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

// Exists reports whether a team with the given id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, internal.NewInternalError("failed to load team", err)
	}
	return row != nil, nil
}

func (s *Service) Create(ctx context.Context, name string) (*Team, error) {
	name = strings.TrimSpace(name)

	v := validation.NewValidator()
	v.Field("name", name).Required().MaxLength(100)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	row := ToDataModel(NewTeam(name))
	if err := s.repo.Create(ctx, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, internal.NewConflictError("이미 존재하는 팀 이름입니다", internal.ErrCodeTeamNameTaken)
		}
		s.logger.Error("failed to create team", "name", name, "error", err)
		return nil, internal.NewInternalError("failed to create team", err)
	}

	s.logger.Info("team created", "team_id", row.ID, "name", name)
	return FromDataModel(row), nil
}

// Delete removes a team that no longer has any members.
func (s *Service) Delete(ctx context.Context, id int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to load team", err)
	}
	if row == nil {
		return internal.NewNotFoundError("팀을 찾을 수 없습니다", internal.ErrCodeTeamNotFound)
	}

	count, err := s.repo.CountMembers(ctx, id)
	if err != nil {
		return internal.NewInternalError("failed to count team members", err)
	}
	if count > 0 {
		return internal.NewBusinessRuleError(
			fmt.Sprintf("이 팀에 %d명의 직원이 있어 삭제할 수 없습니다", count),
			internal.ErrCodeTeamNotEmpty,
		).WithDetails(map[string]int64{"member_count": count})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		// a member joined after the count
		if storage.IsForeignKeyViolation(err) {
			return internal.NewBusinessRuleError("이 팀에 직원이 있어 삭제할 수 없습니다", internal.ErrCodeTeamNotEmpty)
		}
		s.logger.Error("failed to delete team", "team_id", id, "error", err)
		return internal.NewInternalError("failed to delete team", err)
	}

	s.logger.Info("team deleted", "team_id", id)
	return nil
}
