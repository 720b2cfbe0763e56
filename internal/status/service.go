package status

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/attendance"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
	"github.com/frahmantamala/attendance/internal/settings"
	"github.com/xuri/excelize/v2"
)

type RepositoryAPI interface {
	TeamExists(ctx context.Context, teamID int64) (bool, error)
	// ListMembers returns non-admin users, restricted to one team when
	// teamID is set.
	ListMembers(ctx context.Context, teamID *int64) ([]Member, error)
	LatestSessions(ctx context.Context, userIDs []int64, date string) (map[int64]*attendanceDatamodel.Session, error)
	LeaveTypes(ctx context.Context, userIDs []int64, date string) (map[int64]string, error)
	Schedules(ctx context.Context, userIDs []int64, date string) (map[int64]*scheduleDatamodel.Entry, error)
	// Hours sums work minutes per non-admin user for dates in [from, to].
	Hours(ctx context.Context, from, to string) ([]Hours, error)
}

type SettingsProvider interface {
	Get() settings.Settings
}

type Service struct {
	repo     RepositoryAPI
	settings SettingsProvider
	clock    *clock.Clock
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, settings SettingsProvider, clk *clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		clock:    clk,
		logger:   logger,
	}
}

// dayView is everything known about a set of users on one date.
type dayView struct {
	sessions  map[int64]*attendanceDatamodel.Session
	leave     map[int64]string
	schedules map[int64]*scheduleDatamodel.Entry
}

func (d dayView) status(userID int64) (Status, *attendance.Session) {
	var session *attendance.Session
	if row, ok := d.sessions[userID]; ok {
		session = attendance.FromDataModel(row)
	}
	var leaveType *string
	if t, ok := d.leave[userID]; ok {
		leaveType = &t
	}
	return Derive(leaveType, session), session
}

func (s *Service) TeamStatus(ctx context.Context, teamID int64, date string) ([]TeamMemberStatus, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.TeamExists(ctx, teamID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load team", err)
	}
	if !ok {
		return nil, internal.NewNotFoundError("팀을 찾을 수 없습니다", internal.ErrCodeTeamNotFound)
	}

	members, err := s.repo.ListMembers(ctx, &teamID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list team members", err)
	}
	view, err := s.load(ctx, members, date, true)
	if err != nil {
		return nil, err
	}

	cfg := s.settings.Get()
	result := make([]TeamMemberStatus, 0, len(members))
	for _, m := range members {
		st, session := view.status(m.ID)
		row := TeamMemberStatus{
			ID:         m.ID,
			Name:       m.Name,
			Status:     st.Label,
			StatusCode: st.Code,
			PlannedIn:  cfg.DefaultIn,
			PlannedOut: cfg.DefaultOut,
		}
		if session != nil {
			row.ClockIn = session.ClockIn
			row.ClockOut = session.ClockOut
		}
		if plan, ok := view.schedules[m.ID]; ok {
			row.PlannedIn = plan.PlannedIn
			row.PlannedOut = plan.PlannedOut
			row.IsScheduled = true
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *Service) AllStatus(ctx context.Context, date string) ([]UserStatus, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to list users", err)
	}
	view, err := s.load(ctx, members, date, false)
	if err != nil {
		return nil, err
	}

	result := make([]UserStatus, 0, len(members))
	for _, m := range members {
		st, session := view.status(m.ID)
		row := UserStatus{
			ID:         m.ID,
			Name:       m.Name,
			Role:       m.Role,
			Team:       m.TeamName,
			Status:     st.Label,
			StatusCode: st.Code,
		}
		if session != nil {
			row.ClockIn = session.ClockIn
			row.ClockOut = session.ClockOut
			row.WorkMinutes = session.WorkMinutes
		}
		result = append(result, row)
	}
	return result, nil
}

// Hours rolls up worked minutes for the current week (Monday to Friday) or
// the month to date, largest total first.
func (s *Service) Hours(ctx context.Context, period string) ([]Hours, error) {
	from, to, err := s.periodRange(period)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Hours(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to aggregate hours", "period", period, "error", err)
		return nil, internal.NewInternalError("failed to aggregate hours", err)
	}
	if rows == nil {
		rows = []Hours{}
	}
	return rows, nil
}

// HoursWorkbook renders the Hours rollup as an XLSX document.
func (s *Service) HoursWorkbook(ctx context.Context, period string) (*bytes.Buffer, error) {
	rows, err := s.Hours(ctx, period)
	if err != nil {
		return nil, err
	}
	from, to, _ := s.periodRange(period)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "hours"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, internal.NewInternalError("failed to build workbook", err)
	}

	header := []interface{}{"ID", "이름", "팀", "근무(분)", "근무(시간)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, internal.NewInternalError("failed to build workbook", err)
	}
	for i, r := range rows {
		team := ""
		if r.Team != nil {
			team = *r.Team
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, internal.NewInternalError("failed to build workbook", err)
		}
		values := []interface{}{r.ID, r.Name, team, r.TotalMinutes, float64(r.TotalMinutes) / 60}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, internal.NewInternalError("failed to build workbook", err)
		}
	}
	_ = f.SetDocProps(&excelize.DocProperties{Title: fmt.Sprintf("근무시간 %s ~ %s", from, to)})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, internal.NewInternalError("failed to write workbook", err)
	}
	return buf, nil
}

func (s *Service) load(ctx context.Context, members []Member, date string, withSchedules bool) (dayView, error) {
	view := dayView{}
	if len(members) == 0 {
		return view, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	var err error
	if view.sessions, err = s.repo.LatestSessions(ctx, ids, date); err != nil {
		return view, internal.NewInternalError("failed to load attendance", err)
	}
	if view.leave, err = s.repo.LeaveTypes(ctx, ids, date); err != nil {
		return view, internal.NewInternalError("failed to load leave", err)
	}
	if withSchedules {
		if view.schedules, err = s.repo.Schedules(ctx, ids, date); err != nil {
			return view, internal.NewInternalError("failed to load schedules", err)
		}
	}
	return view, nil
}

func (s *Service) resolveDate(date string) (string, error) {
	if date == "" {
		return s.clock.Today(), nil
	}
	v := validation.NewValidator()
	v.Field("date", date).Date()
	if appErr := v.Validate(); appErr != nil {
		return "", appErr
	}
	return date, nil
}

func (s *Service) periodRange(period string) (string, string, error) {
	switch period {
	case "", PeriodWeek:
		week := s.clock.Week()
		return week[0], week[len(week)-1], nil
	case PeriodMonth:
		from, to := s.clock.MonthToDate()
		return from, to, nil
	}
	return "", "", internal.NewValidationFieldError("period", "period must be week or month", internal.ErrCodeInvalidPeriod)
}
