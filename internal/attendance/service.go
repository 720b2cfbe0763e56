package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance/internal/geofence"
	"github.com/frahmantamala/attendance/internal/settings"
	"github.com/frahmantamala/attendance/internal/storage"
)

type RepositoryAPI interface {
	UserExists(ctx context.Context, userID int64) (bool, error)
	FindOpen(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Session, error)
	FindLatest(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Session, error)
	ListByDate(ctx context.Context, userID int64, date string) ([]*attendanceDatamodel.Session, error)
	SumByDates(ctx context.Context, userID int64, dates []string) (map[string]int, error)
	Create(ctx context.Context, s *attendanceDatamodel.Session) error
	Close(ctx context.Context, id int64, clockOut string, workMinutes int) (bool, error)
	Save(ctx context.Context, s *attendanceDatamodel.Session) error
}

// SettingsProvider exposes the current company settings.
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

func (s *Service) ClockIn(ctx context.Context, userID int64, pos geofence.Point) (*ClockInResponse, error) {
	if userID <= 0 {
		return nil, internal.NewValidationFieldError("user_id", "user_id must be a positive integer", internal.ErrCodeValidationFailed)
	}
	if err := pos.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidLocation)
	}

	cfg := s.settings.Get()
	fence := geofence.Check(pos, cfg.Center(), cfg.RadiusMeters)
	if !fence.Inside() {
		s.logger.Info("clock-in outside geofence", "user_id", userID, "distance_m", fence.TruncatedDistance(), "radius_m", cfg.RadiusMeters)
		return nil, internal.NewBusinessRuleError(
			fmt.Sprintf("회사에서 너무 멀어요! (%dm)", fence.TruncatedDistance()),
			internal.ErrCodeOutsideGeofence,
		).WithDetails(map[string]interface{}{
			"distance_meters": fence.TruncatedDistance(),
			"radius_meters":   cfg.RadiusMeters,
		})
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	today := s.clock.Today()
	open, err := s.repo.FindOpen(ctx, userID, today)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	if open != nil {
		return nil, alreadyClockedIn()
	}

	now := s.clock.NowHM()
	row := &attendanceDatamodel.Session{UserID: userID, Date: today, ClockIn: &now}
	if err := s.repo.Create(ctx, row); err != nil {
		// a concurrent clock-in won the race for the open-session index
		if storage.IsUniqueViolation(err) {
			return nil, alreadyClockedIn()
		}
		s.logger.Error("failed to record clock-in", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("failed to record clock-in", err)
	}

	s.logger.Info("clocked in", "user_id", userID, "date", today, "clock_in", now, "distance_m", fence.TruncatedDistance())
	return &ClockInResponse{Success: true, ClockIn: now, Message: "출근 완료!"}, nil
}

func (s *Service) ClockOut(ctx context.Context, userID int64) (*ClockOutResponse, error) {
	if userID <= 0 {
		return nil, internal.NewValidationFieldError("user_id", "user_id must be a positive integer", internal.ErrCodeValidationFailed)
	}

	today := s.clock.Today()
	open, err := s.repo.FindOpen(ctx, userID, today)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	if open == nil {
		return nil, notClockedIn()
	}

	now := s.clock.NowHM()
	minutes, err := clock.MinutesBetween(*open.ClockIn, now)
	if err != nil {
		return nil, internal.NewInternalError("stored clock-in is malformed", err)
	}
	if minutes < 0 {
		minutes = 0
	}

	closed, err := s.repo.Close(ctx, open.ID, now, minutes)
	if err != nil {
		s.logger.Error("failed to record clock-out", "user_id", userID, "session_id", open.ID, "error", err)
		return nil, internal.NewInternalError("failed to record clock-out", err)
	}
	if !closed {
		return nil, notClockedIn()
	}

	s.logger.Info("clocked out", "user_id", userID, "session_id", open.ID, "clock_out", now, "work_minutes", minutes)
	return &ClockOutResponse{Success: true, ClockOut: now, WorkMinutes: minutes, Message: "퇴근 완료!"}, nil
}

// Today lists today's sessions. The total counts closed sessions only; the
// running session is reported separately as elapsed minutes.
func (s *Service) Today(ctx context.Context, userID int64) (*TodayResponse, error) {
	rows, err := s.repo.ListByDate(ctx, userID, s.clock.Today())
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}

	resp := &TodayResponse{Sessions: make([]*Session, 0, len(rows))}
	for _, row := range rows {
		session := FromDataModel(row)
		resp.Sessions = append(resp.Sessions, session)
		if session.IsClosed() {
			resp.TotalMinutes += session.WorkMinutes
		}
	}

	if n := len(resp.Sessions); n > 0 && resp.Sessions[n-1].IsOpen() {
		last := resp.Sessions[n-1]
		resp.IsWorking = true
		resp.CurrentClockIn = last.ClockIn
		resp.CurrentElapsedMinutes = s.clock.ElapsedSince(*last.ClockIn)
	}
	return resp, nil
}

func (s *Service) Weekly(ctx context.Context, userID int64) (*WeeklyResponse, error) {
	dates := s.clock.Week()
	sums, err := s.repo.SumByDates(ctx, userID, dates)
	if err != nil {
		return nil, internal.NewInternalError("failed to load weekly attendance", err)
	}

	today := s.clock.Today()
	open, err := s.repo.FindOpen(ctx, userID, today)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}

	resp := &WeeklyResponse{
		Days:        make([]DayMinutes, 0, len(dates)),
		TargetHours: s.settings.Get().WeeklyHours,
	}
	for _, date := range dates {
		minutes := sums[date]
		if date == today && open != nil && open.ClockIn != nil {
			minutes += s.clock.ElapsedSince(*open.ClockIn)
		}
		resp.Days = append(resp.Days, DayMinutes{Date: date, Minutes: minutes})
		resp.TotalMinutes += minutes
	}
	resp.ProgressPercent = Progress(resp.TotalMinutes, resp.TargetHours)
	return resp, nil
}

// Progress is the share of the weekly target reached, capped at 100 and
// rounded to one decimal.
func Progress(totalMinutes int, targetHours float64) float64 {
	if targetHours <= 0 {
		return 0
	}
	pct := float64(totalMinutes) / 60 / targetHours * 100
	return math.Min(100, math.Round(pct*10)/10)
}

// AdminUpdate corrects the latest session on a date, creating it when the
// day has none. It is not bound by the clock-in/clock-out sequence.
func (s *Service) AdminUpdate(ctx context.Context, req AdminUpdateRequest) (*MessageResponse, error) {
	v := validation.NewValidator()
	v.Field("user_id", req.UserID).PositiveInt()
	v.Field("date", req.Date).Required().Date()
	v.Field("clock_in", req.ClockIn).TimeOfDay()
	v.Field("clock_out", req.ClockOut).TimeOfDay()
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}
	if req.ClockIn == nil && req.ClockOut == nil {
		return nil, internal.NewValidationError("clock_in or clock_out is required", internal.ErrCodeValidationFailed)
	}

	if err := s.requireUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	row, err := s.repo.FindLatest(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, internal.NewInternalError("failed to load attendance", err)
	}
	if row == nil {
		row = &attendanceDatamodel.Session{UserID: req.UserID, Date: req.Date}
	}
	if req.ClockIn != nil {
		row.ClockIn = req.ClockIn
	}
	if req.ClockOut != nil {
		row.ClockOut = req.ClockOut
	}

	row.WorkMinutes = 0
	if row.ClockIn != nil && row.ClockOut != nil {
		minutes, err := clock.MinutesBetween(*row.ClockIn, *row.ClockOut)
		if err != nil {
			return nil, internal.NewValidationError(err.Error(), internal.ErrCodeInvalidTime)
		}
		if minutes < 0 {
			return nil, internal.NewValidationFieldError("clock_out", "clock_out must not be earlier than clock_in", internal.ErrCodeInvalidTime)
		}
		row.WorkMinutes = minutes
	}

	if err := s.repo.Save(ctx, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, internal.NewConflictError("이미 진행 중인 출근 기록이 있습니다", internal.ErrCodeOpenSessionExists)
		}
		s.logger.Error("failed to save attendance correction", "user_id", req.UserID, "date", req.Date, "error", err)
		return nil, internal.NewInternalError("failed to save attendance", err)
	}

	s.logger.Info("attendance corrected", "user_id", req.UserID, "date", req.Date, "session_id", row.ID, "work_minutes", row.WorkMinutes)
	return &MessageResponse{Success: true, Message: "출퇴근 기록이 수정되었습니다"}, nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	ok, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return internal.NewInternalError("failed to load user", err)
	}
	if !ok {
		return internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}
	return nil
}

func alreadyClockedIn() *internal.AppError {
	return internal.NewConflictError("이미 출근 중입니다", internal.ErrCodeAlreadyClockedIn)
}

func notClockedIn() *internal.AppError {
	return internal.NewBusinessRuleError("출근 기록이 없습니다", internal.ErrCodeNotClockedIn)
}
