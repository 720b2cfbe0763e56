package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
	"github.com/frahmantamala/attendance/internal/settings"
	"github.com/frahmantamala/attendance/internal/storage"
)

type RepositoryAPI interface {
	Get(ctx context.Context, userID int64, date string) (*scheduleDatamodel.Entry, error)
	ListByDates(ctx context.Context, userID int64, dates []string) ([]*scheduleDatamodel.Entry, error)
	Upsert(ctx context.Context, entries ...*scheduleDatamodel.Entry) error
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

// Get returns the stored plan for the day or the company default window.
func (s *Service) Get(ctx context.Context, userID int64, date string) (*Day, error) {
	v := validation.NewValidator()
	v.Field("date", date).Required().Date()
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	row, err := s.repo.Get(ctx, userID, date)
	if err != nil {
		return nil, internal.NewInternalError("failed to load schedule", err)
	}
	day := s.defaultDay(date)
	if row != nil {
		day = Day{Date: date, PlannedIn: row.PlannedIn, PlannedOut: row.PlannedOut}
	}
	return &day, nil
}

// Week returns Monday to Friday of the current week, defaulting missing days.
func (s *Service) Week(ctx context.Context, userID int64) ([]Day, error) {
	dates := s.clock.Week()
	rows, err := s.repo.ListByDates(ctx, userID, dates)
	if err != nil {
		return nil, internal.NewInternalError("failed to load schedule", err)
	}

	stored := make(map[string]*scheduleDatamodel.Entry, len(rows))
	for _, row := range rows {
		stored[row.Date] = row
	}

	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		if row, ok := stored[date]; ok {
			days = append(days, Day{Date: date, PlannedIn: row.PlannedIn, PlannedOut: row.PlannedOut})
			continue
		}
		days = append(days, s.defaultDay(date))
	}
	return days, nil
}

func (s *Service) Upsert(ctx context.Context, userID int64, entry Entry) error {
	return s.UpsertMany(ctx, userID, []Entry{entry})
}

// UpsertMany stores every entry or none of them.
func (s *Service) UpsertMany(ctx context.Context, userID int64, entries []Entry) error {
	if userID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id must be a positive integer", internal.ErrCodeValidationFailed)
	}
	if len(entries) == 0 {
		return internal.NewValidationFieldError("schedules", "schedules must not be empty", internal.ErrCodeValidationFailed)
	}

	v := validation.NewValidator()
	rows := make([]*scheduleDatamodel.Entry, 0, len(entries))
	for i, e := range entries {
		prefix := fmt.Sprintf("schedules[%d].", i)
		if len(entries) == 1 {
			prefix = ""
		}
		v.Field(prefix+"date", e.Date).Required().Date()
		v.Field(prefix+"planned_in", e.PlannedIn).Required().TimeOfDay()
		v.Field(prefix+"planned_out", e.PlannedOut).Required().TimeOfDay().Custom(outAfterIn(prefix, e))
		rows = append(rows, ToDataModel(userID, e))
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if err := s.repo.Upsert(ctx, rows...); err != nil {
		if storage.IsForeignKeyViolation(err) {
			return internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
		}
		s.logger.Error("failed to store schedule", "user_id", userID, "entries", len(rows), "error", err)
		return internal.NewInternalError("failed to store schedule", err)
	}

	s.logger.Info("schedule stored", "user_id", userID, "entries", len(rows))
	return nil
}

func (s *Service) defaultDay(date string) Day {
	cfg := s.settings.Get()
	return Day{Date: date, PlannedIn: cfg.DefaultIn, PlannedOut: cfg.DefaultOut, IsDefault: true}
}

func outAfterIn(prefix string, e Entry) func(interface{}) *internal.AppError {
	return func(interface{}) *internal.AppError {
		minutes, err := clock.MinutesBetween(e.PlannedIn, e.PlannedOut)
		if err == nil && minutes < 0 {
			return internal.NewValidationFieldError(prefix+"planned_out", "planned_out must not be earlier than planned_in", internal.ErrCodeInvalidTime)
		}
		return nil
	}
}
