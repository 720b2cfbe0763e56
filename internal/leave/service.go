package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance/internal/storage"
)

// ErrInsufficientBalance is returned by Book when the conditional balance
// update matched no row.
var ErrInsufficientBalance = errors.New("insufficient leave balance")

// Balance is a user's annual allowance and what has been taken from it.
type Balance struct {
	Total float64
	Used  float64
}

func (b Balance) Remaining() float64 {
	return b.Total - b.Used
}

type RepositoryAPI interface {
	GetBalance(ctx context.Context, userID int64) (*Balance, error)
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.Entry, error)
	ListByUser(ctx context.Context, userID int64) ([]*leaveDatamodel.Entry, error)
	ListByDates(ctx context.Context, userID int64, dates []string) ([]*leaveDatamodel.Entry, error)
	// Book inserts e and adds deduction to the user's used days in one
	// transaction, returning the balance as committed.
	Book(ctx context.Context, e *leaveDatamodel.Entry, deduction float64) (*Balance, error)
	// Cancel deletes the entry and gives deduction back in one transaction.
	// It reports false when the entry was already gone.
	Cancel(ctx context.Context, e *leaveDatamodel.Entry, deduction float64) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	clock  *clock.Clock
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, clk *clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

func (s *Service) Request(ctx context.Context, req CreateLeaveRequest) (*CreateLeaveResponse, error) {
	v := validation.NewValidator()
	v.Field("user_id", req.UserID).PositiveInt()
	v.Field("date", req.Date).Required().Date()
	v.Field("type", req.Type).OneOf(internal.ErrCodeInvalidLeaveType, TypeAnnual, TypeHalfAM, TypeHalfPM)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	balance, err := s.balance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	deduction := Deduction(req.Type)
	if balance.Remaining() < deduction {
		return nil, insufficient(balance.Remaining())
	}

	row := &leaveDatamodel.Entry{UserID: req.UserID, Date: req.Date, Type: req.Type}
	booked, err := s.repo.Book(ctx, row, deduction)
	if err != nil {
		switch {
		case storage.IsUniqueViolation(err):
			return nil, internal.NewConflictError("이미 해당 날짜에 휴가가 있습니다", internal.ErrCodeLeaveDateTaken)
		case errors.Is(err, ErrInsufficientBalance):
			// another request spent the balance first
			latest, lerr := s.balance(ctx, req.UserID)
			if lerr != nil {
				return nil, lerr
			}
			return nil, insufficient(latest.Remaining())
		}
		s.logger.Error("failed to book leave", "user_id", req.UserID, "date", req.Date, "error", err)
		return nil, internal.NewInternalError("failed to book leave", err)
	}

	s.logger.Info("leave booked", "user_id", req.UserID, "leave_id", row.ID, "date", req.Date, "type", req.Type)
	return &CreateLeaveResponse{
		Success:   true,
		LeaveID:   row.ID,
		Remaining: booked.Remaining(),
	}, nil
}

func (s *Service) Cancel(ctx context.Context, leaveID int64) error {
	row, err := s.repo.GetByID(ctx, leaveID)
	if err != nil {
		return internal.NewInternalError("failed to load leave", err)
	}
	if row == nil {
		return notFound()
	}

	removed, err := s.repo.Cancel(ctx, row, Deduction(row.Type))
	if err != nil {
		s.logger.Error("failed to cancel leave", "leave_id", leaveID, "error", err)
		return internal.NewInternalError("failed to cancel leave", err)
	}
	if !removed {
		return notFound()
	}

	s.logger.Info("leave cancelled", "user_id", row.UserID, "leave_id", leaveID, "type", row.Type)
	return nil
}

// ListByUser returns the user's leave, newest date first.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Entry, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave", err)
	}
	entries := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, FromDataModel(row))
	}
	return entries, nil
}

// UserWeek reports the leave type, if any, for each weekday of the current week.
func (s *Service) UserWeek(ctx context.Context, userID int64) ([]WeekDay, error) {
	dates := s.clock.Week()
	rows, err := s.repo.ListByDates(ctx, userID, dates)
	if err != nil {
		return nil, internal.NewInternalError("failed to list leave", err)
	}

	byDate := make(map[string]string, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Type
	}

	week := make([]WeekDay, 0, len(dates))
	for _, date := range dates {
		day := WeekDay{Date: date}
		if t, ok := byDate[date]; ok {
			day.Type = &t
		}
		week = append(week, day)
	}
	return week, nil
}

func (s *Service) balance(ctx context.Context, userID int64) (*Balance, error) {
	b, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load leave balance", err)
	}
	if b == nil {
		return nil, internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}
	return b, nil
}

func insufficient(remaining float64) *internal.AppError {
	return internal.NewBusinessRuleError(
		fmt.Sprintf("연차가 부족합니다! (잔여: %s일)", strconv.FormatFloat(remaining, 'f', -1, 64)),
		internal.ErrCodeInsufficientLeave,
	).WithDetails(map[string]float64{"remaining": remaining})
}

func notFound() *internal.AppError {
	return internal.NewNotFoundError("휴가를 찾을 수 없습니다", internal.ErrCodeLeaveNotFound)
}
