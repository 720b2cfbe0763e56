package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/auth"
	"github.com/frahmantamala/attendance/internal/core/common/validation"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/storage"
)

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByID(ctx context.Context, id int64) (*userDatamodel.UserWithTeam, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	ListWithTeams(ctx context.Context) ([]*userDatamodel.UserWithTeam, error)
	UpdateRole(ctx context.Context, id int64, role string) (bool, error)
	UpdateLeaveTotal(ctx context.Context, id int64, total float64) (bool, error)
	UpdateTeam(ctx context.Context, id int64, teamID *int64) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (bool, error)
}

// TeamChecker confirms a team reference before it is stored on a user.
type TeamChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type Service struct {
	repo            RepositoryAPI
	teams           TeamChecker
	tokens          auth.TokenGenerator
	hasher          PasswordHasher
	defaultPassword string
	logger          *slog.Logger
}

func NewService(repo RepositoryAPI, teams TeamChecker, tokens auth.TokenGenerator, hasher PasswordHasher, defaultPassword string, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		teams:           teams,
		tokens:          tokens,
		hasher:          hasher,
		defaultPassword: defaultPassword,
		logger:          logger,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (int64, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	v := validation.NewValidator()
	v.Field("name", req.Name).Required().MaxLength(100)
	v.Field("email", req.Email).Required().Email()
	v.Field("password", req.Password).Required().MinLength(4).MaxBytes(auth.MaxPasswordBytes)
	if appErr := v.Validate(); appErr != nil {
		return 0, appErr
	}

	if err := s.checkTeam(ctx, req.TeamID); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return 0, appErr
		}
		return 0, internal.NewInternalError("failed to hash password", err)
	}

	row := ToDataModel(NewUser(req.Name, req.Email, hash, req.TeamID))
	if err := s.repo.Create(ctx, row); err != nil {
		if storage.IsUniqueViolation(err) {
			return 0, internal.NewConflictError("이미 존재하는 이메일입니다", internal.ErrCodeEmailTaken)
		}
		s.logger.Error("failed to create user", "email", req.Email, "error", err)
		return 0, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", row.ID, "team_id", req.TeamID)
	return row.ID, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, internal.NewValidationError("email and password are required", internal.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil || !s.hasher.Compare(row.PasswordHash, req.Password) {
		s.logger.Warn("login failed", "email", email)
		return nil, internal.NewUnauthorizedError("이메일 또는 비밀번호가 틀렸습니다", internal.ErrCodeInvalidCredentials)
	}

	u, err := s.Get(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue access token", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID)
	return &LoginResponse{
		Success:     true,
		User:        u.ToResponse(),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}
	return FromDataModelWithTeam(row), nil
}

// ListEmployees returns every account, administrators included, with team names.
func (s *Service) ListEmployees(ctx context.Context) ([]UserResponse, error) {
	rows, err := s.repo.ListWithTeams(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}

	responses := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModelWithTeam(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) UpdateRole(ctx context.Context, id int64, role string) (string, error) {
	v := validation.NewValidator()
	v.Field("user_id", id).PositiveInt()
	v.Field("role", role).OneOf(internal.ErrCodeInvalidRole, RoleMember, RoleAdmin)
	if appErr := v.Validate(); appErr != nil {
		return "", appErr
	}

	found, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return "", internal.NewInternalError("failed to update role", err)
	}
	if !found {
		return "", internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}

	s.logger.Info("user role changed", "user_id", id, "role", role)
	if role == RoleAdmin {
		return "관리자로 변경되었습니다!", nil
	}
	return "일반 사용자로 변경되었습니다!", nil
}

// UpdateLeaveTotal sets the annual allowance. The used amount is left as is,
// so a lowered total may leave the balance negative.
func (s *Service) UpdateLeaveTotal(ctx context.Context, id int64, total float64) error {
	v := validation.NewValidator()
	v.Field("user_id", id).PositiveInt()
	v.Field("total", total).NonNegativeFloat(internal.ErrCodeValidationFailed)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	found, err := s.repo.UpdateLeaveTotal(ctx, id, total)
	if err != nil {
		return internal.NewInternalError("failed to update annual leave", err)
	}
	if !found {
		return internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}

	s.logger.Info("annual leave total changed", "user_id", id, "total", total)
	return nil
}

// AssignTeam moves a user to another team, or out of any team when teamID is nil.
func (s *Service) AssignTeam(ctx context.Context, id int64, teamID *int64) error {
	if err := s.checkTeam(ctx, teamID); err != nil {
		return err
	}

	found, err := s.repo.UpdateTeam(ctx, id, teamID)
	if err != nil {
		return internal.NewInternalError("failed to update team", err)
	}
	if !found {
		return internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}

	s.logger.Info("user team changed", "user_id", id, "team_id", teamID)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, id int64) error {
	hash, err := s.hasher.Hash(s.defaultPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	found, err := s.repo.UpdatePassword(ctx, id, hash)
	if err != nil {
		return internal.NewInternalError("failed to reset password", err)
	}
	if !found {
		return internal.NewNotFoundError("사용자를 찾을 수 없습니다", internal.ErrCodeUserNotFound)
	}

	s.logger.Info("password reset to default", "user_id", id)
	return nil
}

// EnsureAdmin creates an administrator account with the default password
// unless the email is already registered. It reports whether a row was added.
func (s *Service) EnsureAdmin(ctx context.Context, name, email string) (bool, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return false, internal.NewInternalError("failed to load user", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := s.hasher.Hash(s.defaultPassword)
	if err != nil {
		return false, internal.NewInternalError("failed to hash password", err)
	}

	u := NewUser(name, email, hash, nil)
	u.Role = RoleAdmin
	if err := s.repo.Create(ctx, ToDataModel(u)); err != nil {
		if storage.IsUniqueViolation(err) {
			return false, nil
		}
		return false, internal.NewInternalError("failed to create admin", err)
	}
	return true, nil
}

func (s *Service) checkTeam(ctx context.Context, teamID *int64) error {
	if teamID == nil {
		return nil
	}
	ok, err := s.teams.Exists(ctx, *teamID)
	if err != nil {
		return err
	}
	if !ok {
		return internal.NewValidationFieldError("team_id", "팀을 찾을 수 없습니다", internal.ErrCodeTeamNotFound)
	}
	return nil
}
