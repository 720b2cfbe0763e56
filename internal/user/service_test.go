package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/auth"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/user"
	"github.com/frahmantamala/attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users      map[int64]*userDatamodel.User
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*userDatamodel.User)}
}

func (m *MockRepository) Create(_ context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*userDatamodel.UserWithTeam, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &userDatamodel.UserWithTeam{User: *u}, nil
}

func (m *MockRepository) GetByEmail(_ context.Context, email string) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) ListWithTeams(_ context.Context) ([]*userDatamodel.UserWithTeam, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*userDatamodel.UserWithTeam
	for id := int64(1); id <= m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			result = append(result, &userDatamodel.UserWithTeam{User: *u})
		}
	}
	return result, nil
}

func (m *MockRepository) mutate(id int64, fn func(u *userDatamodel.User)) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	fn(u)
	return true, nil
}

func (m *MockRepository) UpdateRole(_ context.Context, id int64, role string) (bool, error) {
	return m.mutate(id, func(u *userDatamodel.User) { u.Role = role })
}

func (m *MockRepository) UpdateLeaveTotal(_ context.Context, id int64, total float64) (bool, error) {
	return m.mutate(id, func(u *userDatamodel.User) { u.AnnualLeaveTotal = total })
}

func (m *MockRepository) UpdateTeam(_ context.Context, id int64, teamID *int64) (bool, error) {
	return m.mutate(id, func(u *userDatamodel.User) { u.TeamID = teamID })
}

func (m *MockRepository) UpdatePassword(_ context.Context, id int64, hash string) (bool, error) {
	return m.mutate(id, func(u *userDatamodel.User) { u.PasswordHash = hash })
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type stubTeams map[int64]bool

func (s stubTeams) Exists(_ context.Context, id int64) (bool, error) {
	return s[id], nil
}

var _ = Describe("User Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		tokens   *auth.JWTTokenGenerator
		service  *user.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		tokens = auth.NewJWTTokenGenerator("user-service-secret", time.Hour)
		service = user.NewService(mockRepo, stubTeams{1: true}, tokens, auth.NewPasswordHasher(4), "123456", logger.Discard())
	})

	register := func(email string) int64 {
		team := int64(1)
		id, err := service.Register(ctx, user.RegisterRequest{Name: "홍길동", Email: email, Password: "secret", TeamID: &team})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	Describe("Register", func() {
		It("stores a member with the default allowance and a hashed password", func() {
			id := register("hong@jbuh.kr")

			stored := mockRepo.users[id]
			Expect(stored.Role).To(Equal(user.RoleMember))
			Expect(stored.AnnualLeaveTotal).To(Equal(15.0))
			Expect(stored.PasswordHash).NotTo(Equal("secret"))
		})

		It("reports a taken email as a conflict", func() {
			register("hong@jbuh.kr")
			_, err := service.Register(ctx, user.RegisterRequest{Name: "b", Email: "HONG@jbuh.kr", Password: "secret"})
			Expect(internal.HasType(err, internal.ErrorTypeConflict)).To(BeTrue())
		})

		It("rejects an unknown team", func() {
			team := int64(9)
			_, err := service.Register(ctx, user.RegisterRequest{Name: "a", Email: "a@jbuh.kr", Password: "secret", TeamID: &team})
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("validates required fields", func() {
			_, err := service.Register(ctx, user.RegisterRequest{Email: "not-an-email"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(len(details.Errors)).To(BeNumerically(">=", 3))
		})

		It("rejects passwords longer than bcrypt accepts as a validation error", func() {
			for _, password := range []string{
				strings.Repeat("a", auth.MaxPasswordBytes+1),
				// 25 runes, 75 bytes
				strings.Repeat("비", 25),
			} {
				_, err := service.Register(ctx, user.RegisterRequest{Name: "홍길동", Email: "long@jbuh.kr", Password: password})
				Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
				appErr, _ := internal.IsAppError(err)
				details := appErr.Details.(internal.ValidationErrors)
				Expect(details.Errors).To(ContainElement(HaveField("Field", "password")))
			}
			Expect(mockRepo.users).To(BeEmpty())
		})

		It("accepts a password of exactly the byte limit", func() {
			_, err := service.Register(ctx, user.RegisterRequest{Name: "홍길동", Email: "edge@jbuh.kr", Password: strings.Repeat("a", auth.MaxPasswordBytes)})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Login", func() {
		It("returns the user and a token that carries the role", func() {
			id := register("hong@jbuh.kr")

			resp, err := service.Login(ctx, user.LoginRequest{Email: "hong@jbuh.kr", Password: "secret"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.ID).To(Equal(id))
			Expect(resp.User.AnnualLeaveRemaining).To(Equal(15.0))

			claims, err := tokens.ValidateToken(resp.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(id))
			Expect(claims.Role).To(Equal(user.RoleMember))
		})

		It("rejects a wrong password with 401", func() {
			register("hong@jbuh.kr")
			_, err := service.Login(ctx, user.LoginRequest{Email: "hong@jbuh.kr", Password: "wrong"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(401))
		})
	})

	Describe("UpdateRole", func() {
		It("returns the promotion message", func() {
			id := register("hong@jbuh.kr")
			msg, err := service.UpdateRole(ctx, id, user.RoleAdmin)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("관리자로 변경되었습니다!"))

			msg, err = service.UpdateRole(ctx, id, user.RoleMember)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(Equal("일반 사용자로 변경되었습니다!"))
		})

		It("rejects unknown roles", func() {
			id := register("hong@jbuh.kr")
			_, err := service.UpdateRole(ctx, id, "owner")
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("returns not found for a missing user", func() {
			_, err := service.UpdateRole(ctx, 77, user.RoleAdmin)
			Expect(internal.HasType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})

	Describe("UpdateLeaveTotal", func() {
		It("allows lowering the total below what was used", func() {
			id := register("hong@jbuh.kr")
			mockRepo.users[id].AnnualLeaveUsed = 3
			Expect(service.UpdateLeaveTotal(ctx, id, 2)).To(Succeed())

			u, err := service.Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.RemainingLeave()).To(Equal(-1.0))
		})

		It("rejects a negative total", func() {
			id := register("hong@jbuh.kr")
			err := service.UpdateLeaveTotal(ctx, id, -1)
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("ResetPassword", func() {
		It("restores the default password", func() {
			id := register("hong@jbuh.kr")
			Expect(service.ResetPassword(ctx, id)).To(Succeed())

			_, err := service.Login(ctx, user.LoginRequest{Email: "hong@jbuh.kr", Password: "123456"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("EnsureAdmin", func() {
		It("creates the administrator once", func() {
			created, err := service.EnsureAdmin(ctx, "관리자", "admin@jbuh.kr")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			created, err = service.EnsureAdmin(ctx, "관리자", "admin@jbuh.kr")
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())

			resp, err := service.Login(ctx, user.LoginRequest{Email: "admin@jbuh.kr", Password: "123456"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.Role).To(Equal(user.RoleAdmin))
		})
	})

	It("wraps repository failures as internal errors", func() {
		mockRepo.SetShouldFail(true, errors.New("db down"))
		_, err := service.ListEmployees(ctx)
		Expect(internal.HasType(err, internal.ErrorTypeInternal)).To(BeTrue())
	})
})
