package team_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/frahmantamala/attendance/internal"
	teamDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/team"
	"github.com/frahmantamala/attendance/internal/team"
	"github.com/frahmantamala/attendance/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTeamService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Team Service Suite")
}

// MockRepository implements team.RepositoryAPI for testing
type MockRepository struct {
	teams      map[int64]*teamDatamodel.Team
	members    map[int64]int64
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		teams:   make(map[int64]*teamDatamodel.Team),
		members: make(map[int64]int64),
	}
}

func (m *MockRepository) GetAll(_ context.Context) ([]*teamDatamodel.Team, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*teamDatamodel.Team
	for id := int64(1); id <= m.nextID; id++ {
		if t, ok := m.teams[id]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*teamDatamodel.Team, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.teams[id], nil
}

func (m *MockRepository) Create(_ context.Context, t *teamDatamodel.Team) error {
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.teams {
		if existing.Name == t.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	t.ID = m.nextID
	m.teams[t.ID] = t
	return nil
}

func (m *MockRepository) CountMembers(_ context.Context, id int64) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	return m.members[id], nil
}

func (m *MockRepository) Delete(_ context.Context, id int64) error {
	if m.shouldFail {
		return m.failError
	}
	if m.members[id] > 0 {
		return gorm.ErrForeignKeyViolated
	}
	delete(m.teams, id)
	return nil
}

// lateJoinRepository adds a member right after the service counted none.
type lateJoinRepository struct {
	*MockRepository
}

func (r lateJoinRepository) CountMembers(ctx context.Context, id int64) (int64, error) {
	count, err := r.MockRepository.CountMembers(ctx, id)
	r.members[id]++
	return count, err
}

// Helper methods for testing
func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockRepository) SetMembers(teamID, count int64) {
	m.members[teamID] = count
}

var _ = Describe("Team Service", func() {
	var (
		ctx      context.Context
		mockRepo *MockRepository
		service  *team.Service
		log      *slog.Logger
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		log = logger.Discard()
		service = team.NewService(mockRepo, log)
	})

	Describe("Create", func() {
		It("creates a team and returns its id", func() {
			created, err := service.Create(ctx, "  개발팀 ")
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal(int64(1)))
			Expect(created.Name).To(Equal("개발팀"))
		})

		It("rejects a blank name", func() {
			_, err := service.Create(ctx, "   ")
			Expect(internal.HasType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("reports a duplicate name as a conflict", func() {
			_, err := service.Create(ctx, "기획팀")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, "기획팀")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("List", func() {
		It("returns teams in id order", func() {
			_, _ = service.Create(ctx, "개발팀")
			_, _ = service.Create(ctx, "기획팀")

			teams, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(teams).To(HaveLen(2))
			Expect(teams[0].Name).To(Equal("개발팀"))
		})

		It("wraps repository failures as internal errors", func() {
			mockRepo.SetShouldFail(true, errors.New("db down"))
			_, err := service.List(ctx)
			Expect(internal.HasType(err, internal.ErrorTypeInternal)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("refuses to delete a team that still has members", func() {
			created, _ := service.Create(ctx, "연구팀")
			mockRepo.SetMembers(created.ID, 2)

			err := service.Delete(ctx, created.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBusinessRule))
			Expect(appErr.Message).To(ContainSubstring("2명"))
		})

		It("deletes an empty team", func() {
			created, _ := service.Create(ctx, "연구팀")
			Expect(service.Delete(ctx, created.ID)).To(Succeed())

			exists, err := service.Exists(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("refuses the delete when a member joins after the count", func() {
			created, _ := service.Create(ctx, "연구팀")
			racing := team.NewService(lateJoinRepository{MockRepository: mockRepo}, log)

			err := racing.Delete(ctx, created.ID)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeBusinessRule))
			Expect(appErr.Code).To(Equal(internal.ErrCodeTeamNotEmpty))

			exists, err := service.Exists(ctx, created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("returns not found for an unknown team", func() {
			err := service.Delete(ctx, 42)
			Expect(internal.HasType(err, internal.ErrorTypeNotFound)).To(BeTrue())
		})
	})
})
