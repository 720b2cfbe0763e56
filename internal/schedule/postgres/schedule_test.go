package postgres_test

import (
	"context"
	"testing"

	scheduleDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/schedule"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/schedule"
	schedulePostgres "github.com/frahmantamala/attendance/internal/schedule/postgres"
	"github.com/frahmantamala/attendance/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSchedulePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Schedule Postgres Suite")
}

var _ = Describe("Schedule Repository", func() {
	var (
		ctx    context.Context
		db     *storage.DB
		repo   schedule.RepositoryAPI
		userID int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = storage.OpenMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		repo = schedulePostgres.NewScheduleRepository(db.Gorm)

		u := &userDatamodel.User{Name: "a", Email: "a@jbuh.kr", PasswordHash: "x", Role: userDatamodel.RoleMember, AnnualLeaveTotal: 15}
		Expect(db.Gorm.Create(u).Error).To(Succeed())
		userID = u.ID
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("returns nil for a day without a plan", func() {
		e, err := repo.Get(ctx, userID, "2024-05-15")
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeNil())
	})

	It("updates the planned window on conflict", func() {
		Expect(repo.Upsert(ctx, &scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-15", PlannedIn: "09:00", PlannedOut: "18:00"})).To(Succeed())
		Expect(repo.Upsert(ctx, &scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-15", PlannedIn: "11:00", PlannedOut: "20:00"})).To(Succeed())

		e, err := repo.Get(ctx, userID, "2024-05-15")
		Expect(err).NotTo(HaveOccurred())
		Expect(e.PlannedIn).To(Equal("11:00"))
		Expect(e.PlannedOut).To(Equal("20:00"))
	})

	It("rolls back the whole batch when one row fails", func() {
		err := repo.Upsert(ctx,
			&scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-13", PlannedIn: "09:00", PlannedOut: "18:00"},
			&scheduleDatamodel.Entry{UserID: userID + 100, Date: "2024-05-14", PlannedIn: "09:00", PlannedOut: "18:00"},
		)
		Expect(err).To(HaveOccurred())
		Expect(storage.IsForeignKeyViolation(err)).To(BeTrue())

		rows, err := repo.ListByDates(ctx, userID, []string{"2024-05-13", "2024-05-14"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(BeEmpty())
	})

	It("lists only the requested dates in order", func() {
		Expect(repo.Upsert(ctx,
			&scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-17", PlannedIn: "09:00", PlannedOut: "18:00"},
			&scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-13", PlannedIn: "09:00", PlannedOut: "18:00"},
			&scheduleDatamodel.Entry{UserID: userID, Date: "2024-05-20", PlannedIn: "09:00", PlannedOut: "18:00"},
		)).To(Succeed())

		rows, err := repo.ListByDates(ctx, userID, []string{"2024-05-13", "2024-05-14", "2024-05-17"})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Date).To(Equal("2024-05-13"))
		Expect(rows[1].Date).To(Equal("2024-05-17"))
	})
})
