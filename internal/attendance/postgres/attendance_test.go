package postgres_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/attendance/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance/internal/attendance/postgres"
	attendanceDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/attendance"
	userDatamodel "github.com/frahmantamala/attendance/internal/core/datamodel/user"
	"github.com/frahmantamala/attendance/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAttendancePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Attendance Postgres Suite")
}

var _ = Describe("Attendance Repository", func() {
	var (
		ctx    context.Context
		db     *storage.DB
		repo   attendance.RepositoryAPI
		userID int64
	)

	hm := func(s string) *string { return &s }

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		db, err = storage.OpenMemory(ctx)
		Expect(err).NotTo(HaveOccurred())
		repo = attendancePostgres.NewAttendanceRepository(db.Gorm)

		u := &userDatamodel.User{Name: "a", Email: "a@jbuh.kr", PasswordHash: "x", Role: userDatamodel.RoleMember, AnnualLeaveTotal: 15}
		Expect(db.Gorm.Create(u).Error).To(Succeed())
		userID = u.ID
	})

	AfterEach(func() {
		_ = db.Close()
	})

	It("closes a session only once", func() {
		s := &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-15", ClockIn: hm("09:00")}
		Expect(repo.Create(ctx, s)).To(Succeed())

		closed, err := repo.Close(ctx, s.ID, "12:00", 180)
		Expect(err).NotTo(HaveOccurred())
		Expect(closed).To(BeTrue())

		closed, err = repo.Close(ctx, s.ID, "13:00", 240)
		Expect(err).NotTo(HaveOccurred())
		Expect(closed).To(BeFalse())

		latest, err := repo.FindLatest(ctx, userID, "2024-05-15")
		Expect(err).NotTo(HaveOccurred())
		Expect(*latest.ClockOut).To(Equal("12:00"))
		Expect(latest.WorkMinutes).To(Equal(180))
	})

	It("rejects a second open session for the same day", func() {
		Expect(repo.Create(ctx, &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-15", ClockIn: hm("09:00")})).To(Succeed())
		err := repo.Create(ctx, &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-15", ClockIn: hm("09:05")})
		Expect(storage.IsUniqueViolation(err)).To(BeTrue())

		Expect(repo.Create(ctx, &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-16", ClockIn: hm("09:05")})).To(Succeed())
	})

	It("sums minutes per requested date", func() {
		for _, s := range []*attendanceDatamodel.Session{
			{UserID: userID, Date: "2024-05-13", ClockIn: hm("09:00"), ClockOut: hm("12:00"), WorkMinutes: 180},
			{UserID: userID, Date: "2024-05-13", ClockIn: hm("13:00"), ClockOut: hm("14:00"), WorkMinutes: 60},
			{UserID: userID, Date: "2024-05-14", ClockIn: hm("09:00"), ClockOut: hm("10:00"), WorkMinutes: 60},
			{UserID: userID, Date: "2024-05-20", ClockIn: hm("09:00"), ClockOut: hm("10:00"), WorkMinutes: 60},
		} {
			Expect(repo.Create(ctx, s)).To(Succeed())
		}

		sums, err := repo.SumByDates(ctx, userID, []string{"2024-05-13", "2024-05-14", "2024-05-15"})
		Expect(err).NotTo(HaveOccurred())
		Expect(sums).To(Equal(map[string]int{"2024-05-13": 240, "2024-05-14": 60}))
	})

	It("finds the most recent open session", func() {
		Expect(repo.Create(ctx, &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-15", ClockIn: hm("08:00"), ClockOut: hm("09:00"), WorkMinutes: 60})).To(Succeed())
		open, err := repo.FindOpen(ctx, userID, "2024-05-15")
		Expect(err).NotTo(HaveOccurred())
		Expect(open).To(BeNil())

		Expect(repo.Create(ctx, &attendanceDatamodel.Session{UserID: userID, Date: "2024-05-15", ClockIn: hm("10:00")})).To(Succeed())
		open, err = repo.FindOpen(ctx, userID, "2024-05-15")
		Expect(err).NotTo(HaveOccurred())
		Expect(*open.ClockIn).To(Equal("10:00"))
	})

	It("reports whether a user exists", func() {
		ok, err := repo.UserExists(ctx, userID)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = repo.UserExists(ctx, userID+1)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})
})
