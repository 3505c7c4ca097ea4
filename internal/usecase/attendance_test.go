package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"shramik-backend/internal/lock"
	"shramik-backend/internal/model"
	"shramik-backend/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	employer = &Identity{UserID: 1, Role: model.RoleEmployer, Email: "boss@example.com", EmailVerified: true}
	worker   = &Identity{UserID: 2, Role: model.RoleWorker, Email: "ravi@example.com", EmailVerified: true}
	// fixedNow is late January 2025 in the test location.
	fixedNow = time.Date(2025, time.January, 20, 12, 0, 0, 0, time.UTC)
)

type attendanceFixture struct {
	uc       *AttendanceUsecase
	records  *memAttendance
	payments *memPayments
	users    *memUsers
	jobs     *memJobs
	locker   lock.Locker
}

func newAttendanceFixture() *attendanceFixture {
	users := newMemUsers(
		model.User{Model: gorm.Model{ID: 1}, Name: "Boss", Email: "boss@example.com", Phone: "9000000001", Role: model.RoleEmployer, EmailVerified: true},
		model.User{Model: gorm.Model{ID: 2}, Name: "Ravi", Email: "ravi@example.com", Role: model.RoleWorker, EmailVerified: true},
	)

	f := &attendanceFixture{
		records:  newMemAttendance(),
		payments: newMemPayments(),
		users:    users,
		locker:   lock.NewMemoryLocker(),
	}
	f.jobs = newMemJobs(users)
	f.uc = NewAttendanceUsecase(f.records, f.payments, f.users, f.jobs, f.locker, time.UTC, time.Second, discardLogger())
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func (f *attendanceFixture) open(t *testing.T, rate int64) *AttendanceView {
	t.Helper()
	v, err := f.uc.LoadOrCreate(context.Background(), employer, LoadInput{
		EmployerID: 1, WorkerID: 2, Year: 2025, Month: 1, DailyRate: rate, JobTitle: "Mason",
	})
	require.NoError(t, err)
	return v
}

func (f *attendanceFixture) mark(t *testing.T, recordID, date string, status model.AttendanceStatus) *AttendanceView {
	t.Helper()
	v, err := f.uc.MarkDay(context.Background(), employer, MarkInput{RecordID: recordID, Date: date, Status: status})
	require.NoError(t, err)
	return v
}

func TestPeriodKeyAndLabel(t *testing.T) {
	assert.Equal(t, "1_2_2025_1", PeriodKey(1, 2, 2025, 1))
	assert.Equal(t, "January 2025", PeriodLabel(2025, 1))
	assert.Equal(t, "December 2024", PeriodLabel(2024, 12))

	y, m := periodOf("10_20_2024_11")
	assert.Equal(t, 2024, y)
	assert.Equal(t, 11, m)
}

func TestComputeSummaryEmpty(t *testing.T) {
	s := ComputeSummary(&model.AttendanceRecord{DailyRate: 500})
	assert.Equal(t, Summary{WorkDays: 0, TotalAmount: 0, Payable: false}, s)
}

func TestComputeSummaryIgnoresUnknownValues(t *testing.T) {
	s := Summarize(map[string]model.AttendanceStatus{
		"2025-01-01": model.StatusPresent,
		"2025-01-02": model.StatusAbsent,
		"2025-01-03": "holiday",
	}, 300)
	assert.Equal(t, 1, s.WorkDays)
	assert.Equal(t, int64(300), s.TotalAmount)
	assert.True(t, s.Payable)
}

func TestLoadOrCreateWritesOnce(t *testing.T) {
	f := newAttendanceFixture()

	first := f.open(t, 500)
	assert.Equal(t, "1_2_2025_1", first.Record.ID)
	assert.Empty(t, first.Attendance)
	assert.Equal(t, "January 2025", first.WorkPeriod)
	assert.Len(t, first.Calendar, 31)

	// A second load with a different rate returns the stored record untouched.
	again, err := f.uc.LoadOrCreate(context.Background(), employer, LoadInput{
		EmployerID: 1, WorkerID: 2, Year: 2025, Month: 1, DailyRate: 900,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), again.Record.DailyRate)
}

func TestLoadOrCreateTakesRateFromJob(t *testing.T) {
	f := newAttendanceFixture()
	job := &model.Job{EmployerID: 1, Title: "Painter", DailyRate: 650, Status: model.JobOpen}
	require.NoError(t, f.jobs.Create(context.Background(), job))

	v, err := f.uc.LoadOrCreate(context.Background(), employer, LoadInput{
		EmployerID: 1, WorkerID: 2, Year: 2025, Month: 1, JobID: &job.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(650), v.Record.DailyRate)
	assert.Equal(t, "Painter", v.Record.JobTitle)
}

func TestLoadOrCreateRejections(t *testing.T) {
	f := newAttendanceFixture()
	ctx := context.Background()
	base := LoadInput{EmployerID: 1, WorkerID: 2, Year: 2025, Month: 1, DailyRate: 500}

	_, err := f.uc.LoadOrCreate(ctx, worker, base)
	assert.ErrorIs(t, err, ErrNotOwner)

	unverified := *employer
	unverified.EmailVerified = false
	_, err = f.uc.LoadOrCreate(ctx, &unverified, base)
	assert.ErrorIs(t, err, ErrUnverified)

	_, err = f.uc.LoadOrCreate(ctx, nil, base)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	bad := base
	bad.Month = 13
	_, err = f.uc.LoadOrCreate(ctx, employer, bad)
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	noRate := base
	noRate.DailyRate = 0
	_, err = f.uc.LoadOrCreate(ctx, employer, noRate)
	assert.ErrorIs(t, err, ErrInvalidRate)

	notWorker := base
	notWorker.WorkerID = 1
	_, err = f.uc.LoadOrCreate(ctx, employer, notWorker)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkDayEndToEndSummary(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID

	f.mark(t, id, "2025-01-03", model.StatusPresent)
	f.mark(t, id, "2025-01-04", model.StatusPresent)
	v := f.mark(t, id, "2025-01-05", model.StatusAbsent)

	assert.Equal(t, 2, v.Summary.WorkDays)
	assert.Equal(t, int64(1000), v.Summary.TotalAmount)
	assert.True(t, v.Summary.Payable)
	assert.Equal(t, uint(3), v.Record.Version)
}

func TestMarkDayOverwrite(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID

	f.mark(t, id, "2025-01-10", model.StatusPresent)
	v := f.mark(t, id, "2025-01-10", model.StatusAbsent)

	assert.Equal(t, 0, v.Summary.WorkDays)
	assert.Equal(t, model.StatusAbsent, v.Attendance["2025-01-10"])
	assert.False(t, v.Summary.Payable)
}

func TestMarkDayToday(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID

	v := f.mark(t, id, "2025-01-20", model.StatusPresent)
	assert.Equal(t, 1, v.Summary.WorkDays)
}

func TestMarkDayRejectsFutureDate(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	f.mark(t, id, "2025-01-02", model.StatusPresent)

	_, err := f.uc.MarkDay(context.Background(), employer, MarkInput{RecordID: id, Date: "2025-01-21", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrFutureDate)
	assert.Equal(t, KindValidation, KindOf(err))

	v, err := f.uc.Get(context.Background(), employer, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.AttendanceStatus{"2025-01-02": model.StatusPresent}, v.Attendance)
}

func TestMarkDayRejectsNonOwner(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID

	other := &Identity{UserID: 99, Role: model.RoleEmployer, EmailVerified: true}
	_, err := f.uc.MarkDay(context.Background(), other, MarkInput{RecordID: id, Date: "2025-01-02", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, KindForbidden, KindOf(err))

	v, err := f.uc.Get(context.Background(), employer, id)
	require.NoError(t, err)
	assert.Empty(t, v.Attendance)
}

func TestMarkDayValidation(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	ctx := context.Background()

	cases := []struct {
		name string
		in   MarkInput
		want error
	}{
		{"bad date", MarkInput{RecordID: id, Date: "03/01/2025", Status: model.StatusPresent}, ErrInvalidDate},
		{"bad status", MarkInput{RecordID: id, Date: "2025-01-03", Status: "late"}, ErrInvalidStatus},
		{"other month", MarkInput{RecordID: id, Date: "2024-12-31", Status: model.StatusPresent}, ErrDateOutsidePeriod},
		{"unknown record", MarkInput{RecordID: "1_2_2020_1", Date: "2025-01-03", Status: model.StatusPresent}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.MarkDay(ctx, employer, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	unverified := *employer
	unverified.EmailVerified = false
	_, err := f.uc.MarkDay(ctx, &unverified, MarkInput{RecordID: id, Date: "2025-01-03", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrUnverified)
	assert.Equal(t, "verify your account", err.Error())
}

func TestMarkDayRejectedAfterPayment(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	f.mark(t, id, "2025-01-03", model.StatusPresent)
	require.NoError(t, f.payments.CreateRecord(context.Background(), &model.PaymentRecord{
		ID: "p1", EmployerID: 1, WorkerID: 2, AttendanceRecordID: id, Amount: 500, Status: model.PaymentCompleted,
	}))

	_, err := f.uc.MarkDay(context.Background(), employer, MarkInput{RecordID: id, Date: "2025-01-04", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrPeriodSettled)

	v, err := f.uc.Get(context.Background(), worker, id)
	require.NoError(t, err)
	assert.True(t, v.Paid)
	assert.False(t, v.Summary.Payable)
}

func TestMarkDayBlockedWhilePaymentOpen(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	f.payments.setAttempt(model.PaymentAttempt{ID: "a1", AttendanceRecordID: id, Status: model.AttemptUnknown})

	_, err := f.uc.MarkDay(context.Background(), employer, MarkInput{RecordID: id, Date: "2025-01-04", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrPaymentInProgress)
}

func TestMarkDayWaitsForPeriodLock(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	ctx := context.Background()

	release, err := f.locker.Acquire(ctx, periodLockKey(id), time.Minute)
	require.NoError(t, err)
	go func() {
		time.Sleep(50 * time.Millisecond)
		release()
	}()
	v := f.mark(t, id, "2025-01-03", model.StatusPresent)
	assert.Equal(t, 1, v.Summary.WorkDays)

	held, err := f.locker.Acquire(ctx, periodLockKey(id), time.Minute)
	require.NoError(t, err)
	defer held()
	markCtx, cancelMark := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancelMark()
	_, err = f.uc.MarkDay(markCtx, employer, MarkInput{RecordID: id, Date: "2025-01-04", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	rateCtx, cancelRate := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancelRate()
	_, err = f.uc.UpdateDailyRate(rateCtx, employer, id, 900)
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	v, err = f.uc.Get(ctx, employer, id)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Summary.WorkDays)
	assert.Equal(t, int64(500), v.Record.DailyRate)
}

func TestMarkDayStoreFailureIsTransient(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	f.records.findErr = errors.New("connection refused")

	_, err := f.uc.MarkDay(context.Background(), employer, MarkInput{RecordID: id, Date: "2025-01-04", Status: model.StatusPresent})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, KindTransient, KindOf(err))
}

func TestUpdateDailyRateRepricesPeriod(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID
	f.mark(t, id, "2025-01-03", model.StatusPresent)
	f.mark(t, id, "2025-01-04", model.StatusPresent)

	v, err := f.uc.UpdateDailyRate(context.Background(), employer, id, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(1400), v.Summary.TotalAmount)

	_, err = f.uc.UpdateDailyRate(context.Background(), employer, id, 0)
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = f.uc.UpdateDailyRate(context.Background(), worker, id, 900)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestGetAllowsWorkerOnly(t *testing.T) {
	f := newAttendanceFixture()
	id := f.open(t, 500).Record.ID

	_, err := f.uc.Get(context.Background(), worker, id)
	require.NoError(t, err)

	_, err = f.uc.Get(context.Background(), &Identity{UserID: 5, Role: model.RoleWorker}, id)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestListByRole(t *testing.T) {
	f := newAttendanceFixture()
	f.open(t, 500)

	mine, err := f.uc.List(context.Background(), worker, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].Calendar)

	byMonth, err := f.uc.List(context.Background(), employer, 2025, 2)
	require.NoError(t, err)
	assert.Empty(t, byMonth)
}

func TestBuildCalendarMarksFuture(t *testing.T) {
	record := &model.AttendanceRecord{Year: 2024, Month: 2, Days: []model.AttendanceDay{
		{Date: "2024-02-10", Status: model.StatusPresent},
	}}
	days := BuildCalendar(record, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))

	require.Len(t, days, 29)
	assert.True(t, days[9].Marked)
	assert.Equal(t, model.StatusPresent, days[9].Status)
	assert.False(t, days[14].Future)
	assert.True(t, days[15].Future)
}

func TestSummaryIsLinearInPresence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("totalAmount == workDays * dailyRate", prop.ForAll(
		func(present []bool, rate int64) bool {
			attendance := make(map[string]model.AttendanceStatus, len(present))
			want := 0
			for i, p := range present {
				date := fmt.Sprintf("2025-01-%02d", i%31+1)
				status := model.StatusAbsent
				if p {
					status = model.StatusPresent
				}
				attendance[date] = status
			}
			for _, s := range attendance {
				if s == model.StatusPresent {
					want++
				}
			}
			s := Summarize(attendance, rate)
			return s.WorkDays == want && s.TotalAmount == int64(s.WorkDays)*rate && s.Payable == (s.TotalAmount > 0)
		},
		gen.SliceOfN(31, gen.Bool()),
		gen.Int64Range(1, 5000),
	))

	properties.TestingRun(t)
}

func TestMarkOrderDoesNotMatter(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("summary counts final present days regardless of order", prop.ForAll(
		func(days []int, present []bool) bool {
			marks := make(map[string]model.AttendanceStatus)
			var order []string
			for i, d := range days {
				date := fmt.Sprintf("2025-01-%02d", d)
				if _, seen := marks[date]; !seen {
					order = append(order, date)
				}
				status := model.StatusAbsent
				if i < len(present) && present[i] {
					status = model.StatusPresent
				}
				marks[date] = status
			}

			forward := newAttendanceFixture()
			backward := newAttendanceFixture()
			ctx := context.Background()
			summaries := make([]Summary, 0, 2)
			for n, f := range []*attendanceFixture{forward, backward} {
				v, err := f.uc.LoadOrCreate(ctx, employer, LoadInput{EmployerID: 1, WorkerID: 2, Year: 2025, Month: 1, DailyRate: 500})
				if err != nil {
					return false
				}
				last := v
				for i := range order {
					date := order[i]
					if n == 1 {
						date = order[len(order)-1-i]
					}
					// Mark twice: repeated identical marks are idempotent.
					for r := 0; r < 2; r++ {
						last, err = f.uc.MarkDay(ctx, employer, MarkInput{RecordID: v.Record.ID, Date: date, Status: marks[date]})
						if err != nil {
							return false
						}
					}
				}
				summaries = append(summaries, last.Summary)
			}

			want := Summarize(marks, 500)
			return summaries[0] == want && summaries[1] == want
		},
		gen.SliceOfN(10, gen.IntRange(1, 20)),
		gen.SliceOfN(10, gen.Bool()),
	))

	properties.TestingRun(t)
}

var _ repository.AttendanceRepository = (*memAttendance)(nil)
var _ repository.PaymentRepository = (*memPayments)(nil)
