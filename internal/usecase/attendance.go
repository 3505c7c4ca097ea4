package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"shramik-backend/internal/lock"
	"shramik-backend/internal/model"
	"shramik-backend/internal/repository"
)

const (
	dateLayout = "2006-01-02"

	// editLockTTL covers one mark or rate change; editLockWait is how long an edit waits for
	// another holder of the period lock.
	editLockTTL       = 30 * time.Second
	editLockWait      = 3 * time.Second
	editLockRetryStep = 25 * time.Millisecond
)

// PeriodKey is the attendance record id: "{employerId}_{workerId}_{year}_{month}".
func PeriodKey(employerID, workerID uint, year, month int) string {
	return fmt.Sprintf("%d_%d_%d_%d", employerID, workerID, year, month)
}

// periodLockKey names the lock that serialises payments and attendance edits of one period.
func periodLockKey(recordID string) string {
	return "payment:" + recordID
}

// PeriodLabel renders a period the way it is shown on payment receipts, e.g. "January 2025".
func PeriodLabel(year, month int) string {
	return time.Month(month).String() + " " + strconv.Itoa(year)
}

type Summary struct {
	WorkDays    int   `json:"work_days"`
	TotalAmount int64 `json:"total_amount"`
	Payable     bool  `json:"payable"`
}

// Summarize counts present days and prices them at dailyRate. Any other stored value counts zero.
func Summarize(attendance map[string]model.AttendanceStatus, dailyRate int64) Summary {
	days := 0
	for _, status := range attendance {
		if status == model.StatusPresent {
			days++
		}
	}
	total := int64(days) * dailyRate
	return Summary{WorkDays: days, TotalAmount: total, Payable: total > 0}
}

func ComputeSummary(record *model.AttendanceRecord) Summary {
	return Summarize(record.Attendance(), record.DailyRate)
}

type CalendarDay struct {
	Date   string                 `json:"date"`
	Status model.AttendanceStatus `json:"status,omitempty"`
	Marked bool                   `json:"marked"`
	Future bool                   `json:"future"`
}

// BuildCalendar lists every day of the record's month with its mark, if any.
func BuildCalendar(record *model.AttendanceRecord, today time.Time) []CalendarDay {
	marks := record.Attendance()
	first := time.Date(record.Year, time.Month(record.Month), 1, 0, 0, 0, 0, time.UTC)
	todayKey := today.Format(dateLayout)

	var days []CalendarDay
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		status, marked := marks[key]
		days = append(days, CalendarDay{
			Date:   key,
			Status: status,
			Marked: marked,
			Future: key > todayKey,
		})
	}
	return days
}

// AttendanceView is a record together with everything the calendar screen shows for it.
type AttendanceView struct {
	Record     *model.AttendanceRecord           `json:"record"`
	Attendance map[string]model.AttendanceStatus `json:"attendance"`
	Summary    Summary                           `json:"summary"`
	WorkPeriod string                            `json:"work_period"`
	Calendar   []CalendarDay                     `json:"calendar,omitempty"`
	Paid       bool                              `json:"paid"`
	Payment    *model.PaymentRecord              `json:"payment,omitempty"`
}

type AttendanceUsecase struct {
	records      repository.AttendanceRepository
	payments     repository.PaymentRepository
	users        repository.UserRepository
	jobs         repository.JobRepository
	locker       lock.Locker
	loc          *time.Location
	now          func() time.Time
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewAttendanceUsecase(
	records repository.AttendanceRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	jobs repository.JobRepository,
	locker lock.Locker,
	loc *time.Location,
	storeTimeout time.Duration,
	logger *slog.Logger,
) *AttendanceUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &AttendanceUsecase{
		records:      records,
		payments:     payments,
		users:        users,
		jobs:         jobs,
		locker:       locker,
		loc:          loc,
		now:          time.Now,
		storeTimeout: storeTimeout,
		logger:       logger.With("component", "attendance"),
	}
}

func (u *AttendanceUsecase) today() string {
	return u.now().In(u.loc).Format(dateLayout)
}

type LoadInput struct {
	EmployerID uint
	WorkerID   uint
	Year       int
	Month      int
	DailyRate  int64
	JobTitle   string
	JobID      *uint
}

// LoadOrCreate returns the period's record, creating it with an empty attendance map on first
// access. Rate and title only apply at creation; an existing record is returned as stored.
func (u *AttendanceUsecase) LoadOrCreate(ctx context.Context, caller *Identity, in LoadInput) (*AttendanceView, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	if caller.UserID != in.EmployerID {
		return nil, ErrNotOwner
	}
	if in.Month < 1 || in.Month > 12 || in.Year < 2000 || in.Year > 9999 {
		return nil, ErrInvalidPeriod
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	key := PeriodKey(in.EmployerID, in.WorkerID, in.Year, in.Month)
	record, err := u.records.FindByID(ctx, key)
	if err == nil {
		return u.view(ctx, record)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err)
	}

	worker, err := u.users.FindByID(ctx, in.WorkerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound.WithMessage("worker not found")
		}
		return nil, storeError(err)
	}
	if worker.Role != model.RoleWorker {
		return nil, ErrInvalidInput.WithMessage("user %d is not a worker", in.WorkerID)
	}

	if in.JobID != nil {
		job, err := u.jobs.FindByID(ctx, *in.JobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound.WithMessage("job not found")
			}
			return nil, storeError(err)
		}
		if job.EmployerID != caller.UserID {
			return nil, ErrNotOwner
		}
		if in.DailyRate == 0 {
			in.DailyRate = job.DailyRate
		}
		if in.JobTitle == "" {
			in.JobTitle = job.Title
		}
	}
	if in.DailyRate <= 0 {
		return nil, ErrInvalidRate
	}

	record = &model.AttendanceRecord{
		ID:         key,
		EmployerID: in.EmployerID,
		WorkerID:   in.WorkerID,
		Year:       in.Year,
		Month:      in.Month,
		JobID:      in.JobID,
		JobTitle:   in.JobTitle,
		DailyRate:  in.DailyRate,
	}
	if err := u.records.Create(ctx, record); err != nil {
		// Another request created the period first; use theirs.
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, storeError(err)
		}
		record, err = u.records.FindByID(ctx, key)
		if err != nil {
			return nil, storeError(err)
		}
	} else {
		u.logger.InfoContext(ctx, "attendance period opened", "record_id", key, "daily_rate", in.DailyRate)
	}

	return u.view(ctx, record)
}

type MarkInput struct {
	RecordID string
	Date     string
	Status   model.AttendanceStatus
}

// MarkDay sets one date of the record. The write patches that single date so concurrent marks
// of other dates are kept.
func (u *AttendanceUsecase) MarkDay(ctx context.Context, caller *Identity, in MarkInput) (*AttendanceView, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	date, err := time.ParseInLocation(dateLayout, in.Date, u.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if in.Date > u.today() {
		return nil, ErrFutureDate
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	record, err := u.records.FindByID(ctx, in.RecordID)
	if err != nil {
		return nil, storeError(err)
	}
	if record.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}
	if date.Year() != record.Year || int(date.Month()) != record.Month {
		return nil, ErrDateOutsidePeriod
	}

	release, err := u.lockPeriod(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := u.ensureMutable(ctx, record.ID); err != nil {
		return nil, err
	}

	err = u.records.UpsertDay(ctx, model.AttendanceDay{
		RecordID: record.ID,
		Date:     in.Date,
		Status:   in.Status,
		MarkedBy: caller.UserID,
	})
	if err != nil {
		return nil, storeError(err)
	}

	record, err = u.records.FindByID(ctx, record.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return u.view(ctx, record)
}

// Get returns a record to its employer or its worker.
func (u *AttendanceUsecase) Get(ctx context.Context, caller *Identity, recordID string) (*AttendanceView, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	record, err := u.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, storeError(err)
	}
	if record.EmployerID != caller.UserID && record.WorkerID != caller.UserID {
		return nil, ErrNotOwner
	}
	return u.view(ctx, record)
}

// UpdateDailyRate reprices the whole period, days already marked included. A paid period, or one
// with a payment underway, keeps its rate.
func (u *AttendanceUsecase) UpdateDailyRate(ctx context.Context, caller *Identity, recordID string, dailyRate int64) (*AttendanceView, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	if dailyRate <= 0 {
		return nil, ErrInvalidRate
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	record, err := u.records.FindByID(ctx, recordID)
	if err != nil {
		return nil, storeError(err)
	}
	if record.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}

	release, err := u.lockPeriod(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := u.ensureMutable(ctx, record.ID); err != nil {
		return nil, err
	}

	if err := u.records.UpdateDailyRate(ctx, record.ID, dailyRate); err != nil {
		return nil, storeError(err)
	}
	u.logger.InfoContext(ctx, "daily rate changed", "record_id", record.ID, "from", record.DailyRate, "to", dailyRate)

	record, err = u.records.FindByID(ctx, record.ID)
	if err != nil {
		return nil, storeError(err)
	}
	return u.view(ctx, record)
}

// List returns the caller's records: all of a worker's periods, or an employer's periods
// filtered by year and month (zero means any).
func (u *AttendanceUsecase) List(ctx context.Context, caller *Identity, year, month int) ([]AttendanceView, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	var (
		records []model.AttendanceRecord
		err     error
	)
	if caller.Role == model.RoleWorker {
		records, err = u.records.ListByWorker(ctx, caller.UserID)
	} else {
		records, err = u.records.ListByEmployer(ctx, caller.UserID, year, month)
	}
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]AttendanceView, 0, len(records))
	for i := range records {
		v, err := u.view(ctx, &records[i])
		if err != nil {
			return nil, err
		}
		v.Calendar = nil
		views = append(views, *v)
	}
	return views, nil
}

// ensureMutable rejects changes to a paid period and to one whose payment is underway, so the
// amount captured always matches the attendance it settles.
func (u *AttendanceUsecase) ensureMutable(ctx context.Context, recordID string) error {
	_, err := u.payments.FindRecordByPeriod(ctx, recordID)
	switch {
	case err == nil:
		return ErrPeriodSettled
	case !errors.Is(err, repository.ErrNotFound):
		return storeError(err)
	}

	open, err := u.payments.FindOpenAttempts(ctx, recordID)
	if err != nil {
		return storeError(err)
	}
	if len(open) > 0 {
		return ErrPaymentInProgress
	}
	return nil
}

// lockPeriod takes the period lock shared with payments. A concurrent edit is waited out; a
// payment still holding the lock after editLockWait is reported as in progress.
func (u *AttendanceUsecase) lockPeriod(ctx context.Context, recordID string) (lock.Release, error) {
	deadline := time.Now().Add(editLockWait)
	for retry := false; ; retry = true {
		if retry && ctx.Err() != nil {
			return nil, ErrPaymentInProgress
		}
		release, err := u.locker.Acquire(ctx, periodLockKey(recordID), editLockTTL)
		if err == nil {
			return release, nil
		}
		if !errors.Is(err, lock.ErrLocked) {
			return nil, ErrStoreUnavailable.Wrap(err)
		}
		if time.Now().After(deadline) {
			return nil, ErrPaymentInProgress
		}
		select {
		case <-ctx.Done():
			return nil, ErrPaymentInProgress
		case <-time.After(editLockRetryStep):
		}
	}
}

func (u *AttendanceUsecase) view(ctx context.Context, record *model.AttendanceRecord) (*AttendanceView, error) {
	v := &AttendanceView{
		Record:     record,
		Attendance: record.Attendance(),
		Summary:    ComputeSummary(record),
		WorkPeriod: PeriodLabel(record.Year, record.Month),
		Calendar:   BuildCalendar(record, u.now().In(u.loc)),
	}

	payment, err := u.payments.FindRecordByPeriod(ctx, record.ID)
	switch {
	case err == nil:
		v.Paid = true
		v.Payment = payment
		v.Summary.Payable = false
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeError(err)
	}
	return v, nil
}
