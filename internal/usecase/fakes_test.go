package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"shramik-backend/internal/gateway"
	"shramik-backend/internal/model"
	"shramik-backend/internal/notification"
	"shramik-backend/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memAttendance stores records and their days like the gorm repository: one row per date.
type memAttendance struct {
	mu      sync.Mutex
	records map[string]model.AttendanceRecord
	days    map[string]map[string]model.AttendanceDay
	findErr error

	// beforeWrite runs ahead of UpsertDay and UpdateDailyRate, outside the mutex.
	beforeWrite func()
}

func newMemAttendance() *memAttendance {
	return &memAttendance{
		records: make(map[string]model.AttendanceRecord),
		days:    make(map[string]map[string]model.AttendanceDay),
	}
}

func (m *memAttendance) FindByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	r, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.Days = m.sortedDays(id)
	return &r, nil
}

func (m *memAttendance) sortedDays(id string) []model.AttendanceDay {
	var days []model.AttendanceDay
	for _, d := range m.days[id] {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func (m *memAttendance) Create(_ context.Context, record *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; ok {
		return repository.ErrDuplicate
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	stored := *record
	stored.Days = nil
	m.records[record.ID] = stored
	return nil
}

func (m *memAttendance) UpsertDay(_ context.Context, day model.AttendanceDay) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[day.RecordID]
	if !ok {
		return repository.ErrNotFound
	}
	if m.days[day.RecordID] == nil {
		m.days[day.RecordID] = make(map[string]model.AttendanceDay)
	}
	m.days[day.RecordID][day.Date] = day
	r.Version++
	r.UpdatedAt = time.Now()
	m.records[day.RecordID] = r
	return nil
}

func (m *memAttendance) UpdateDailyRate(_ context.Context, id string, dailyRate int64) error {
	if m.beforeWrite != nil {
		m.beforeWrite()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.DailyRate = dailyRate
	r.Version++
	m.records[id] = r
	return nil
}

func (m *memAttendance) ListByWorker(_ context.Context, workerID uint) ([]model.AttendanceRecord, error) {
	return m.filter(func(r model.AttendanceRecord) bool { return r.WorkerID == workerID }), nil
}

func (m *memAttendance) ListByEmployer(_ context.Context, employerID uint, year, month int) ([]model.AttendanceRecord, error) {
	return m.filter(func(r model.AttendanceRecord) bool {
		return r.EmployerID == employerID && (year == 0 || r.Year == year) && (month == 0 || r.Month == month)
	}), nil
}

func (m *memAttendance) filter(keep func(model.AttendanceRecord) bool) []model.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.AttendanceRecord
	for id, r := range m.records {
		if keep(r) {
			r.Days = m.sortedDays(id)
			list = append(list, r)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// memPayments enforces one record per period, like uniq_payment_period.
type memPayments struct {
	mu              sync.Mutex
	attempts        map[string]model.PaymentAttempt
	records         map[string]model.PaymentRecord // by attendance record id
	createRecordErr error
	createCalls     int
	findRecordErr   error
	findRecordCalls int
}

func newMemPayments() *memPayments {
	return &memPayments{
		attempts: make(map[string]model.PaymentAttempt),
		records:  make(map[string]model.PaymentRecord),
	}
}

func (m *memPayments) CreateAttempt(_ context.Context, a *model.PaymentAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.ID]; ok {
		return repository.ErrDuplicate
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.attempts[a.ID] = *a
	return nil
}

func (m *memPayments) UpdateAttempt(_ context.Context, a *model.PaymentAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	m.attempts[a.ID] = *a
	return nil
}

func (m *memPayments) FindAttempt(_ context.Context, id string) (*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memPayments) FindAttemptByOrderID(_ context.Context, orderID string) (*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.GatewayOrderID == orderID {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPayments) FindOpenAttempts(_ context.Context, recordID string) ([]model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.PaymentAttempt
	for _, a := range m.attempts {
		if a.AttendanceRecordID == recordID && a.Status.Open() {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *memPayments) CreateRecord(_ context.Context, r *model.PaymentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.createRecordErr != nil {
		return m.createRecordErr
	}
	if _, ok := m.records[r.AttendanceRecordID]; ok {
		return repository.ErrDuplicate
	}
	r.CreatedAt = time.Now()
	m.records[r.AttendanceRecordID] = *r
	return nil
}

func (m *memPayments) FindRecordByPeriod(_ context.Context, recordID string) (*model.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findRecordCalls++
	if m.findRecordErr != nil {
		return nil, m.findRecordErr
	}
	r, ok := m.records[recordID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memPayments) ListByEmployer(_ context.Context, employerID uint, f repository.PaymentFilter) ([]model.PaymentRecord, error) {
	return m.list(func(r model.PaymentRecord) bool { return r.EmployerID == employerID }, f), nil
}

func (m *memPayments) ListByWorker(_ context.Context, workerID uint, f repository.PaymentFilter) ([]model.PaymentRecord, error) {
	return m.list(func(r model.PaymentRecord) bool { return r.WorkerID == workerID }, f), nil
}

func (m *memPayments) list(keep func(model.PaymentRecord) bool, f repository.PaymentFilter) []model.PaymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.PaymentRecord
	for _, r := range m.records {
		if keep(r) && (f.Year == 0 || r.PeriodYear == f.Year) && (f.Month == 0 || r.PeriodMonth == f.Month) {
			list = append(list, r)
		}
	}
	return list
}

func (m *memPayments) setAttempt(a model.PaymentAttempt) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
}

func (m *memPayments) recordCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type memUsers struct {
	mu    sync.Mutex
	users map[uint]model.User
	next  uint
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{users: make(map[uint]model.User)}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID > m.next {
			m.next = u.ID
		}
	}
	return m
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.next++
	user.ID = m.next
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) MarkEmailVerified(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.EmailVerified = true
	m.users[id] = u
	return nil
}

type memJobs struct {
	mu    sync.Mutex
	jobs  map[uint]model.Job
	users *memUsers
	next  uint
}

func newMemJobs(users *memUsers) *memJobs {
	return &memJobs{jobs: make(map[uint]model.Job), users: users}
}

func (m *memJobs) Create(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	job.ID = m.next
	m.jobs[job.ID] = *job
	return nil
}

func (m *memJobs) FindByID(ctx context.Context, id uint) (*model.Job, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m.users != nil {
		if emp, err := m.users.FindByID(ctx, job.EmployerID); err == nil {
			job.Employer = *emp
		}
	}
	return &job, nil
}

func (m *memJobs) Update(_ context.Context, job *model.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = *job
	return nil
}

func (m *memJobs) ListOpen(_ context.Context, _ string) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Job
	for _, j := range m.jobs {
		if j.Status == model.JobOpen {
			list = append(list, j)
		}
	}
	sort.Slice(list, func(i, k int) bool { return list[i].ID < list[k].ID })
	return list, nil
}

func (m *memJobs) ListByEmployer(_ context.Context, employerID uint) ([]model.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.Job
	for _, j := range m.jobs {
		if j.EmployerID == employerID {
			list = append(list, j)
		}
	}
	return list, nil
}

type memApps struct {
	mu   sync.Mutex
	apps map[uint]model.JobApplication
	jobs *memJobs
	usrs *memUsers
	next uint
}

func newMemApps(jobs *memJobs, users *memUsers) *memApps {
	return &memApps{apps: make(map[uint]model.JobApplication), jobs: jobs, usrs: users}
}

func (m *memApps) Create(_ context.Context, app *model.JobApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	app.ID = m.next
	m.apps[app.ID] = *app
	return nil
}

func (m *memApps) FindByID(ctx context.Context, id uint) (*model.JobApplication, error) {
	m.mu.Lock()
	app, ok := m.apps[id]
	m.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	if job, err := m.jobs.FindByID(ctx, app.JobID); err == nil {
		app.Job = *job
	}
	if w, err := m.usrs.FindByID(ctx, app.WorkerID); err == nil {
		app.Worker = *w
	}
	return &app, nil
}

func (m *memApps) FindLive(_ context.Context, jobID, workerID uint) (*model.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.JobID == jobID && a.WorkerID == workerID &&
			(a.Status == model.ApplicationPending || a.Status == model.ApplicationAccepted) {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memApps) ListByJob(_ context.Context, jobID uint) ([]model.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.JobApplication
	for _, a := range m.apps {
		if a.JobID == jobID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *memApps) ListByWorker(_ context.Context, workerID uint) ([]model.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []model.JobApplication
	for _, a := range m.apps {
		if a.WorkerID == workerID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *memApps) UpdateStatus(_ context.Context, app *model.JobApplication, from model.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.apps[app.ID]
	if !ok || stored.Status != from {
		return repository.ErrNotFound
	}
	stored.Status = app.Status
	stored.DecidedAt = app.DecidedAt
	stored.LeftAt = app.LeftAt
	m.apps[app.ID] = stored
	return nil
}

// fakeGateway records calls and answers with canned results.
type fakeGateway struct {
	mu         sync.Mutex
	method     model.PaymentMethod
	orders     int
	captures   int
	statuses   int
	orderErr   error
	captureRes *gateway.CaptureResult
	captureErr error
	statusRes  *gateway.CaptureResult
	statusErr  error
	lastOrder  gateway.OrderRequest

	// signed mirrors the relay gateway, which verifies the checkout signature.
	signed  bool
	// onOrder runs at the start of CreateOrder, while Initiate holds the period lock.
	onOrder func()
}

func newFakeGateway(method model.PaymentMethod) *fakeGateway {
	return &fakeGateway{
		method:     method,
		captureRes: &gateway.CaptureResult{Outcome: gateway.OutcomeSuccess, Verified: true, TransactionID: "pay_ok"},
		signed:     method == model.MethodRazorpay,
	}
}

func (g *fakeGateway) Method() model.PaymentMethod { return g.method }

func (g *fakeGateway) RequiresSignedCheckout() bool { return g.signed }

func (g *fakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	if g.onOrder != nil {
		g.onOrder()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders++
	g.lastOrder = req
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	return &gateway.Order{ID: "order_" + req.Receipt, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *fakeGateway) Capture(_ context.Context, _ gateway.Order, _ gateway.Checkout) (*gateway.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures++
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return g.captureRes, nil
}

func (g *fakeGateway) FetchStatus(_ context.Context, _ gateway.Order) (*gateway.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses++
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.statusRes, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.orders + g.captures + g.statuses
}

type recordingSender struct {
	mu   sync.Mutex
	sent []notification.Message
}

func (s *recordingSender) Send(msg notification.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
}

func (s *recordingSender) messages() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.sent...)
}
