package usecase

import (
	"context"
	"testing"
	"time"

	"shramik-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type applicationFixture struct {
	uc     *ApplicationUsecase
	apps   *memApps
	jobs   *memJobs
	sender *recordingSender
	job    *model.Job
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	users := newMemUsers(
		model.User{Model: gorm.Model{ID: 1}, Name: "Boss", Email: "boss@example.com", Role: model.RoleEmployer, EmailVerified: true},
		model.User{Model: gorm.Model{ID: 2}, Name: "Ravi", Email: "ravi@example.com", Role: model.RoleWorker, EmailVerified: true},
	)
	jobs := newMemJobs(users)
	job := &model.Job{EmployerID: 1, Title: "Mason", DailyRate: 500, Status: model.JobOpen}
	require.NoError(t, jobs.Create(context.Background(), job))

	f := &applicationFixture{jobs: jobs, sender: &recordingSender{}, job: job}
	f.apps = newMemApps(jobs, users)
	f.uc = NewApplicationUsecase(f.apps, jobs, users, f.sender, time.Second, discardLogger())
	f.uc.now = func() time.Time { return fixedNow }
	return f
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.ApplicationStatus
		ok       bool
	}{
		{model.ApplicationPending, model.ApplicationAccepted, true},
		{model.ApplicationPending, model.ApplicationRejected, true},
		{model.ApplicationAccepted, model.ApplicationLeft, true},
		{model.ApplicationPending, model.ApplicationLeft, false},
		{model.ApplicationAccepted, model.ApplicationRejected, false},
		{model.ApplicationAccepted, model.ApplicationPending, false},
		{model.ApplicationRejected, model.ApplicationAccepted, false},
		{model.ApplicationLeft, model.ApplicationAccepted, false},
		{model.ApplicationLeft, model.ApplicationPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app, err := f.uc.Apply(ctx, worker, f.job.ID, "I have 5 years experience")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.Equal(t, uint(1), app.EmployerID)

	_, err = f.uc.Apply(ctx, worker, f.job.ID, "again")
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	app, err = f.uc.Decide(ctx, employer, app.ID, model.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationAccepted, app.Status)
	require.NotNil(t, app.DecidedAt)

	app, err = f.uc.Leave(ctx, worker, app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationLeft, app.Status)
	require.NotNil(t, app.LeftAt)

	// left is terminal
	_, err = f.uc.Decide(ctx, employer, app.ID, model.ApplicationAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = f.uc.Leave(ctx, worker, app.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// apply, employer notified; accept, worker notified; leave, employer notified
	msgs := f.sender.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "boss@example.com", msgs[0].To)
	assert.Equal(t, "ravi@example.com", msgs[1].To)
	assert.Equal(t, "boss@example.com", msgs[2].To)
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app, err := f.uc.Apply(ctx, worker, f.job.ID, "")
	require.NoError(t, err)
	_, err = f.uc.Decide(ctx, employer, app.ID, model.ApplicationRejected)
	require.NoError(t, err)

	_, err = f.uc.Decide(ctx, employer, app.ID, model.ApplicationAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// A rejected worker may apply again.
	_, err = f.uc.Apply(ctx, worker, f.job.ID, "second try")
	assert.NoError(t, err)
}

func TestDecideGuards(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	app, err := f.uc.Apply(ctx, worker, f.job.ID, "")
	require.NoError(t, err)

	_, err = f.uc.Decide(ctx, &Identity{UserID: 9, Role: model.RoleEmployer, EmailVerified: true}, app.ID, model.ApplicationAccepted)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = f.uc.Decide(ctx, employer, app.ID, model.ApplicationLeft)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.uc.Leave(ctx, worker, app.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.uc.Leave(ctx, employer, app.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestApplyGuards(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.uc.Apply(ctx, employer, f.job.ID, "")
	assert.ErrorIs(t, err, ErrWrongRole)

	unverified := *worker
	unverified.EmailVerified = false
	_, err = f.uc.Apply(ctx, &unverified, f.job.ID, "")
	assert.ErrorIs(t, err, ErrUnverified)

	f.job.Status = model.JobClosed
	require.NoError(t, f.jobs.Update(ctx, f.job))
	_, err = f.uc.Apply(ctx, worker, f.job.ID, "")
	assert.ErrorIs(t, err, ErrJobClosed)

	_, err = f.uc.Apply(ctx, worker, 404, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationListings(t *testing.T) {
	f := newApplicationFixture(t)
	ctx := context.Background()

	_, err := f.uc.Apply(ctx, worker, f.job.ID, "")
	require.NoError(t, err)

	forJob, err := f.uc.ListForJob(ctx, employer, f.job.ID)
	require.NoError(t, err)
	assert.Len(t, forJob, 1)

	_, err = f.uc.ListForJob(ctx, worker, f.job.ID)
	assert.ErrorIs(t, err, ErrNotOwner)

	mine, err := f.uc.ListMine(ctx, worker)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}
