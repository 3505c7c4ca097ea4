package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shramik-backend/internal/model"
	"shramik-backend/internal/notification"
	"shramik-backend/internal/repository"
)

var transitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.ApplicationPending:  {model.ApplicationAccepted, model.ApplicationRejected},
	model.ApplicationAccepted: {model.ApplicationLeft},
}

// CanTransition reports whether an application may move from one status to another.
// Rejected and left have no way out.
func CanTransition(from, to model.ApplicationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type ApplicationUsecase struct {
	apps         repository.ApplicationRepository
	jobs         repository.JobRepository
	users        repository.UserRepository
	sender       Sender
	now          func() time.Time
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewApplicationUsecase(
	apps repository.ApplicationRepository,
	jobs repository.JobRepository,
	users repository.UserRepository,
	sender Sender,
	storeTimeout time.Duration,
	logger *slog.Logger,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		apps:         apps,
		jobs:         jobs,
		users:        users,
		sender:       sender,
		now:          time.Now,
		storeTimeout: storeTimeout,
		logger:       logger.With("component", "application"),
	}
}

func (u *ApplicationUsecase) Apply(ctx context.Context, caller *Identity, jobID uint, message string) (*model.JobApplication, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	if err := caller.is(model.RoleWorker); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	job, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, storeError(err)
	}
	if job.Status != model.JobOpen {
		return nil, ErrJobClosed
	}

	if _, err := u.apps.FindLive(ctx, jobID, caller.UserID); err == nil {
		return nil, ErrDuplicateApplication
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(err)
	}

	app := &model.JobApplication{
		JobID:      job.ID,
		WorkerID:   caller.UserID,
		EmployerID: job.EmployerID,
		Status:     model.ApplicationPending,
		Message:    message,
	}
	if err := u.apps.Create(ctx, app); err != nil {
		return nil, storeError(err)
	}

	u.notify(job.Employer.Email, "New application for "+job.Title,
		fmt.Sprintf("A worker has applied for \"%s\". Open the app to review the application.\n", job.Title))
	return app, nil
}

// Decide accepts or rejects a pending application. Only the job's employer decides.
func (u *ApplicationUsecase) Decide(ctx context.Context, caller *Identity, appID uint, status model.ApplicationStatus) (*model.JobApplication, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	if status != model.ApplicationAccepted && status != model.ApplicationRejected {
		return nil, ErrInvalidStatus.WithMessage("status must be accepted or rejected")
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	app, err := u.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, storeError(err)
	}
	if app.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}

	now := u.now()
	if err := u.transition(ctx, app, status, func() { app.DecidedAt = &now }); err != nil {
		return nil, err
	}

	subject := "Your application was " + string(status)
	body := fmt.Sprintf("Hello %s,\n\nYour application for \"%s\" was %s.\n", app.Worker.Name, app.Job.Title, status)
	u.notify(app.Worker.Email, subject, body)
	return app, nil
}

// Leave ends an accepted engagement at the worker's request. Attendance periods stay open and
// payable; nothing is settled automatically.
func (u *ApplicationUsecase) Leave(ctx context.Context, caller *Identity, appID uint) (*model.JobApplication, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	app, err := u.apps.FindByID(ctx, appID)
	if err != nil {
		return nil, storeError(err)
	}
	if app.WorkerID != caller.UserID {
		return nil, ErrNotOwner
	}

	now := u.now()
	if err := u.transition(ctx, app, model.ApplicationLeft, func() { app.LeftAt = &now }); err != nil {
		return nil, err
	}

	if employer, err := u.users.FindByID(ctx, app.EmployerID); err == nil {
		u.notify(employer.Email, app.Worker.Name+" has left "+app.Job.Title,
			fmt.Sprintf("%s has left \"%s\". Unpaid attendance remains payable from the app.\n", app.Worker.Name, app.Job.Title))
	} else {
		u.logger.WarnContext(ctx, "leave notification skipped", "application_id", app.ID, "error", err)
	}
	return app, nil
}

func (u *ApplicationUsecase) ListForJob(ctx context.Context, caller *Identity, jobID uint) ([]model.JobApplication, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	job, err := u.jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, storeError(err)
	}
	if job.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}

	list, err := u.apps.ListByJob(ctx, jobID)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

func (u *ApplicationUsecase) ListMine(ctx context.Context, caller *Identity) ([]model.JobApplication, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	list, err := u.apps.ListByWorker(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return list, nil
}

// transition moves app to status if allowed. The store update is conditional on the status read,
// so a concurrent change loses instead of being overwritten.
func (u *ApplicationUsecase) transition(ctx context.Context, app *model.JobApplication, to model.ApplicationStatus, stamp func()) error {
	from := app.Status
	if !CanTransition(from, to) {
		return ErrInvalidTransition.WithMessage("cannot move application from %s to %s", from, to)
	}

	app.Status = to
	stamp()
	if err := u.apps.UpdateStatus(ctx, app, from); err != nil {
		app.Status = from
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidTransition.WithMessage("application changed while updating, reload and retry")
		}
		return storeError(err)
	}

	u.logger.InfoContext(ctx, "application status changed", "application_id", app.ID, "from", from, "to", to)
	return nil
}

func (u *ApplicationUsecase) notify(to, subject, body string) {
	if u.sender == nil || to == "" {
		return
	}
	u.sender.Send(notification.Message{To: to, Subject: subject, Body: body})
}
