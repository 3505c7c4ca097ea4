package usecase

import (
	"context"
	"time"

	"shramik-backend/internal/model"
	"shramik-backend/internal/repository"
)

type DashboardUsecase struct {
	stats        repository.DashboardRepository
	loc          *time.Location
	now          func() time.Time
	storeTimeout time.Duration
}

func NewDashboardUsecase(stats repository.DashboardRepository, loc *time.Location, storeTimeout time.Duration) *DashboardUsecase {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardUsecase{stats: stats, loc: loc, now: time.Now, storeTimeout: storeTimeout}
}

// EmployerStats summarises the caller's jobs and payroll for the current month.
func (u *DashboardUsecase) EmployerStats(ctx context.Context, caller *Identity) (*repository.EmployerStats, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}
	if err := caller.is(model.RoleEmployer); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	now := u.now().In(u.loc)
	stats, err := u.stats.GetEmployerStats(ctx, caller.UserID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, storeError(err)
	}
	return stats, nil
}
