package usecase

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"shramik-backend/internal/model"
	"shramik-backend/internal/repository"
)

type JobUsecase struct {
	jobs         repository.JobRepository
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewJobUsecase(jobs repository.JobRepository, storeTimeout time.Duration, logger *slog.Logger) *JobUsecase {
	return &JobUsecase{jobs: jobs, storeTimeout: storeTimeout, logger: logger.With("component", "job")}
}

type JobInput struct {
	Title       string
	Description string
	DailyRate   int64
	Address     string
	Latitude    float64
	Longitude   float64
	Openings    int
}

func (u *JobUsecase) Post(ctx context.Context, caller *Identity, in JobInput) (*model.Job, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	if err := caller.is(model.RoleEmployer); err != nil {
		return nil, err
	}
	if in.DailyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if in.Openings <= 0 {
		in.Openings = 1
	}

	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	job := &model.Job{
		EmployerID:  caller.UserID,
		Title:       in.Title,
		Description: in.Description,
		DailyRate:   in.DailyRate,
		Address:     in.Address,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Openings:    in.Openings,
		Status:      model.JobOpen,
	}
	if err := u.jobs.Create(ctx, job); err != nil {
		return nil, storeError(err)
	}
	u.logger.InfoContext(ctx, "job posted", "job_id", job.ID, "employer_id", caller.UserID)
	return job, nil
}

func (u *JobUsecase) Get(ctx context.Context, id uint) (*model.Job, error) {
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	job, err := u.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	return job, nil
}

type JobQuery struct {
	Search    string
	Latitude  float64
	Longitude float64
	// RadiusKm > 0 keeps only jobs within that distance of (Latitude, Longitude).
	RadiusKm float64
}

type JobListing struct {
	model.Job
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ListOpen returns open jobs; with a radius they are filtered by distance and sorted nearest first.
func (u *JobUsecase) ListOpen(ctx context.Context, q JobQuery) ([]JobListing, error) {
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	jobs, err := u.jobs.ListOpen(ctx, q.Search)
	if err != nil {
		return nil, storeError(err)
	}

	listings := make([]JobListing, 0, len(jobs))
	for _, job := range jobs {
		l := JobListing{Job: job}
		if q.RadiusKm > 0 {
			d := DistanceKm(q.Latitude, q.Longitude, job.Latitude, job.Longitude)
			if d > q.RadiusKm {
				continue
			}
			l.DistanceKm = &d
		}
		listings = append(listings, l)
	}
	if q.RadiusKm > 0 {
		sort.SliceStable(listings, func(i, j int) bool {
			return *listings[i].DistanceKm < *listings[j].DistanceKm
		})
	}
	return listings, nil
}

func (u *JobUsecase) ListMine(ctx context.Context, caller *Identity) ([]model.Job, error) {
	if err := caller.authenticated(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	jobs, err := u.jobs.ListByEmployer(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return jobs, nil
}

func (u *JobUsecase) Close(ctx context.Context, caller *Identity, id uint) (*model.Job, error) {
	if err := caller.verified(); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, u.storeTimeout)
	defer cancel()

	job, err := u.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if job.EmployerID != caller.UserID {
		return nil, ErrNotOwner
	}
	if job.Status == model.JobClosed {
		return job, nil
	}
	job.Status = model.JobClosed
	if err := u.jobs.Update(ctx, job); err != nil {
		return nil, storeError(err)
	}
	return job, nil
}

// DistanceKm is the haversine distance between two coordinates.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0 // earth radius in km
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}
