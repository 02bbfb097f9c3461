package planner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/greenbite/engine/pkg/errors"

	"github.com/greenbite/engine/internal/ports/inbound"
)

const (
	jobKeyPrefix = "planjob:"
	jobTTL       = 24 * time.Hour
)

// GeneratePlanAsync records a queued job and generates the plan in a
// background goroutine. The returned status carries the id to poll with
// GetJob.
func (s *Service) GeneratePlanAsync(ctx context.Context, cmd inbound.GeneratePlanCommand) (*inbound.JobStatus, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	now := s.now()
	job := &inbound.JobStatus{
		ID:        uuid.New(),
		UserID:    cmd.UserID,
		State:     inbound.JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, err
	}

	go func() {
		// Detached from the request context; the job must outlive it.
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.runJob(bg, job.ID, cmd)
	}()

	return job, nil
}

// runJob executes one generation job. It reloads the job record first: a
// retried or duplicated run whose record already carries a plan id is a
// no-op, so one job never yields two plans.
func (s *Service) runJob(ctx context.Context, jobID uuid.UUID, cmd inbound.GeneratePlanCommand) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		s.logger.Error("job record unreadable", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}
	if job.PlanID != nil {
		return
	}

	job.State = inbound.JobRunning
	job.UpdatedAt = s.now()
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Error("job update failed", zap.String("job_id", jobID.String()), zap.Error(err))
		return
	}

	plan, genErr := s.GeneratePlan(ctx, cmd)
	job.UpdatedAt = s.now()
	if genErr != nil {
		job.State = inbound.JobFailed
		job.Error = genErr.Error()
		s.logger.Warn("generation job failed", zap.String("job_id", jobID.String()), zap.Error(genErr))
	} else {
		job.State = inbound.JobDone
		id := plan.ID
		job.PlanID = &id
	}
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Error("job update failed", zap.String("job_id", jobID.String()), zap.Error(err))
	}
}

// GetJob returns the pollable status of a generation job.
func (s *Service) GetJob(ctx context.Context, userID, jobID uuid.UUID) (*inbound.JobStatus, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, apperrors.NewJobNotFoundError(jobID.String())
	}
	return job, nil
}

func (s *Service) saveJob(ctx context.Context, job *inbound.JobStatus) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return apperrors.Wrap(err, "encode job record")
	}
	if err := s.cache.Set(ctx, jobKeyPrefix+job.ID.String(), payload, jobTTL); err != nil {
		return apperrors.NewDatabaseError("store job", err)
	}
	return nil
}

func (s *Service) loadJob(ctx context.Context, jobID uuid.UUID) (*inbound.JobStatus, error) {
	payload, err := s.cache.Get(ctx, jobKeyPrefix+jobID.String())
	if err != nil {
		return nil, apperrors.NewDatabaseError("load job", err)
	}
	if payload == nil {
		return nil, apperrors.NewJobNotFoundError(jobID.String())
	}
	var job inbound.JobStatus
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, apperrors.Wrap(err, "decode job record")
	}
	return &job, nil
}
