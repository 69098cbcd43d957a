package services

import (
	"context"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/maxaizer/jobs-collector/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"time"
)

type reviewCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, expirationTime time.Time) (int64, error)
}

type collectionRunner interface {
	RunCollection(ctx context.Context, sourceNames ...string) (*entities.RunReport, error)
}

// CollectionScheduler is the built-in trigger: it calls RunCollection on a cron schedule.
type CollectionScheduler struct {
	collector collectionRunner
	cron      *cron.Cron
	ctx       context.Context
	schedule  string
}

func NewCollectionScheduler(ctx context.Context, collector collectionRunner, schedule string) (*CollectionScheduler, error) {

	if schedule == "" {
		return nil, errors.New("collection schedule must not be empty")
	}

	cs := &CollectionScheduler{
		collector: collector,
		cron:      cron.New(),
		ctx:       ctx,
		schedule:  schedule,
	}

	_, err := cs.cron.AddFunc(schedule, cs.RunOnce)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid collection schedule %q", schedule)
	}

	return cs, nil
}

// AddReviewCleanup removes match reviews older than retentionDays once a day.
func (cs *CollectionScheduler) AddReviewCleanup(reviews reviewCleanupRepository, retentionDays int) error {
	if retentionDays <= 0 {
		return errors.New("retention in days must be greater than zero")
	}

	_, err := cs.cron.AddFunc("0 0 * * *", func() { cs.cleanReviews(reviews, retentionDays) })
	if err != nil {
		return err
	}

	log.Infof("match review cleanup scheduled, retention in days: %d", retentionDays)
	return nil
}

func (cs *CollectionScheduler) cleanReviews(reviews reviewCleanupRepository, retentionDays int) {
	expirationTime := time.Now().AddDate(0, 0, -retentionDays)
	rowsAffected, err := reviews.RemoveOlderThan(cs.ctx, expirationTime)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("Failed to clean old match reviews: %v", err)
	} else {
		log.Infof("Old match reviews were cleaned at %v, affected rows: %v", time.Now(), rowsAffected)
	}
}

func (cs *CollectionScheduler) Start() {
	cs.cron.Start()
	log.Infof("collection scheduler started, schedule: %s", cs.schedule)
}

// Stop prevents new runs and waits for a running one to return.
func (cs *CollectionScheduler) Stop() {
	<-cs.cron.Stop().Done()
}

func (cs *CollectionScheduler) RunOnce() {
	if cs.ctx.Err() != nil {
		return
	}

	_, err := cs.collector.RunCollection(cs.ctx)
	if err == nil {
		return
	}

	var hardFailure *HardFailure
	switch {
	case errors.Is(err, ErrRunInProgress):
		log.Warn("previous collection run is still in progress, skipping this one")
	case errors.As(err, &hardFailure):
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeSink).Errorf("collection run aborted: %v, failed sources: %v",
			err, hardFailure.Report.FailedSources())
	case errors.Is(err, context.Canceled):
		log.Info("collection run canceled")
	default:
		log.Errorf("collection run failed: %v", err)
	}
}
