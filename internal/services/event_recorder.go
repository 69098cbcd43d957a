package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/maxaizer/jobs-collector/internal/events"
	"github.com/maxaizer/jobs-collector/internal/logger"
	log "github.com/sirupsen/logrus"
	"time"
)

type matchReviewRepository interface {
	Add(ctx context.Context, review entities.MatchReview) error
}

type runHistoryRepository interface {
	Save(ctx context.Context, report entities.RunReport) error
}

// EventRecorder persists what the collector publishes: ambiguous company
// matches go to the review queue, finished runs to the run history.
type EventRecorder struct {
	reviews matchReviewRepository
	runs    runHistoryRepository
	now     func() time.Time
}

func NewEventRecorder(bus EventBus.Bus, reviews matchReviewRepository, runs runHistoryRepository) (*EventRecorder, error) {
	e := &EventRecorder{reviews: reviews, runs: runs, now: time.Now}

	if err := bus.Subscribe(events.CompanyMatchAmbiguousTopic, e.onCompanyMatchAmbiguous); err != nil {
		return nil, err
	}
	if err := bus.Subscribe(events.CollectionFinishedTopic, e.onCollectionFinished); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EventRecorder) onCompanyMatchAmbiguous(event events.CompanyMatchAmbiguous) {
	err := e.reviews.Add(context.Background(), entities.MatchReview{
		ObservedName: event.ObservedName,
		Source:       event.Source,
		CompanyID:    event.Candidate.ID,
		CompanyName:  event.Candidate.Name,
		Score:        event.Score,
		Merged:       event.Merged,
		CreatedAt:    e.now(),
	})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("couldn't queue company match for review: %v", err)
		return
	}
	log.Infof("company match queued for review, observed: %v, candidate: %v, score: %.3f",
		event.ObservedName, event.Candidate.Name, event.Score)
}

func (e *EventRecorder) onCollectionFinished(event events.CollectionFinished) {
	if err := e.runs.Save(context.Background(), event.Report); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("couldn't save run report: %v", err)
	}
}
