package publisher

import (
	"context"
	"time"

	d "github.com/fjod/go_restaurant/domain"
	r "github.com/fjod/go_restaurant/internal/repository"
	"github.com/sirupsen/logrus"
)

type EventRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*r.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
	GetStuckSessions(ctx context.Context) ([]*d.CheckoutSession, error)
	CompleteSession(ctx context.Context, s *d.CheckoutSession, payload []byte) error
}

// OutboxPoller moves checkout events from the outbox table to the sink. An
// event is marked processed only after the sink accepted it, so delivery is
// at least once.
type OutboxPoller struct {
	eventTick    time.Duration
	recoveryTick time.Duration
	batchSize    int
	repo         EventRepository
	sink         Sink
	log          logrus.FieldLogger
}

func NewOutboxPoller(repo EventRepository, sink Sink, eventTick time.Duration, log logrus.FieldLogger) *OutboxPoller {
	return &OutboxPoller{
		eventTick:    eventTick,
		recoveryTick: 30 * time.Second,
		batchSize:    100,
		repo:         repo,
		sink:         sink,
		log:          log.WithField("component", "outbox_poller"),
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	recoveryTicker := time.NewTicker(p.recoveryTick)
	defer eventTicker.Stop()
	defer recoveryTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-recoveryTicker.C:
			p.recoverStuckSessions(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.WithError(err).Error("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		log := p.log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": event.EventType})
		if err := p.sink.Publish(ctx, event); err != nil {
			log.WithError(err).Warn("failed to publish outbox event")
			continue
		}
		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			log.WithError(err).Warn("failed to mark outbox event as processed")
			continue
		}
		log.Debug("outbox event published")
	}
}

// recoverStuckSessions writes the missing completion event of succeeded
// sessions whose event was lost.
func (p *OutboxPoller) recoverStuckSessions(ctx context.Context) {
	sessions, err := p.repo.GetStuckSessions(ctx)
	if err != nil {
		p.log.WithError(err).Error("failed to get stuck sessions")
		return
	}
	for _, s := range sessions {
		log := p.log.WithField("checkout_id", s.ID)
		payload, err := s.CompletionEvent(s.UpdatedAt)
		if err != nil {
			log.WithError(err).Error("failed to build completion event")
			continue
		}
		if err := p.repo.CompleteSession(ctx, s, payload); err != nil {
			log.WithError(err).Error("failed to complete stuck session")
			continue
		}
		log.Info("stuck session recovered")
	}
}
