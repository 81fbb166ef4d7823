package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/study-mission-api/pkg/messaging"
)

// RoutingKeyMissionsGenerated is published after missions were stored.
const RoutingKeyMissionsGenerated = "missions.generated"

// MissionsGeneratedEvent notifies downstream consumers about a stored distribution.
type MissionsGeneratedEvent struct {
	MemberID   string    `json:"memberId"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Inserted   int       `json:"inserted"`
	Skipped    int       `json:"skipped"`
	Warnings   []string  `json:"warnings"`
	OccurredAt time.Time `json:"occurredAt"`
}

// MissionEventPublisher sends mission events to an AMQP exchange.
type MissionEventPublisher struct {
	channel  messaging.Channel
	exchange string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewMissionEventPublisher constructs a publisher. A nil channel disables publishing.
func NewMissionEventPublisher(channel messaging.Channel, exchange string, logger *zap.Logger) *MissionEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MissionEventPublisher{channel: channel, exchange: exchange, timeout: 5 * time.Second, logger: logger}
}

// PublishMissionsGenerated publishes the event and returns the delivery error, if any.
func (p *MissionEventPublisher) PublishMissionsGenerated(ctx context.Context, event MissionsGeneratedEvent) error {
	if p == nil || p.channel == nil {
		return nil
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := messaging.PublishJSON(ctx, p.channel, p.exchange, RoutingKeyMissionsGenerated, event); err != nil {
		return err
	}
	p.logger.Debug("missions event published",
		zap.String("member_id", event.MemberID),
		zap.Int("inserted", event.Inserted),
	)
	return nil
}
