package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"soulscript-be/internal/dto"
	"soulscript-be/internal/pkg/mailer"
	"soulscript-be/pkg/events"
	pktNats "soulscript-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IAlertConsumerService interface {
	Consume(ctx context.Context) error
}

// alertConsumerService drains moderation violation messages off the
// in-process bus and fans them out to the admin mailbox and the NATS
// event stream. Both sinks are best effort; a failure never blocks the
// chat pipeline that produced the violation.
type alertConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	emailService   mailer.IEmailService
	alertEmail     string
	eventPublisher *pktNats.Publisher
}

func NewAlertConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	alertEmail string,
	eventPublisher *pktNats.Publisher,
) IAlertConsumerService {
	return &alertConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		emailService:   emailService,
		alertEmail:     alertEmail,
		eventPublisher: eventPublisher,
	}
}

func (cs *alertConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *alertConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ModerationViolationMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal moderation violation: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing moderation violation for session %s", payload.SessionId)

	if cs.emailService != nil && cs.alertEmail != "" {
		err := cs.emailService.SendModerationAlert(
			cs.alertEmail,
			payload.SessionId.String(),
			payload.ContentType,
			payload.Reason,
		)
		if err != nil {
			log.Printf("[WARN] Failed to send moderation alert email: %v", err)
		}
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "CONTENT_BLOCKED",
			Data: map[string]interface{}{
				"session_id":   payload.SessionId,
				"content_type": payload.ContentType,
				"reason":       payload.Reason,
			},
			OccurredAt: time.Now(),
		}
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish CONTENT_BLOCKED event: %v", err)
		}
	}

	msg.Ack()
}
