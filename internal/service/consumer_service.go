package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"ai-lawmatch-be/internal/dto"
	"ai-lawmatch-be/pkg/ranking"
	"ai-lawmatch-be/pkg/triage"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process rank queue. Ranking runs off the
// request path so a triage turn never waits for scoring.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	rankingService IRankingService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	rankingService IRankingService,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		rankingService: rankingService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishRankCaseMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal rank message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Ranking case %s", payload.CaseId)

	_, err := cs.rankingService.RankCase(ctx, &dto.RankRequest{CaseId: payload.CaseId})
	if err != nil {
		if isPermanentRankError(err) {
			// Redelivery cannot succeed until the case itself changes; the
			// rank endpoint re-triggers once it does.
			log.Printf("[WARN] Dropping unrankable case %s: %v", payload.CaseId, err)
			msg.Ack()
			return
		}
		log.Printf("[ERROR] Ranking failed for case %s: %v", payload.CaseId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}

func isPermanentRankError(err error) bool {
	return errors.Is(err, ranking.ErrInvalidCase) || errors.Is(err, triage.ErrSessionNotFound)
}
