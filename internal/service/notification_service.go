package service

import (
	"context"
	"fmt"

	"ai-lawmatch-be/internal/pkg/logger"
	"ai-lawmatch-be/internal/pkg/mailer"
	"ai-lawmatch-be/internal/repository/specification"
	"ai-lawmatch-be/internal/repository/unitofwork"
	"ai-lawmatch-be/pkg/events"
	pktNats "ai-lawmatch-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService listens to the durable event bus and emails lawyers
// when a case is matched to them.
type NotificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	subscriber   *pktNats.Subscriber
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	sub *pktNats.Subscriber,
	emailService mailer.IEmailService,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		uowFactory:   uowFactory,
		subscriber:   sub,
		emailService: emailService,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("lawmatch."+events.TypeMatchesReady, "match-notifier", s.handleMatchesReady)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start match subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to MATCHES_READY", nil)
}

func (s *NotificationService) handleMatchesReady(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	caseId, err := uuid.Parse(fmt.Sprintf("%v", payload["case_id"]))
	if err != nil {
		s.logger.Warn("NotificationService", "Event missing case_id, skipping", map[string]interface{}{"error": err.Error()})
		return nil
	}

	rawIds, ok := payload["lawyer_ids"].([]interface{})
	if !ok || len(rawIds) == 0 {
		return nil
	}
	lawyerIds := make([]uuid.UUID, 0, len(rawIds))
	for _, raw := range rawIds {
		id, err := uuid.Parse(fmt.Sprintf("%v", raw))
		if err != nil {
			continue
		}
		lawyerIds = append(lawyerIds, id)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	caseEnt, err := uow.CaseRepository().FindOne(ctx, specification.ByID{ID: caseId})
	if err != nil {
		return err
	}
	if caseEnt == nil {
		s.logger.Warn("NotificationService", "Case no longer exists, skipping", map[string]interface{}{"case_id": caseId})
		return nil
	}

	lawyers, err := uow.LawyerRepository().FindAll(ctx, specification.ByIDs{IDs: lawyerIds})
	if err != nil {
		return err
	}

	for _, l := range lawyers {
		if l.Email == "" {
			continue
		}
		if err := s.emailService.SendMatchNotification(l.Email, l.FullName, caseEnt.Area, caseEnt.Subarea); err != nil {
			s.logger.Warn("NotificationService", "Failed to send match email", map[string]interface{}{
				"lawyer_id": l.Id,
				"error":     err.Error(),
			})
		}
	}

	s.logger.Info("NotificationService", "Match notifications dispatched", map[string]interface{}{
		"case_id": caseId,
		"count":   len(lawyers),
	})
	return nil
}
