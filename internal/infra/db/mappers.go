package db

import (
	"encoding/json"
	"log/slog"

	"github.com/nordviken/onboarding-backend/internal/application/events"
)

func MapOutboxModelToOnboardingSubmitted(outbox Outbox) events.OnboardingSubmitted {
	var event events.OnboardingSubmitted
	if err := json.Unmarshal(outbox.Payload, &event); err != nil {
		slog.Error("error unmarshalling outbox payload", "id", outbox.ID, "err", err)
	}
	return event
}

func MapOutboxModelToSendMail(outbox Outbox) events.SendMail {
	var event events.SendMail
	if err := json.Unmarshal(outbox.Payload, &event); err != nil {
		slog.Error("error unmarshalling outbox payload", "id", outbox.ID, "err", err)
	}
	return event
}
