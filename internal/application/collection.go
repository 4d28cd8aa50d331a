package application

import (
	"github.com/nordviken/onboarding-backend/internal/application/commands"
	"github.com/nordviken/onboarding-backend/internal/application/processors"
	"github.com/nordviken/onboarding-backend/internal/application/query"
)

type Handlers struct {
	SubmitOnboarding *commands.SubmitOnboarding
	UploadDocument   *commands.UploadDocument
	GetSubmission    *query.GetSubmission
	ListSubmissions  *query.ListSubmissions
}

type Processors struct {
	CreateSequence *processors.CreateSequence
	SendMail       *commands.SendMail
}
