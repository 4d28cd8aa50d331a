package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/nordviken/onboarding-backend/internal/application/events"
	"github.com/nordviken/onboarding-backend/internal/infra/mail"
	dbs "github.com/nordviken/onboarding-backend/pkg/db"
	shared "github.com/nordviken/onboarding-backend/pkg/interfaces"
)

const onboardingCompletedTemplate = `<html>
<body>
<p>Hi {{.CustomerName}},</p>
<p>Your portfolio <b>{{.PortfolioLabel}}</b> has been set up and is ready to use.
Log in to the portal to review it.</p>
<p>Nordviken, {{.Year}}</p>
</body>
</html>`

type SendMail struct {
	server     *mail.MailServer
	uowFactory *dbs.UOWFactory
}

func NewSendMail(server *mail.MailServer, uowFactory *dbs.UOWFactory) *SendMail {
	return &SendMail{server: server, uowFactory: uowFactory}
}

func (c *SendMail) Handle(ctx context.Context, event events.SendMail) (shared.UoW, error) {
	mailData, err := mapToMailData(event)
	if err != nil {
		return nil, err
	}
	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}

	htmlBody, err := renderHTML(onboardingCompletedTemplate, mailData)
	if err != nil {
		return uow, fmt.Errorf("error rendering html, %v", err)
	}

	_, err = tx.Exec(ctx, "INSERT INTO onboarding.mails(type, recipients, subject, content, sent_at) VALUES ($1,$2,$3,$4,$5)",
		mailData.GetMailType(), event.Email, event.Subject, htmlBody, time.Now(),
	)
	if err != nil {
		return uow, err
	}
	err = c.server.SendMail([]string{event.Email}, event.Subject, htmlBody)
	if err != nil {
		return uow, err
	}

	return uow, nil
}

func renderHTML(tmpl string, data mail.MailData) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func mapToMailData(event events.SendMail) (mail.MailData, error) {
	switch event.Subject {
	case mail.OnboardingCompletedData{}.GetSubject():
		var completed mail.OnboardingCompletedData
		raw, _ := json.Marshal(event.Data)
		if err := json.Unmarshal(raw, &completed); err != nil {
			return nil, fmt.Errorf("error mapping to mailData, %v", err)
		}
		return completed, nil
	}

	return nil, fmt.Errorf("no such mailData type exists")
}
