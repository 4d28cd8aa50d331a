package mail

type MailType string

const (
	OnboardingCompleted MailType = "OnboardingCompleted"
)

type MailData interface {
	GetMailType() MailType
	GetSubject() string
}

type OnboardingCompletedData struct {
	CustomerName   string
	PortfolioLabel string
	Year           string
}

func (s OnboardingCompletedData) GetMailType() MailType {
	return OnboardingCompleted
}

func (s OnboardingCompletedData) GetSubject() string {
	return "Welcome! Your portfolio is ready"
}
