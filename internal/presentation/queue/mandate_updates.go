package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/nordviken/onboarding-backend/internal/application/commands"
	"github.com/nordviken/onboarding-backend/internal/domain/consts"
	"github.com/nordviken/onboarding-backend/pkg/env"
)

// MandateUpdatesPoller consumes mandate status notifications forwarded from
// the bank and records them on the originating submissions.
type MandateUpdatesPoller struct {
	client  *sqs.Client
	cfg     MandateUpdatesConfig
	handler *commands.RecordMandateStatus
	stop    chan struct{}
}

type MandateUpdatesConfig struct {
	Enabled   bool
	SqsURL    string
	SqsRegion string
}

func NewMandateUpdatesConfig() MandateUpdatesConfig {
	return MandateUpdatesConfig{
		Enabled:   os.Getenv("MANDATES_SQS_ENABLED") == "true",
		SqsURL:    os.Getenv("MANDATES_SQS_URL"),
		SqsRegion: env.GetEnv("MANDATES_SQS_REGION", "eu-north-1"),
	}
}

type MandateStatusUpdate struct {
	MandateCode string `json:"mandateCode"`
	Status      string `json:"status"`
}

func NewMandateUpdatesPoller(client *sqs.Client, cfg MandateUpdatesConfig, handler *commands.RecordMandateStatus) *MandateUpdatesPoller {
	return &MandateUpdatesPoller{client: client, cfg: cfg, stop: make(chan struct{}), handler: handler}
}

func (p *MandateUpdatesPoller) Start() {
	slog.Info("Starting poll of MandateUpdatesPoller...")
	ctx := context.Background()

	for {
		select {
		case <-p.stop:
			slog.Info("Stopping MandateUpdatesPoller loop")
			return
		default:
			out, err := p.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
				QueueUrl:            aws.String(p.cfg.SqsURL),
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   30,
			})
			if err != nil {
				slog.Info("err receiving from queue", "err", err)
				time.Sleep(time.Second)
				continue
			}
			if len(out.Messages) == 0 {
				continue
			}

			processedMessages := make([]types.DeleteMessageBatchRequestEntry, len(out.Messages))
			for i, m := range out.Messages {
				slog.Debug("msg received from queue", "msg", *m.Body)

				var update MandateStatusUpdate
				err = json.Unmarshal([]byte(*m.Body), &update)
				if err != nil {
					slog.Error("err unmarshalling msg", "id", m.MessageId, "err", err)
				} else if err = p.handler.Execute(ctx, update.MandateCode, consts.MandateStatus(update.Status)); err != nil {
					slog.Error("err recording mandate status", "mandate", update.MandateCode, "err", err)
				}

				processedMessages[i] = types.DeleteMessageBatchRequestEntry{
					Id:            m.MessageId,
					ReceiptHandle: m.ReceiptHandle,
				}
			}

			_, err = p.client.DeleteMessageBatch(ctx, &sqs.DeleteMessageBatchInput{
				QueueUrl: aws.String(p.cfg.SqsURL),
				Entries:  processedMessages,
			})
			if err != nil {
				slog.Error("err deleting message", "err", err)
			}
		}
	}
}

func (p *MandateUpdatesPoller) Stop() {
	p.stop <- struct{}{}
}
