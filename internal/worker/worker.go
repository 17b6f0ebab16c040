package worker

import (
	"context"
	"log/slog"

	"github.com/cradoe/carvest/internal/helper"
	"github.com/cradoe/carvest/internal/repository"
	"github.com/cradoe/carvest/internal/smtp"
	"github.com/cradoe/carvest/internal/stream"
)

const (
	// notificationGroupID consumes ledger events to email the affected user.
	notificationGroupID = "ledger-notification-group"

	// LedgerEventsTopic carries decisions, overrides and KYC outcomes.
	LedgerEventsTopic = "ledger.events"
)

// Worker holds what the background consumers need. Consumer-specific
// settings are passed to the individual worker.
type Worker struct {
	KafkaStream *stream.KafkaStream
	DB          repository.Database
	Mailer      smtp.MailerInterface
	Helper      *helper.HelperRepository
	Logger      *slog.Logger
	Ctx         context.Context
	Topic       string
	GroupID     string
}

func New(wk *Worker) *Worker {
	topic := wk.Topic
	if topic == "" {
		topic = LedgerEventsTopic
	}
	groupID := wk.GroupID
	if groupID == "" {
		groupID = notificationGroupID
	}

	return &Worker{
		KafkaStream: wk.KafkaStream,
		DB:          wk.DB,
		Mailer:      wk.Mailer,
		Helper:      wk.Helper,
		Logger:      wk.Logger,
		Ctx:         wk.Ctx,
		Topic:       topic,
		GroupID:     groupID,
	}
}
