package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/cradoe/carvest/internal/models"
	"github.com/cradoe/carvest/internal/stream"
)

var errUnknownEvent = errors.New("unknown ledger event kind")

// NotificationWorker polls the ledger topic until Ctx is cancelled and emails
// the user each outcome.
func (wk *Worker) NotificationWorker() error {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: wk.GroupID,
		Topic:   wk.Topic,
	})
	if err != nil {
		return fmt.Errorf("create consumer: %w", err)
	}
	defer consumer.Close()

	wk.Logger.Info("notification worker started", "topic", wk.Topic, "group", wk.GroupID)

	for {
		select {
		case <-wk.Ctx.Done():
			wk.Logger.Info("notification worker stopped")
			return nil
		default:
		}

		event := consumer.Poll(100)
		switch e := event.(type) {
		case *kafka.Message:
			if err := wk.handle(wk.Ctx, e.Value); err != nil {
				wk.Logger.Error("could not process ledger event",
					"partition", e.TopicPartition.String(),
					"error", err.Error(),
				)
			}
		case kafka.Error:
			wk.Logger.Error("kafka consumer error", "error", e.Error())
		}
	}
}

func (wk *Worker) handle(ctx context.Context, value []byte) error {
	event, err := stream.DecodeLedgerEvent(value)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	user, found, err := wk.DB.User().GetOne(ctx, nil, event.UserID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %s: %w", event.UserID, models.ErrNotFound)
	}

	data := wk.Helper.NewEmailData()
	data["Name"] = user.Name
	data["Currency"] = user.Currency

	var template string

	switch event.Kind {
	case models.EventTransactionDecided:
		template = "transaction-decided.tmpl"
		data["Type"] = event.Type
		data["Status"] = event.Status
		data["Amount"] = event.Amount
		data["Reason"] = event.Reason
		data["TransactionID"] = event.TransactionID
	case models.EventOverrideApplied:
		template = "account-adjusted.tmpl"
		data["Amount"] = event.Amount
		data["Direction"] = event.Direction
		data["Description"] = event.Description
	case models.EventKYCDecided:
		template = "kyc-decided.tmpl"
		data["Level"] = event.KYCLevel
		data["Reason"] = event.Reason
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, event.Kind)
	}

	if err := wk.Mailer.Send(user.Email, data, template); err != nil {
		return fmt.Errorf("send %s: %w", template, err)
	}

	wk.Logger.Info("ledger notification sent", "kind", event.Kind, "user_id", user.ID)
	return nil
}
