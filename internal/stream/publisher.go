package stream

import (
	"context"
	"encoding/json"

	"github.com/cradoe/carvest/internal/models"
)

type Producer interface {
	Produce(ctx context.Context, topic, key string, value []byte) error
}

// LedgerPublisher writes ledger events as JSON keyed by user id.
type LedgerPublisher struct {
	producer Producer
	topic    string
}

func NewLedgerPublisher(producer Producer, topic string) *LedgerPublisher {
	return &LedgerPublisher{producer: producer, topic: topic}
}

func (p *LedgerPublisher) Publish(ctx context.Context, event models.LedgerEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.producer.Produce(ctx, p.topic, event.UserID, value)
}

// DecodeLedgerEvent is the consumer side of Publish.
func DecodeLedgerEvent(value []byte) (models.LedgerEvent, error) {
	var event models.LedgerEvent
	err := json.Unmarshal(value, &event)
	return event, err
}
