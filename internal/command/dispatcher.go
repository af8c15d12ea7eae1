// Package command pushes control commands to readers. Delivery is fire and
// forget: nothing waits for the reader to acknowledge.
package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/petcare/rfid-gateway/internal/broker"
	"github.com/petcare/rfid-gateway/internal/metrics"
	"github.com/petcare/rfid-gateway/internal/model"
)

// Dispatcher publishes reader commands. pairingTimeout is the session
// lifetime the pairing store enforces; START_PAIRING carries it in seconds so
// the reader's countdown ends when the session does.
type Dispatcher struct {
	publisher      broker.Publisher
	topics         broker.Topics
	pairingTimeout time.Duration
	metrics        *metrics.Metrics
	now            func() time.Time
}

func NewDispatcher(publisher broker.Publisher, topics broker.Topics, pairingTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		publisher:      publisher,
		topics:         topics,
		pairingTimeout: pairingTimeout,
		now:            time.Now,
	}
}

func (d *Dispatcher) WithMetrics(m *metrics.Metrics) *Dispatcher {
	d.metrics = m
	return d
}

func (d *Dispatcher) StartPairing(ctx context.Context, readerID, petID string) error {
	return d.send(ctx, d.topics.Command(readerID), model.CommandPayload{
		Command: model.CommandStartPairing,
		PetID:   petID,
		Timeout: int(d.pairingTimeout / time.Second),
	})
}

func (d *Dispatcher) CancelPairing(ctx context.Context, readerID string) error {
	return d.send(ctx, d.topics.Command(readerID), model.CommandPayload{
		Command: model.CommandCancelPairing,
	})
}

func (d *Dispatcher) RequestStatus(ctx context.Context, readerID string) error {
	return d.send(ctx, d.topics.Command(readerID), model.CommandPayload{
		Command: model.CommandStatusRequest,
	})
}

// PushPetInfo sends a resolved identity to the reader's display.
func (d *Dispatcher) PushPetInfo(ctx context.Context, readerID string, identity *model.Identity) error {
	if identity == nil {
		return fmt.Errorf("push pet info to %s: nil identity", readerID)
	}
	return d.send(ctx, d.topics.PetInfo(readerID), model.CommandPayload{
		Command: model.CommandPetInfo,
		PetID:   identity.PetID,
		Pet:     identity,
	})
}

func (d *Dispatcher) send(ctx context.Context, topic string, payload model.CommandPayload) error {
	payload.ID = uuid.NewString()
	payload.Timestamp = d.now().UnixMilli()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s command: %w", payload.Command, err)
	}

	if err := d.publisher.Publish(ctx, topic, data); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("command", string(payload.Command)).
			Msg("command publish failed")
		return err
	}
	d.metrics.RecordCommand(string(payload.Command))

	log.Debug().
		Str("topic", topic).
		Str("command", string(payload.Command)).
		Str("commandId", payload.ID).
		Msg("command sent")

	return nil
}
