// Package router turns inbound reader traffic into gateway calls and
// publishes the correlated responses.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/petcare/rfid-gateway/internal/audit"
	"github.com/petcare/rfid-gateway/internal/broker"
	apperrors "github.com/petcare/rfid-gateway/internal/errors"
	"github.com/petcare/rfid-gateway/internal/metrics"
	"github.com/petcare/rfid-gateway/internal/model"
	"github.com/petcare/rfid-gateway/internal/service"
)

const errorDisplay = "ERRO - TENTE NOVAMENTE"

type Gateway interface {
	ProcessRead(ctx context.Context, read model.TagRead) *service.ReadResult
	PairingStatus(ctx context.Context, readerID string) (*model.PairingStatus, error)
}

type PetInfoPusher interface {
	PushPetInfo(ctx context.Context, readerID string, identity *model.Identity) error
}

type ReadLimiter interface {
	Allow(ctx context.Context, readerID string) bool
}

type Router struct {
	gateway   Gateway
	publisher broker.Publisher
	topics    broker.Topics
	pusher    PetInfoPusher
	limiter   ReadLimiter
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(gateway Gateway, publisher broker.Publisher, topics broker.Topics, pusher PetInfoPusher) *Router {
	return &Router{
		gateway:   gateway,
		publisher: publisher,
		topics:    topics,
		pusher:    pusher,
		now:       time.Now,
	}
}

// WithLimiter enables per-reader flood protection on read and checkin topics.
func (r *Router) WithLimiter(limiter ReadLimiter) *Router {
	r.limiter = limiter
	return r
}

func (r *Router) WithMetrics(m *metrics.Metrics) *Router {
	r.metrics = m
	return r
}

// Run subscribes the router to every inbound reader topic.
func (r *Router) Run(ctx context.Context, subscriber broker.Subscriber) error {
	return subscriber.Subscribe(ctx, r.topics.InboundPatterns(), r.Handle)
}

// Handle processes a single delivery. Nothing escapes it: failures, panics
// included, are published to the reader's error topic.
func (r *Router) Handle(ctx context.Context, msg broker.Message) {
	readerID, kind := r.topics.ParseTopic(msg.Topic)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("topic", msg.Topic).
				Msg("panic while handling message")
			r.publishError(ctx, readerID, apperrors.Internal(fmt.Sprintf("Unexpected failure: %v", rec)))
		}
	}()

	if err := r.dispatch(ctx, readerID, kind, msg); err != nil {
		log.Warn().
			Err(err).
			Str("topic", msg.Topic).
			Str("readerId", readerID).
			Msg("message rejected")
		r.publishError(ctx, readerID, err)
	}
}

func (r *Router) dispatch(ctx context.Context, readerID string, kind broker.Kind, msg broker.Message) error {
	if readerID == broker.UnknownReader {
		return apperrors.UnknownTopic(msg.Topic)
	}

	switch kind {
	case broker.KindRead:
		var payload model.TagReadPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		if err := matchReader(payload.ReaderID, readerID); err != nil {
			return err
		}
		read := model.TagRead{
			TagUID:    payload.TagUID,
			ReaderID:  readerID,
			Timestamp: payload.Timestamp.Time,
		}
		return r.handleRead(ctx, read, kind, r.topics.Response(readerID))

	case broker.KindCheckIn:
		var payload model.CheckInPayload
		if err := decode(msg.Payload, &payload); err != nil {
			return err
		}
		if err := matchReader(payload.ReaderID, readerID); err != nil {
			return err
		}
		read := model.TagRead{
			TagUID:   payload.TagUID,
			ReaderID: readerID,
		}
		return r.handleRead(ctx, read, kind, r.topics.CheckInResponse(readerID))

	case broker.KindStatus:
		return r.handleStatus(ctx, readerID)

	default:
		return apperrors.UnknownTopic(msg.Topic)
	}
}

func (r *Router) handleRead(ctx context.Context, read model.TagRead, kind broker.Kind, responseTopic string) error {
	if r.limiter != nil && !r.limiter.Allow(ctx, read.ReaderID) {
		audit.Log(ctx, audit.Event{
			Type:     audit.EventReadThrottled,
			ReaderID: read.ReaderID,
			TagUID:   read.TagUID,
		})
		return apperrors.RateLimitExceeded()
	}

	start := time.Now()
	result := r.gateway.ProcessRead(ctx, read)
	r.metrics.RecordRead(string(kind), string(result.Outcome), time.Since(start))

	if err := r.publishJSON(ctx, responseTopic, result); err != nil {
		return err
	}

	if kind == broker.KindCheckIn && r.pusher != nil && result.Outcome == model.OutcomeCheckedIn {
		if err := r.pusher.PushPetInfo(ctx, read.ReaderID, result.Identity); err != nil {
			log.Warn().Err(err).Str("readerId", read.ReaderID).Msg("pet info push failed")
		}
	}

	return nil
}

func (r *Router) handleStatus(ctx context.Context, readerID string) error {
	status, err := r.gateway.PairingStatus(ctx, readerID)
	if err != nil {
		return err
	}

	return r.publishJSON(ctx, r.topics.StatusResponse(readerID), model.StatusResponse{
		IsPairing: status.IsPairing,
		PetID:     status.PetID,
		Message:   status.Message,
		Timestamp: r.now().UnixMilli(),
	})
}

func (r *Router) publishJSON(ctx context.Context, topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.Internal("Response encoding failed").WithCause(err)
	}
	if err := r.publisher.Publish(ctx, topic, data); err != nil {
		return apperrors.External("broker", err)
	}
	return nil
}

func (r *Router) publishError(ctx context.Context, readerID string, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal("Message could not be processed").WithCause(err)
	}
	r.metrics.RecordRouterError(string(appErr.Code))

	payload := model.ErrorPayload{
		Success:   false,
		Error:     appErr.Message,
		Code:      string(appErr.Code),
		Message:   errorDisplay,
		Timestamp: r.now().UnixMilli(),
	}

	data, mErr := json.Marshal(payload)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to encode error payload")
		return
	}

	topic := r.topics.Error(readerID)
	if pErr := r.publisher.Publish(ctx, topic, data); pErr != nil {
		log.Error().
			Err(pErr).
			Str("topic", topic).
			Msg("failed to publish error payload")
	}
}

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return apperrors.MalformedMessage(fmt.Errorf("empty payload"))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return apperrors.MalformedMessage(err)
	}
	return nil
}

// matchReader rejects a payload that names a reader other than the one whose
// topic carried it. The topic is the only source of the reader id.
func matchReader(payloadReader, topicReader string) error {
	if payloadReader == "" || payloadReader == topicReader {
		return nil
	}
	return apperrors.MalformedMessage(fmt.Errorf("payload readerId %q does not match topic reader %q", payloadReader, topicReader))
}
