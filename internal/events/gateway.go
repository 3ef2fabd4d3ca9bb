package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	Stream     = "ccm.events"
	DeadStream = "ccm.events.dead"
	Group      = "carbonledger"

	readBlock    = 5 * time.Second
	readBatch    = 32
	claimMinIdle = time.Minute

	// poisonLimit is the delivery count after which an entry stops being
	// retried and moves to the dead letter stream.
	poisonLimit = 5
)

// Handler processes one event. Returning an error leaves the entry pending
// so it is redelivered; after poisonLimit deliveries it is dead lettered.
type Handler func(ctx context.Context, routingKey string, payload []byte) error

// Gateway publishes and consumes domain events over a Redis stream with a
// consumer group, so multiple instances share the work and an entry is
// acknowledged only after its handler succeeds.
type Gateway struct {
	client   *redis.Client
	consumer string
	handler  Handler
}

func NewGateway(client *redis.Client, consumerName string) *Gateway {
	return &Gateway{
		client:   client,
		consumer: consumerName,
	}
}

func (g *Gateway) Publish(ctx context.Context, routingKey string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = g.client.XAdd(ctx, &redis.XAddArgs{
		Stream: Stream,
		Values: map[string]interface{}{
			"key":     routingKey,
			"payload": payload,
		},
	}).Err()
	if err != nil {
		return err
	}

	zap.L().Debug("event published", zap.String("routingKey", routingKey))
	return nil
}

// Run consumes the stream until the context is cancelled. The consumer group
// is created on first start; BUSYGROUP on later starts is expected.
func (g *Gateway) Run(ctx context.Context, handler Handler) error {
	g.handler = handler

	err := g.client.XGroupCreateMkStream(ctx, Stream, Group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return err
	}

	zap.L().Info("event gateway started",
		zap.String("stream", Stream),
		zap.String("consumer", g.consumer))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		g.reclaimStale(ctx)

		streams, err := g.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    Group,
			Consumer: g.consumer,
			Streams:  []string{Stream, ">"},
			Count:    readBatch,
			Block:    readBlock,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			zap.L().Error("can't read event stream", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, msg := range stream.Messages {
				g.process(ctx, msg)
			}
		}
	}
}

// reclaimStale takes over entries another consumer read but never acked.
func (g *Gateway) reclaimStale(ctx context.Context) {
	messages, _, err := g.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   Stream,
		Group:    Group,
		Consumer: g.consumer,
		MinIdle:  claimMinIdle,
		Start:    "0-0",
		Count:    readBatch,
	}).Result()
	if err != nil {
		if err != redis.Nil && !errors.Is(err, context.Canceled) {
			zap.L().Warn("can't reclaim stale events", zap.Error(err))
		}
		return
	}

	for _, msg := range messages {
		g.process(ctx, msg)
	}
}

func (g *Gateway) process(ctx context.Context, msg redis.XMessage) {
	routingKey, _ := msg.Values["key"].(string)
	payload, _ := msg.Values["payload"].(string)

	err := g.handler(ctx, routingKey, []byte(payload))
	if err == nil {
		if err := g.client.XAck(ctx, Stream, Group, msg.ID).Err(); err != nil {
			zap.L().Error("can't ack event", zap.String("id", msg.ID), zap.Error(err))
		}
		return
	}

	zap.L().Error("event handler failed",
		zap.String("id", msg.ID),
		zap.String("routingKey", routingKey),
		zap.Error(err))

	if g.deliveryCount(ctx, msg.ID) >= poisonLimit {
		g.deadLetter(ctx, msg, routingKey, err)
	}
}

func (g *Gateway) deliveryCount(ctx context.Context, id string) int64 {
	pending, err := g.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: Stream,
		Group:  Group,
		Start:  id,
		End:    id,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return pending[0].RetryCount
}

// deadLetter parks a poison entry so it stops blocking the group, keeping
// the original values plus the last error for inspection.
func (g *Gateway) deadLetter(ctx context.Context, msg redis.XMessage, routingKey string, cause error) {
	values := map[string]interface{}{
		"key":     routingKey,
		"payload": msg.Values["payload"],
		"error":   cause.Error(),
		"origin":  msg.ID,
	}
	if err := g.client.XAdd(ctx, &redis.XAddArgs{Stream: DeadStream, Values: values}).Err(); err != nil {
		zap.L().Error("can't dead letter event", zap.String("id", msg.ID), zap.Error(err))
		return
	}
	if err := g.client.XAck(ctx, Stream, Group, msg.ID).Err(); err != nil {
		zap.L().Error("can't ack dead lettered event", zap.String("id", msg.ID), zap.Error(err))
		return
	}

	zap.L().Warn("event dead lettered",
		zap.String("id", msg.ID),
		zap.String("routingKey", routingKey))
}

func isBusyGroup(err error) bool {
	return err != nil && len(err.Error()) >= 9 && err.Error()[:9] == "BUSYGROUP"
}
