// Package notifier consumes settlement events and emits fulfillment
// notices. Delivery itself (mail/SMS) is a collaborator; here we log.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/alharthy/oudshop-backend/internal/kafka"
	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderSettled is the consumer handler for order.settled.
func (s *Service) HandleOrderSettled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderSettled {
		return nil
	}

	// dedup by event id
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderSettledPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.AlreadyProcessed {
		return nil
	}

	log.Printf("%s: order settled: ref=%s session=%s amount=%d baisa email=%s",
		s.ServiceName, p.OrderRef, p.SessionID, p.AmountBaisa, p.Email)
	for _, l := range p.Lines {
		if l.StockLeft == 0 {
			log.Printf("stock depleted: product=%s (order %s)", l.ProductID, p.OrderRef)
		}
	}
	return nil
}
