package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/alharthy/oudshop-backend/internal/kafka"
	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/pricing"
	"github.com/alharthy/oudshop-backend/internal/thawani"
)

// OrderStore is the durable side of confirmation.
type OrderStore interface {
	Create(ctx context.Context, o *orders.Order) error
	Update(ctx context.Context, o *orders.Order) error
	FindByRef(ctx context.Context, ref string) (*orders.Order, error)
}

// ProductStock mutates inventory. DecrementStock must be atomic per
// product: the clamp and the in-stock flag are computed against the
// row's current state, never read-then-write in application code.
type ProductStock interface {
	DecrementStock(ctx context.Context, id string, qty int) (stockLeft int, updated bool, err error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type ConfirmResult struct {
	Order            *orders.Order `json:"order"`
	AlreadyProcessed bool          `json:"already_processed"`
}

// Reconciler exchanges a paid gateway session for a settled durable
// order. Safe to invoke any number of times per order ref: webhooks
// and client polling may both trigger it.
type Reconciler struct {
	Gateway     Gateway
	Orders      OrderStore
	Products    ProductStock
	Pending     PendingStore
	Producer    Publisher // optional
	ServiceName string
}

const sessionPageSize = 20

func (r *Reconciler) Confirm(ctx context.Context, orderRef string) (*ConfirmResult, error) {
	sums, err := r.Gateway.ListSessions(ctx, sessionPageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessionID := ""
	for _, s := range sums {
		if s.ClientReferenceID == orderRef {
			sessionID = s.SessionID
			break
		}
	}
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	sess, err := r.Gateway.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.PaymentStatus != thawani.StatusPaid {
		return nil, ErrPaymentNotSuccessful
	}

	meta := sess.Metadata
	if meta == nil {
		meta = map[string]string{}
	}

	existing, err := r.Orders.FindByRef(ctx, orderRef)
	if err != nil && !errors.Is(err, orders.ErrNotFound) {
		return nil, fmt.Errorf("find order: %w", err)
	}

	cached, cerr := r.Pending.Get(ctx, orderRef)
	if cerr != nil {
		// metadata still reconstructs the essentials
		log.Printf("pending cache read failed for %s: %v", orderRef, cerr)
		cached = nil
	}

	fee := r.resolveShippingFee(meta, cached)

	var (
		o                *orders.Order
		alreadyProcessed bool
	)
	if existing == nil {
		o = orderFromCache(orderRef, cached, fee)
	} else {
		o = existing
		// read the pre-update state before anything is touched
		alreadyProcessed = o.Settled(sess.SessionID)
		o.Status = orders.StatusCompleted
		fillFromMetadata(o, meta)
		if o.ShippingBaisa == nil {
			o.ShippingBaisa = &fee
		}
		if cached != nil && len(cached.Lines) > 0 {
			o.Lines = cached.Lines
		}
		if o.Gift.Normalize() == nil && cached != nil {
			o.Gift = cached.Gift.Normalize()
		}
	}

	// the gateway is the source of truth for the amount charged
	o.AmountBaisa = sess.TotalAmount
	now := time.Now().UTC()
	o.PaymentSessionID = sess.SessionID
	o.PaidAt = &now

	if existing == nil {
		fillFromMetadata(o, meta)
		err = r.Orders.Create(ctx, o)
	} else {
		err = r.Orders.Update(ctx, o)
	}
	if err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	var settled []orders.SettledLine
	if !alreadyProcessed {
		settled = r.decrementStock(ctx, o)
	}

	if err := r.Pending.Delete(ctx, orderRef); err != nil {
		log.Printf("pending cache delete failed for %s: %v", orderRef, err)
	}

	r.publishSettled(o, sess.SessionID, alreadyProcessed, settled)

	return &ConfirmResult{Order: o, AlreadyProcessed: alreadyProcessed}, nil
}

// resolveShippingFee reproduces the fee used at session creation:
// metadata value, then cached value, then a recompute from whatever
// destination survives, then the non-Gulf flat fee.
func (r *Reconciler) resolveShippingFee(meta map[string]string, cached *orders.PendingOrder) int64 {
	if v := meta[metaShippingFee]; v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	if cached != nil {
		return cached.ShippingBaisa
	}
	country, gulf := meta[metaCountry], meta[metaGulfCountry]
	return pricing.Shipping(country, gulf, 0)
}

// decrementStock deducts each valid line independently. Failures are
// logged and swallowed: the order is already paid, inventory catches
// up out of band.
func (r *Reconciler) decrementStock(ctx context.Context, o *orders.Order) []orders.SettledLine {
	out := make([]orders.SettledLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		if l.ProductID == "" || l.Quantity <= 0 {
			continue
		}
		sl := orders.SettledLine{ProductID: l.ProductID, Qty: l.Quantity, StockLeft: -1}
		stock, updated, err := r.Products.DecrementStock(ctx, l.ProductID, l.Quantity)
		switch {
		case err != nil:
			log.Printf("stock decrement failed: order=%s product=%s qty=%d: %v", o.OrderRef, l.ProductID, l.Quantity, err)
		case !updated:
			log.Printf("stock decrement noop: order=%s product=%s not found", o.OrderRef, l.ProductID)
		default:
			sl.StockLeft = stock
		}
		out = append(out, sl)
	}
	return out
}

func (r *Reconciler) publishSettled(o *orders.Order, sessionID string, alreadyProcessed bool, lines []orders.SettledLine) {
	if r.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderSettled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      r.ServiceName,
		CorrelationID: o.OrderRef,
		Payload: kafkax.MustMarshal(orders.OrderSettledPayload{
			OrderID:          o.ID,
			OrderRef:         o.OrderRef,
			SessionID:        sessionID,
			AmountBaisa:      o.AmountBaisa,
			Email:            o.Email,
			AlreadyProcessed: alreadyProcessed,
			Lines:            lines,
		}),
	}
	r.Producer.Publish(orders.PartitionKey(o.OrderRef), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderSettled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func orderFromCache(orderRef string, cached *orders.PendingOrder, fee int64) *orders.Order {
	o := &orders.Order{
		OrderRef:      orderRef,
		Status:        orders.StatusCompleted,
		ShippingBaisa: &fee,
	}
	if cached == nil {
		return o
	}
	o.Lines = cached.Lines
	o.CustomerName = cached.CustomerName
	o.CustomerPhone = cached.CustomerPhone
	o.Country = cached.Country
	o.GulfCountry = cached.GulfCountry
	o.Wilayat = cached.Wilayat
	o.Description = cached.Description
	o.Email = cached.Email
	o.DepositMode = cached.DepositMode
	o.RemainingBaisa = cached.RemainingBaisa
	o.Gift = cached.Gift.Normalize()
	return o
}
