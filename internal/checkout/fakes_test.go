package checkout

import (
	"context"
	"errors"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/thawani"
)

type fakePending struct {
	m      map[string]*orders.PendingOrder
	setErr error
	getErr error
}

func newFakePending() *fakePending {
	return &fakePending{m: map[string]*orders.PendingOrder{}}
}

func (f *fakePending) Set(_ context.Context, p *orders.PendingOrder) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.m[p.OrderRef] = p
	return nil
}

func (f *fakePending) Get(_ context.Context, ref string) (*orders.PendingOrder, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.m[ref], nil
}

func (f *fakePending) Delete(_ context.Context, ref string) error {
	delete(f.m, ref)
	return nil
}

type fakeGateway struct {
	createID  string
	createErr error
	creates   []thawani.SessionRequest

	sessions []thawani.SessionSummary
	detail   map[string]*thawani.Session
}

func (f *fakeGateway) CreateSession(_ context.Context, req thawani.SessionRequest) (string, error) {
	f.creates = append(f.creates, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeGateway) ListSessions(_ context.Context, _, _ int) ([]thawani.SessionSummary, error) {
	return f.sessions, nil
}

func (f *fakeGateway) GetSession(_ context.Context, id string) (*thawani.Session, error) {
	s, ok := f.detail[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return s, nil
}

func (f *fakeGateway) PaymentLink(id string) string { return "https://pay.example/" + id }

type fakeOrders struct {
	byRef   map[string]*orders.Order
	creates int
	updates int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byRef: map[string]*orders.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, o *orders.Order) error {
	if o.ID == "" {
		o.ID = "ord-" + o.OrderRef
	}
	cp := *o
	f.byRef[o.OrderRef] = &cp
	f.creates++
	return nil
}

func (f *fakeOrders) Update(_ context.Context, o *orders.Order) error {
	if _, ok := f.byRef[o.OrderRef]; !ok {
		return orders.ErrNotFound
	}
	cp := *o
	f.byRef[o.OrderRef] = &cp
	f.updates++
	return nil
}

func (f *fakeOrders) FindByRef(_ context.Context, ref string) (*orders.Order, error) {
	o, ok := f.byRef[ref]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type fakeStock struct {
	stock map[string]int
	calls map[string]int
	errOn string
}

func newFakeStock() *fakeStock {
	return &fakeStock{stock: map[string]int{}, calls: map[string]int{}}
}

func (f *fakeStock) DecrementStock(_ context.Context, id string, qty int) (int, bool, error) {
	f.calls[id] += qty
	if id == f.errOn {
		return 0, false, errors.New("db down")
	}
	cur, ok := f.stock[id]
	if !ok {
		return 0, false, nil
	}
	left := cur - qty
	if left < 0 {
		left = 0
	}
	f.stock[id] = left
	return left, true, nil
}

type fakePublisher struct {
	values [][]byte
}

func (f *fakePublisher) Publish(_, value []byte, _ ...kafkago.Header) {
	f.values = append(f.values, value)
}
