package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/alharthy/oudshop-backend/internal/pricing"
)

func newService(gw *fakeGateway, pending *fakePending) *Service {
	return &Service{
		Gateway:     gw,
		Pending:     pending,
		SuccessURL:  "https://shop.example/SuccessRedirect",
		CancelURL:   "https://shop.example/cancel",
		ServiceName: "shop-api",
	}
}

func TestCreateSessionRejectsEmptyProducts(t *testing.T) {
	gw := &fakeGateway{createID: "sess_1"}
	pending := newFakePending()
	svc := newService(gw, pending)

	_, err := svc.CreateSession(context.Background(), SessionInput{})
	if !errors.Is(err, ErrNoProducts) {
		t.Fatalf("err = %v, want ErrNoProducts", err)
	}
	if len(gw.creates) != 0 {
		t.Error("gateway called for empty product list")
	}
	if len(pending.m) != 0 {
		t.Error("cache written for empty product list")
	}
}

func TestCreateSessionTotalsAndLineItems(t *testing.T) {
	gw := &fakeGateway{createID: "sess_1"}
	pending := newFakePending()
	svc := newService(gw, pending)

	res, err := svc.CreateSession(context.Background(), SessionInput{
		Products: []ProductInput{
			{ProductID: "p1", Name: "french shayla", Price: 3, Quantity: 2, Category: pricing.CategoryShaylaFrench},
			{ProductID: "p2", Name: "royal oud", Price: 5, Quantity: 1, Category: "oud"},
		},
		Email:        "a@b.om",
		CustomerName: "Salim",
		Country:      "oman",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if res.SessionID != "sess_1" {
		t.Errorf("session id = %q", res.SessionID)
	}
	if res.PaymentLink != "https://pay.example/sess_1" {
		t.Errorf("payment link = %q", res.PaymentLink)
	}

	req := gw.creates[0]
	if req.ClientReferenceID != res.OrderRef {
		t.Errorf("client_reference_id = %q, want %q", req.ClientReferenceID, res.OrderRef)
	}
	// 2x3000 - 1000 pair discount -> unit 2500; oud 5000; shipping 2000
	if len(req.Products) != 3 {
		t.Fatalf("line items = %d, want 3", len(req.Products))
	}
	if req.Products[0].UnitAmount != 2500 || req.Products[0].Quantity != 2 {
		t.Errorf("shayla line = %+v", req.Products[0])
	}
	if req.Products[1].UnitAmount != 5000 {
		t.Errorf("oud line = %+v", req.Products[1])
	}
	if req.Products[2].Name != "Shipping fee" || req.Products[2].UnitAmount != 2000 {
		t.Errorf("shipping line = %+v", req.Products[2])
	}
	if req.Metadata[metaShippingFee] != "2000" {
		t.Errorf("metadata shipping fee = %q", req.Metadata[metaShippingFee])
	}
	if req.Metadata[metaOrderRef] != res.OrderRef {
		t.Errorf("metadata order ref = %q", req.Metadata[metaOrderRef])
	}

	p := pending.m[res.OrderRef]
	if p == nil {
		t.Fatal("pending order not cached")
	}
	// subtotal 11000 - discount 1000 + shipping 2000
	if p.AmountBaisa != 12000 {
		t.Errorf("amount = %d, want 12000", p.AmountBaisa)
	}
	if p.ShippingBaisa != 2000 || p.RemainingBaisa != 0 || p.DepositMode {
		t.Errorf("pending = %+v", p)
	}
	if len(p.Lines) != 2 || p.Lines[0].PriceBaisa != 3000 {
		t.Errorf("lines = %+v", p.Lines)
	}
}

func TestCreateSessionDepositMode(t *testing.T) {
	gw := &fakeGateway{createID: "sess_d"}
	pending := newFakePending()
	svc := newService(gw, pending)

	res, err := svc.CreateSession(context.Background(), SessionInput{
		Products: []ProductInput{
			{ProductID: "p1", Name: "abaya", Price: 20, Quantity: 1, Category: "abaya"},
		},
		Country:     pricing.DestinationGulf,
		GulfCountry: pricing.GulfUAE,
		DepositMode: true,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	req := gw.creates[0]
	if len(req.Products) != 1 {
		t.Fatalf("line items = %d, want single deposit line", len(req.Products))
	}
	if req.Products[0].UnitAmount != pricing.DepositBaisa || req.Products[0].Quantity != 1 {
		t.Errorf("deposit line = %+v", req.Products[0])
	}

	p := pending.m[res.OrderRef]
	if p.AmountBaisa != pricing.DepositBaisa {
		t.Errorf("amount = %d, want %d", p.AmountBaisa, pricing.DepositBaisa)
	}
	// 20000 + 4000 shipping - 10000 deposit
	if p.RemainingBaisa != 14000 {
		t.Errorf("remaining = %d, want 14000", p.RemainingBaisa)
	}
	if !p.DepositMode {
		t.Error("deposit mode not recorded")
	}
}

func TestCreateSessionGatewayFailureRollsBackCache(t *testing.T) {
	gw := &fakeGateway{createErr: errors.New("gateway 500")}
	pending := newFakePending()
	svc := newService(gw, pending)

	_, err := svc.CreateSession(context.Background(), SessionInput{
		Products: []ProductInput{{ProductID: "p1", Name: "oud", Price: 5, Quantity: 1}},
	})
	if err == nil {
		t.Fatal("want error on gateway failure")
	}
	if len(pending.m) != 0 {
		t.Errorf("cache entry left behind: %+v", pending.m)
	}
}

func TestCreateSessionCheapUnitFlooredForGateway(t *testing.T) {
	gw := &fakeGateway{createID: "sess_c"}
	svc := newService(gw, newFakePending())

	_, err := svc.CreateSession(context.Background(), SessionInput{
		Products: []ProductInput{{ProductID: "p1", Name: "sample", Price: 0.05, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if got := gw.creates[0].Products[0].UnitAmount; got != pricing.MinLineBaisa {
		t.Errorf("unit = %d, want floor %d", got, pricing.MinLineBaisa)
	}
}
