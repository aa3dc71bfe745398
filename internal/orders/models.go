package orders

import (
	"strings"
	"time"
)

// GiftNote is an optional per-line or per-order note. A non-nil note
// always has at least one non-empty field; use Normalize to enforce it.
type GiftNote struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// Normalize returns nil when every field is blank, otherwise the note
// itself. Stores and caches only ever see normalized values.
func (g *GiftNote) Normalize() *GiftNote {
	if g == nil {
		return nil
	}
	if strings.TrimSpace(g.From) == "" &&
		strings.TrimSpace(g.To) == "" &&
		strings.TrimSpace(g.Phone) == "" &&
		strings.TrimSpace(g.Note) == "" {
		return nil
	}
	return g
}

// Line is a snapshot of a product at purchase time, not a live
// reference to the products table.
type Line struct {
	ProductID    string            `json:"product_id"`
	Quantity     int               `json:"quantity"`
	Name         string            `json:"name"`
	PriceBaisa   int64             `json:"price_baisa"`
	Image        string            `json:"image"`
	Category     string            `json:"category"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Gift         *GiftNote         `json:"gift,omitempty"`
}

type Order struct {
	ID       string `json:"id"`
	OrderRef string `json:"order_ref"`
	Lines    []Line `json:"lines"`

	// AmountBaisa is what the gateway actually charged.
	AmountBaisa int64 `json:"amount_baisa"`
	// ShippingBaisa is nil until the fee is known; the reconciler only
	// fills it when unset.
	ShippingBaisa *int64 `json:"shipping_baisa"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Country       string `json:"country"`
	GulfCountry   string `json:"gulf_country"`
	Wilayat       string `json:"wilayat"`
	Description   string `json:"description"`
	Email         string `json:"email"`

	Status         Status `json:"status"`
	DepositMode    bool   `json:"deposit_mode"`
	RemainingBaisa int64  `json:"remaining_baisa"`

	PaymentSessionID string     `json:"payment_session_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`

	Gift *GiftNote `json:"gift,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settled reports whether this order has been fully reconciled against
// the given gateway session. Once true, stock has been deducted for it
// exactly once.
func (o *Order) Settled(sessionID string) bool {
	return o.PaymentSessionID == sessionID &&
		o.Status == StatusCompleted &&
		o.PaidAt != nil
}

// PendingOrder is the ephemeral checkout snapshot held between session
// creation and payment confirmation, keyed by OrderRef.
type PendingOrder struct {
	OrderRef string `json:"order_ref"`
	Lines    []Line `json:"lines"`

	AmountBaisa   int64 `json:"amount_baisa"`
	ShippingBaisa int64 `json:"shipping_baisa"`

	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Country       string `json:"country"`
	GulfCountry   string `json:"gulf_country"`
	Wilayat       string `json:"wilayat"`
	Description   string `json:"description"`
	Email         string `json:"email"`

	DepositMode    bool  `json:"deposit_mode"`
	RemainingBaisa int64 `json:"remaining_baisa"`

	Gift *GiftNote `json:"gift,omitempty"`
}

// TotalItems sums line quantities.
func (p *PendingOrder) TotalItems() int {
	n := 0
	for _, l := range p.Lines {
		n += l.Quantity
	}
	return n
}
