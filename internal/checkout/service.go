package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/alharthy/oudshop-backend/internal/orders"
	"github.com/alharthy/oudshop-backend/internal/pricing"
	"github.com/alharthy/oudshop-backend/internal/thawani"
)

// Gateway is the slice of the payment provider the checkout flow uses.
type Gateway interface {
	CreateSession(ctx context.Context, req thawani.SessionRequest) (string, error)
	ListSessions(ctx context.Context, limit, skip int) ([]thawani.SessionSummary, error)
	GetSession(ctx context.Context, sessionID string) (*thawani.Session, error)
	PaymentLink(sessionID string) string
}

type ProductInput struct {
	ProductID    string            `json:"product_id"`
	Name         string            `json:"name"`
	Price        float64           `json:"price"` // rial
	Quantity     int               `json:"quantity"`
	Category     string            `json:"category"`
	Image        string            `json:"image"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Gift         *orders.GiftNote  `json:"gift,omitempty"`
}

type SessionInput struct {
	Products      []ProductInput   `json:"products"`
	Email         string           `json:"email"`
	CustomerName  string           `json:"customer_name"`
	CustomerPhone string           `json:"customer_phone"`
	Country       string           `json:"country"`
	GulfCountry   string           `json:"gulf_country"`
	Wilayat       string           `json:"wilayat"`
	Description   string           `json:"description"`
	DepositMode   bool             `json:"deposit_mode"`
	Gift          *orders.GiftNote `json:"gift,omitempty"`
}

type SessionResult struct {
	SessionID   string `json:"id"`
	PaymentLink string `json:"payment_link"`
	OrderRef    string `json:"order_ref"`
}

// Service assembles checkout sessions: totals, the pending snapshot,
// and the gateway call.
type Service struct {
	Gateway     Gateway
	Pending     PendingStore
	SuccessURL  string
	CancelURL   string
	ServiceName string
}

func (s *Service) CreateSession(ctx context.Context, in SessionInput) (*SessionResult, error) {
	if len(in.Products) == 0 {
		return nil, ErrNoProducts
	}

	var (
		totalItems    int
		subtotal      int64
		totalDiscount int64
	)
	lines := make([]orders.Line, 0, len(in.Products))
	for _, p := range in.Products {
		totalItems += p.Quantity
		unit := pricing.Baisa(p.Price)
		subtotal += unit * int64(p.Quantity)
		totalDiscount += pricing.PairDiscount(p.Category, p.Quantity)
		lines = append(lines, orders.Line{
			ProductID:    p.ProductID,
			Quantity:     p.Quantity,
			Name:         p.Name,
			PriceBaisa:   unit,
			Image:        p.Image,
			Category:     p.Category,
			Measurements: p.Measurements,
			Gift:         p.Gift.Normalize(),
		})
	}

	shipping := pricing.Shipping(in.Country, in.GulfCountry, totalItems)
	afterDiscount := subtotal - totalDiscount
	if afterDiscount < 0 {
		afterDiscount = 0
	}
	originalTotal := afterDiscount + shipping

	var (
		items          []thawani.LineItem
		amountBaisa    int64
		remainingBaisa int64
	)
	if in.DepositMode {
		items = []thawani.LineItem{{Name: "Down payment", Quantity: 1, UnitAmount: pricing.DepositBaisa}}
		amountBaisa = pricing.DepositBaisa
		remainingBaisa = originalTotal - pricing.DepositBaisa
		if remainingBaisa < 0 {
			remainingBaisa = 0
		}
	} else {
		for _, p := range in.Products {
			qty := p.Quantity
			if qty < 1 {
				qty = 1
			}
			unit := pricing.Baisa(p.Price) - pricing.PairDiscount(p.Category, p.Quantity)/int64(qty)
			if unit < pricing.MinLineBaisa {
				unit = pricing.MinLineBaisa
			}
			items = append(items, thawani.LineItem{Name: p.Name, Quantity: qty, UnitAmount: unit})
		}
		items = append(items, thawani.LineItem{Name: "Shipping fee", Quantity: 1, UnitAmount: shipping})
		amountBaisa = originalTotal
	}

	orderRef := uuid.NewString()
	pending := &orders.PendingOrder{
		OrderRef:       orderRef,
		Lines:          lines,
		AmountBaisa:    amountBaisa,
		ShippingBaisa:  shipping,
		CustomerName:   in.CustomerName,
		CustomerPhone:  in.CustomerPhone,
		Country:        in.Country,
		GulfCountry:    in.GulfCountry,
		Wilayat:        in.Wilayat,
		Description:    in.Description,
		Email:          in.Email,
		DepositMode:    in.DepositMode,
		RemainingBaisa: remainingBaisa,
		Gift:           in.Gift.Normalize(),
	}
	if err := s.Pending.Set(ctx, pending); err != nil {
		return nil, fmt.Errorf("cache pending order: %w", err)
	}

	req := thawani.SessionRequest{
		ClientReferenceID: orderRef,
		Products:          items,
		SuccessURL:        s.SuccessURL + "?client_reference_id=" + orderRef,
		CancelURL:         s.CancelURL,
		Metadata: map[string]string{
			metaEmail:         in.Email,
			metaCustomerName:  in.CustomerName,
			metaCustomerPhone: in.CustomerPhone,
			metaCountry:       in.Country,
			metaGulfCountry:   in.GulfCountry,
			metaWilayat:       in.Wilayat,
			metaDescription:   in.Description,
			metaShippingFee:   strconv.FormatInt(shipping, 10),
			metaOrderRef:      orderRef,
			metaSource:        s.ServiceName,
		},
	}
	sessionID, err := s.Gateway.CreateSession(ctx, req)
	if err != nil {
		// never leave an orphaned pending entry with no session
		_ = s.Pending.Delete(ctx, orderRef)
		return nil, fmt.Errorf("create gateway session: %w", err)
	}

	return &SessionResult{
		SessionID:   sessionID,
		PaymentLink: s.Gateway.PaymentLink(sessionID),
		OrderRef:    orderRef,
	}, nil
}
