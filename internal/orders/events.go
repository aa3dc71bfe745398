package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderSettled = "OrderSettled"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"` // RFC3339
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_ref
	Payload       json.RawMessage `json:"payload"`
}

// SettledLine reports the stock level after the deduction for one
// order line. StockLeft is -1 when the deduction was skipped or failed.
type SettledLine struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
	StockLeft int    `json:"stock_left"`
}

type OrderSettledPayload struct {
	OrderID          string        `json:"order_id"`
	OrderRef         string        `json:"order_ref"`
	SessionID        string        `json:"session_id"`
	AmountBaisa      int64         `json:"amount_baisa"`
	Email            string        `json:"email,omitempty"`
	AlreadyProcessed bool          `json:"already_processed"`
	Lines            []SettledLine `json:"lines,omitempty"`
}
