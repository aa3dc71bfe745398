package products

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Description   string    `json:"description"`
	PriceBaisa    int64     `json:"price_baisa"`
	OldPriceBaisa *int64    `json:"old_price_baisa,omitempty"`
	Images        []string  `json:"images"`
	Rating        float64   `json:"rating"`
	Author        string    `json:"author"`
	SizeML        *int      `json:"size_ml,omitempty"`
	InStock       bool      `json:"in_stock"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Filter narrows List. Nil/zero fields are ignored.
type Filter struct {
	Category string
	SizeML   *int
	MinBaisa *int64
	MaxBaisa *int64
	Page     int
	Limit    int
}
