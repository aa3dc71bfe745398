package checkout

import (
	"strings"

	"github.com/alharthy/oudshop-backend/internal/orders"
)

// Session metadata keys. The bag must carry enough to rebuild an order
// when the pending cache entry is gone.
const (
	metaEmail         = "email"
	metaCustomerName  = "customer_name"
	metaCustomerPhone = "customer_phone"
	metaCountry       = "country"
	metaGulfCountry   = "gulf_country"
	metaWilayat       = "wilayat"
	metaDescription   = "description"
	metaShippingFee   = "shipping_fee" // baisa, decimal string
	metaOrderRef      = "order_ref"
	metaSource        = "source"
)

// metaFillRules is the field-level merge policy: each listed order
// field is filled from metadata only when the stored value is blank.
var metaFillRules = []struct {
	key   string
	field func(o *orders.Order) *string
}{
	{metaCustomerName, func(o *orders.Order) *string { return &o.CustomerName }},
	{metaCustomerPhone, func(o *orders.Order) *string { return &o.CustomerPhone }},
	{metaCountry, func(o *orders.Order) *string { return &o.Country }},
	{metaGulfCountry, func(o *orders.Order) *string { return &o.GulfCountry }},
	{metaWilayat, func(o *orders.Order) *string { return &o.Wilayat }},
	{metaDescription, func(o *orders.Order) *string { return &o.Description }},
	{metaEmail, func(o *orders.Order) *string { return &o.Email }},
}

func fillFromMetadata(o *orders.Order, meta map[string]string) {
	for _, r := range metaFillRules {
		f := r.field(o)
		if *f != "" {
			continue
		}
		if v := strings.TrimSpace(meta[r.key]); v != "" {
			*f = v
		}
	}
}
