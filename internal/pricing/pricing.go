package pricing

import "math"

// All charge amounts are handled as int64 baisa (1 rial = 1000 baisa)
// so that totals sent to the gateway never drift.
const (
	BaisaPerRial = 1000

	// Gateway rejects line items below 100 baisa.
	MinLineBaisa = 100

	// Flat shipping outside the Gulf.
	BaseShippingBaisa = 2000

	// Gulf shipping: base per destination, +1 block fee per started
	// group of 3 items past the third.
	GulfBaseBaisa    = 5000
	GulfLowBaseBaisa = 4000
	GulfBlockBaisa   = 4000
	GulfBlockSize    = 3
	GulfFreeItems    = 3

	// 1 rial off per pair of discount-eligible items.
	PairDiscountBaisa = 1000

	// Fixed down payment when the customer checks out in deposit mode.
	DepositBaisa = 10000
)

const (
	DestinationGulf = "gulf"

	// The one Gulf destination with the reduced base fee.
	GulfUAE = "uae"
)

const (
	CategoryShaylaFrench = "shayla-french"
	CategoryShaylaPlain  = "shayla-plain"
	CategoryHennaPowder  = "henna-powder"
)

var pairDiscountCategories = map[string]bool{
	CategoryShaylaFrench: true,
	CategoryShaylaPlain:  true,
}

// PairDiscount returns the total discount in baisa for a product line:
// 1 rial per complete pair, shayla categories only.
func PairDiscount(category string, quantity int) int64 {
	if !pairDiscountCategories[category] {
		return 0
	}
	if quantity < 0 {
		quantity = 0
	}
	return int64(quantity/2) * PairDiscountBaisa
}

// GulfShipping computes the Gulf fee in baisa. The first 3 items ride
// on the base fee alone; the 4th item starts the first surcharge block.
func GulfShipping(subCountry string, totalItems int) int64 {
	base := int64(GulfBaseBaisa)
	if subCountry == GulfUAE {
		base = GulfLowBaseBaisa
	}
	if totalItems < 0 {
		totalItems = 0
	}
	if totalItems <= GulfFreeItems {
		return base
	}
	extra := totalItems - GulfFreeItems
	blocks := (extra + GulfBlockSize - 1) / GulfBlockSize
	return base + int64(blocks)*GulfBlockBaisa
}

// Shipping resolves the fee for any destination.
func Shipping(country, subCountry string, totalItems int) int64 {
	if country == DestinationGulf {
		return GulfShipping(subCountry, totalItems)
	}
	return BaseShippingBaisa
}

// ToBaisa converts a rial amount to the gateway's integer minor units,
// floored at MinLineBaisa.
func ToBaisa(omr float64) int64 {
	b := Baisa(omr)
	if b < MinLineBaisa {
		return MinLineBaisa
	}
	return b
}

// Baisa converts a rial amount to baisa without the gateway floor.
func Baisa(omr float64) int64 {
	return int64(math.Round(omr * BaisaPerRial))
}

// Rial converts baisa back to a decimal rial amount.
func Rial(baisa int64) float64 {
	return float64(baisa) / BaisaPerRial
}
