package pricing

import "testing"

func TestShippingNonGulfIsFlat(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 10, 100} {
		if got := Shipping("oman", "", n); got != BaseShippingBaisa {
			t.Errorf("Shipping(oman, n=%d) = %d, want %d", n, got, BaseShippingBaisa)
		}
	}
}

func TestGulfShippingBase(t *testing.T) {
	for n := 0; n <= 3; n++ {
		if got := GulfShipping("saudi", n); got != 5000 {
			t.Errorf("GulfShipping(saudi, %d) = %d, want 5000", n, got)
		}
		if got := GulfShipping(GulfUAE, n); got != 4000 {
			t.Errorf("GulfShipping(uae, %d) = %d, want 4000", n, got)
		}
	}
}

func TestGulfShippingBlocks(t *testing.T) {
	cases := []struct {
		sub   string
		items int
		want  int64
	}{
		{GulfUAE, 4, 8000},
		{GulfUAE, 6, 8000},
		{GulfUAE, 7, 12000},
		{GulfUAE, 9, 12000},
		{GulfUAE, 10, 16000},
		{"kuwait", 4, 9000},
		{"kuwait", 7, 13000},
	}
	for _, c := range cases {
		if got := GulfShipping(c.sub, c.items); got != c.want {
			t.Errorf("GulfShipping(%s, %d) = %d, want %d", c.sub, c.items, got, c.want)
		}
	}
}

func TestPairDiscount(t *testing.T) {
	cases := []struct {
		category string
		qty      int
		want     int64
	}{
		{CategoryShaylaFrench, 5, 2000},
		{CategoryShaylaFrench, 1, 0},
		{CategoryShaylaPlain, 2, 1000},
		{CategoryShaylaPlain, 4, 2000},
		{CategoryHennaPowder, 6, 0},
		{"oud", 10, 0},
		{CategoryShaylaFrench, 0, 0},
		{CategoryShaylaFrench, -2, 0},
	}
	for _, c := range cases {
		if got := PairDiscount(c.category, c.qty); got != c.want {
			t.Errorf("PairDiscount(%s, %d) = %d, want %d", c.category, c.qty, got, c.want)
		}
	}
}

func TestToBaisa(t *testing.T) {
	cases := []struct {
		omr  float64
		want int64
	}{
		{2.5, 2500},
		{0.1, 100},
		{0.05, 100},
		{0, 100},
		{-1, 100},
		{10, 10000},
		{1.2345, 1235},
	}
	for _, c := range cases {
		if got := ToBaisa(c.omr); got != c.want {
			t.Errorf("ToBaisa(%v) = %d, want %d", c.omr, got, c.want)
		}
	}
}

func TestRialRoundTrip(t *testing.T) {
	if got := Rial(12345); got != 12.345 {
		t.Errorf("Rial(12345) = %v, want 12.345", got)
	}
	if got := Baisa(Rial(987)); got != 987 {
		t.Errorf("Baisa(Rial(987)) = %d, want 987", got)
	}
}
