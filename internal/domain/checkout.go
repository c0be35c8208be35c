package domain

import "encoding/json"

const (
	DefaultShippingFee int64 = 50000
	DefaultTax         int64 = 15000
)

type CheckoutState string

const (
	CheckoutLoading CheckoutState = "loading"
	CheckoutEmpty   CheckoutState = "empty"
	CheckoutReady   CheckoutState = "ready"
)

// CheckoutRecord is the pending order handed from the configurator to the
// checkout through the store.
type CheckoutRecord struct {
	Products    []Product `json:"products"`
	ShippingFee int64     `json:"shippingFee"`
	Tax         int64     `json:"tax"`
}

func NewCheckoutRecord(products ...Product) CheckoutRecord {
	return CheckoutRecord{Products: products, ShippingFee: DefaultShippingFee, Tax: DefaultTax}
}

// ParseCheckoutRecord decodes a stored record. Zero or missing surcharges
// fall back to the defaults. ok is false when the payload is unreadable.
func ParseCheckoutRecord(raw string) (rec CheckoutRecord, ok bool) {
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return CheckoutRecord{}, false
	}
	if rec.ShippingFee == 0 {
		rec.ShippingFee = DefaultShippingFee
	}
	if rec.Tax == 0 {
		rec.Tax = DefaultTax
	}
	return rec, true
}

type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	ShippingFee int64 `json:"shipping_fee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

func ComputeTotals(products []Product, shippingFee, tax int64) Totals {
	var sub int64
	for _, p := range products {
		sub += p.Price
	}
	return Totals{Subtotal: sub, ShippingFee: shippingFee, Tax: tax, Total: sub + shippingFee + tax}
}

func (r CheckoutRecord) Totals() Totals {
	return ComputeTotals(r.Products, r.ShippingFee, r.Tax)
}
