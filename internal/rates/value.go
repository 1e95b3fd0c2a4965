package rates

import "github.com/lox/idleplanner/internal/registry"

// ValueModel reduces a flow bundle to a scalar per-tick value used only
// for ranking candidate activities. It never enters the search cost
// function, which is measured in ticks.
type ValueModel interface {
	Value(r Rates) float64
}

// VendorSell values produced items at their vendor price and treats
// consumed items as opportunity cost at the same price. This is the
// default model.
type VendorSell struct {
	reg *registry.Registry
}

// NewVendorSell builds the default value model.
func NewVendorSell(reg *registry.Registry) VendorSell {
	return VendorSell{reg: reg}
}

// Value implements ValueModel.
func (v VendorSell) Value(r Rates) float64 {
	total := r.CurrencyPerTick
	for item, perTick := range r.ItemsProduced {
		total += perTick * float64(v.reg.SellValue(item))
	}
	for item, perTick := range r.ItemsConsumed {
		total -= perTick * float64(v.reg.SellValue(item))
	}
	return total
}
