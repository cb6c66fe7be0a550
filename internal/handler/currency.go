package handler

import "fmt"

// CurrencyConverter is the collaborator boundary for exchange-rate
// lookups. The income handler uses it to fill the default-currency
// amount at creation time; rate sourcing lives outside this backend.
type CurrencyConverter interface {
	Convert(from, to string, amount float64) (float64, error)
}

// FixedRateConverter converts through a static rate table keyed by
// currency code, each rate expressed against a common base. Used for
// development and tests.
type FixedRateConverter struct {
	Rates map[string]float64
}

func (c FixedRateConverter) Convert(from, to string, amount float64) (float64, error) {
	if from == to {
		return amount, nil
	}
	fromRate, ok := c.Rates[from]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", from)
	}
	toRate, ok := c.Rates[to]
	if !ok {
		return 0, fmt.Errorf("unknown currency %q", to)
	}
	return amount * fromRate / toRate, nil
}
