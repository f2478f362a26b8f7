package marketdata

import (
	"fmt"

	"github.com/wonny/chooser/internal/contracts"
)

// ValidateBar checks OHLC bounds and that every price is positive
func ValidateBar(b contracts.Bar) error {
	if b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
		return fmt.Errorf("open or close outside high/low bounds")
	}
	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return fmt.Errorf("prices must be positive")
	}
	return nil
}

// ValidateMarket checks a whole history loaded from any source.
// ⭐ SSOT: S0 검증 규칙은 여기서만
func ValidateMarket(m *contracts.Market) error {
	if m.Name == "" {
		return contracts.NewInputError(m.Source, 0, "market has no name")
	}
	if len(m.Name) > contracts.MaxMarketNameLength {
		return contracts.NewInputError(m.Source, 0, "market name %q is longer than %d characters",
			m.Name, contracts.MaxMarketNameLength)
	}
	if len(m.Bars) == 0 {
		return contracts.NewInputError(m.Source, 0, "market %s has no records", m.Name)
	}

	for i, b := range m.Bars {
		if i > 0 && !b.Date.After(m.Bars[i-1].Date) {
			return contracts.NewInputError(m.Source, i+1, "date failed to increase")
		}
		if err := ValidateBar(b); err != nil {
			return contracts.NewInputError(m.Source, i+1, "%s", err.Error())
		}
	}

	return nil
}

// ValidateMarkets validates each market and rejects duplicate names
func ValidateMarkets(markets []*contracts.Market) error {
	if len(markets) == 0 {
		return contracts.NewInputError("", 0, "no markets")
	}

	seen := make(map[string]string, len(markets))
	for _, m := range markets {
		if err := ValidateMarket(m); err != nil {
			return err
		}
		if prev, ok := seen[m.Name]; ok {
			return contracts.NewInputError(m.Source, 0, "market name %s already used by %s", m.Name, prev)
		}
		seen[m.Name] = m.Source
	}

	return nil
}
