package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/chooser/internal/contracts"
)

func TestValidateBar(t *testing.T) {
	tests := []struct {
		name    string
		bar     contracts.Bar
		wantErr bool
	}{
		{name: "valid", bar: contracts.Bar{Open: 10, High: 11, Low: 9, Close: 10.5}},
		{name: "flat", bar: contracts.Bar{Open: 10, High: 10, Low: 10, Close: 10}},
		{name: "high below open", bar: contracts.Bar{Open: 10, High: 9.9, Low: 9, Close: 9.5}, wantErr: true},
		{name: "high below close", bar: contracts.Bar{Open: 10, High: 10.5, Low: 9, Close: 11}, wantErr: true},
		{name: "low above open", bar: contracts.Bar{Open: 10, High: 12, Low: 10.1, Close: 11}, wantErr: true},
		{name: "low above close", bar: contracts.Bar{Open: 11, High: 12, Low: 10.5, Close: 10}, wantErr: true},
		{name: "zero price", bar: contracts.Bar{Open: 0, High: 0, Low: 0, Close: 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBar(tt.bar)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMarket(t *testing.T) {
	good := &contracts.Market{Name: "GLD", Source: "db", Bars: []contracts.Bar{
		{Date: day(2020, 1, 2), Open: 1, High: 1, Low: 1, Close: 1},
		{Date: day(2020, 1, 3), Open: 1, High: 1, Low: 1, Close: 1},
	}}
	assert.NoError(t, ValidateMarket(good))

	unordered := &contracts.Market{Name: "GLD", Source: "db", Bars: []contracts.Bar{
		{Date: day(2020, 1, 3), Open: 1, High: 1, Low: 1, Close: 1},
		{Date: day(2020, 1, 2), Open: 1, High: 1, Low: 1, Close: 1},
	}}
	var inputErr *contracts.InputError
	assert.ErrorAs(t, ValidateMarket(unordered), &inputErr)
	assert.Equal(t, 2, inputErr.Line)

	long := &contracts.Market{Name: "A_VERY_LONG_MARKET", Bars: good.Bars}
	assert.True(t, contracts.IsInputError(ValidateMarket(long)))

	empty := &contracts.Market{Name: "X"}
	assert.True(t, contracts.IsInputError(ValidateMarket(empty)))
}

func TestValidateMarkets(t *testing.T) {
	bars := []contracts.Bar{{Date: day(2020, 1, 2), Open: 1, High: 1, Low: 1, Close: 1}}

	assert.True(t, contracts.IsInputError(ValidateMarkets(nil)))

	dup := []*contracts.Market{
		{Name: "A", Source: "a.txt", Bars: bars},
		{Name: "A", Source: "b.txt", Bars: bars},
	}
	assert.True(t, contracts.IsInputError(ValidateMarkets(dup)))

	ok := []*contracts.Market{
		{Name: "A", Source: "a.txt", Bars: bars},
		{Name: "B", Source: "b.txt", Bars: bars},
	}
	assert.NoError(t, ValidateMarkets(ok))
}
