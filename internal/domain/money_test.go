package domain

import (
	"testing"
)

func TestRoundMoney_IsBankers(t *testing.T) {
	assertDecimal(t, "0.12", RoundMoney(dec("0.125")))
	assertDecimal(t, "0.14", RoundMoney(dec("0.135")))
	assertDecimal(t, "-2.5", RoundMoney(dec("-2.5")))
	assertDecimal(t, "10", RoundMoney(dec("10.004")))
}

func TestValuation_Rounded(t *testing.T) {
	v := newValuation(SourceMarketPrice, dec("3"), dec("100"), dec("30"))

	r := v.Rounded()

	assertDecimal(t, "33.33", r.UnitPrice)
	assertDecimal(t, "233.33", r.ProfitLossPercent)
	assertDecimal(t, "3", r.Quantity)
	assertDecimal(t, "100", v.CurrentValue)
}
