package price

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// None is a price service that knows no prices. Every ticker falls back to ledger or manual figures.
type None struct{}

func (None) CurrentPrice(context.Context, string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}

func (None) HistoricalPrices(context.Context, string, time.Time, time.Time) (domain.PriceSeries, error) {
	return domain.PriceSeries{}, nil
}
