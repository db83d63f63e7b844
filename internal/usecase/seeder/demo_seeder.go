package seeder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/investfolio-backend/internal/domain"
	"github.com/simaogato/investfolio-backend/internal/logger"
)

// demoNamespace scopes the deterministic ids of demo holdings
var demoNamespace = uuid.MustParse("3f1e0c5a-8a7d-4f61-9b0e-5d2c7a4e9b10")

// DemoHolding defines a holding to be seeded for the demo owner
type DemoHolding struct {
	Name       string
	Ticker     string
	AssetClass string
	Quantity   string
	Value      string
	AnnualRate string
	AgeDays    int // register date is today minus AgeDays
	Estimated  string
}

// DemoHoldings covers each valuation path: market price, fixed-income projection and manual value
var DemoHoldings = []DemoHolding{
	{Name: "Petrobras PN", Ticker: "PETR4", AssetClass: "stock", Quantity: "100", AgeDays: 90, Estimated: "3650"},
	{Name: "Vale ON", Ticker: "VALE3", AssetClass: "stock", Quantity: "50", AgeDays: 60, Estimated: "3100"},
	{Name: "CDB Banco XP 12%", AssetClass: "cdb", Quantity: "1", Value: "10000", AnnualRate: "12", AgeDays: 365},
	{Name: "Apartment", AssetClass: "real estate", Value: "450000", AgeDays: 730},
}

// DemoSeeder seeds demo holdings for one owner
type DemoSeeder struct {
	repo domain.HoldingRepository
	now  func() time.Time
}

// NewDemoSeeder creates a new DemoSeeder instance
func NewDemoSeeder(repo domain.HoldingRepository) *DemoSeeder {
	return &DemoSeeder{
		repo: repo,
		now:  time.Now,
	}
}

// DemoHoldingID returns the id under which holding name is seeded for ownerID
func DemoHoldingID(ownerID uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(ownerID.String()+"/"+name))
}

// Seed ensures every demo holding exists for ownerID.
// Holdings that already exist are left untouched, so Seed can run on every start.
func (s *DemoSeeder) Seed(ctx context.Context, ownerID uuid.UUID) error {
	today := domain.Day(s.now())
	created := 0

	for _, demo := range DemoHoldings {
		id := DemoHoldingID(ownerID, demo.Name)

		_, err := s.repo.FindOwned(ctx, id, ownerID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to look up demo holding %q: %w", demo.Name, err)
		}

		holding, err := demo.build(id, ownerID, today)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, holding); err != nil {
			return fmt.Errorf("failed to create demo holding %q: %w", demo.Name, err)
		}
		created++
	}

	logger.L.Info("demo holdings seeded", "owner_id", ownerID.String(), "created", created)
	return nil
}

func (d DemoHolding) build(id, ownerID uuid.UUID, today time.Time) (*domain.Holding, error) {
	registerDate := today.AddDate(0, 0, -d.AgeDays)
	h := &domain.Holding{
		ID:           id,
		OwnerID:      ownerID,
		Name:         d.Name,
		AssetClass:   d.AssetClass,
		RegisterDate: &registerDate,
	}
	if d.Ticker != "" {
		ticker := d.Ticker
		h.Ticker = &ticker
	}

	var err error
	if h.Quantity, err = optionalDecimal(d.Quantity); err != nil {
		return nil, fmt.Errorf("invalid quantity for demo holding %q: %w", d.Name, err)
	}
	if h.Value, err = optionalDecimal(d.Value); err != nil {
		return nil, fmt.Errorf("invalid value for demo holding %q: %w", d.Name, err)
	}
	if h.AnnualRate, err = optionalDecimal(d.AnnualRate); err != nil {
		return nil, fmt.Errorf("invalid annual rate for demo holding %q: %w", d.Name, err)
	}
	if h.EstimatedValueOnCreateDate, err = optionalDecimal(d.Estimated); err != nil {
		return nil, fmt.Errorf("invalid estimate for demo holding %q: %w", d.Name, err)
	}
	return h, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
