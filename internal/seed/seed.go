package seed

import (
	"context"
	"time"

	"github.com/verifi-app/verifi-backend/internal/businesses"
	"github.com/verifi-app/verifi-backend/internal/promos"
	"github.com/verifi-app/verifi-backend/pkg/clock"
	"github.com/verifi-app/verifi-backend/pkg/enums"
	"github.com/verifi-app/verifi-backend/pkg/logger"
)

// DemoBusinessID is fixed so the demo promo always links to the demo business.
const DemoBusinessID = "d8f8f8f8-8f8f-8f8f-8f8f-8f8f8f8f8f8f"

const (
	demoPhotoURL      = "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?q=80&w=2670&auto=format&fit=crop"
	demoPromoDuration = 7 * 24 * time.Hour
)

// DemoBusiness returns the listing inserted into an empty store.
func DemoBusiness() businesses.NewBusiness {
	lat, lng := 6.8075, -58.1633
	return businesses.NewBusiness{
		ID:         DemoBusinessID,
		Name:       "German's Restaurant",
		Categories: []string{"Food"},
		Phone:      "592-225-3792",
		WhatsApp:   "5926001234",
		Address:    "8 New Market St, Georgetown",
		City:       "Georgetown",
		Lat:        &lat,
		Lng:        &lng,
		Hours:      map[string]string{"Mon-Sat": "8:00 AM - 9:00 PM"},
		PriceBand:  enums.PriceBandModerate,
		Photos:     []string{demoPhotoURL},
		Verified:   true,
	}
}

// DemoPromo returns the promo inserted into an empty promos table.
func DemoPromo(now time.Time) promos.NewPromo {
	return promos.NewPromo{
		BusinessID: DemoBusinessID,
		Title:      "25% Off All Soups",
		Desc:       "Enjoy a hearty discount on our world-famous soups.",
		StartsAt:   now,
		EndsAt:     now.Add(demoPromoDuration),
	}
}

// Seeder fills an empty store with demo data.
type Seeder struct {
	businesses *businesses.Repository
	promos     *promos.Repository
	clock      clock.Clock
	logg       *logger.Logger
}

func New(b *businesses.Repository, p *promos.Repository, clk clock.Clock, logg *logger.Logger) *Seeder {
	if clk == nil {
		clk = clock.System{}
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Seeder{businesses: b, promos: p, clock: clk, logg: logg}
}

// SeedIfEmpty inserts the demo business when no business exists, and the
// demo promo when no promo exists and the demo business is stored. Each table
// is checked on its own and the two inserts are separate statements, so a
// run interrupted between them is completed by the next run. Reviews are
// never seeded.
func (s *Seeder) SeedIfEmpty(ctx context.Context) error {
	businessCount, err := s.businesses.Count(ctx)
	if err != nil {
		s.logg.Error(ctx, "seed: count businesses failed", err)
		return err
	}
	if businessCount == 0 {
		s.logg.Info(ctx, "seeding demo business")
		if _, err := s.businesses.Create(ctx, DemoBusiness()); err != nil {
			return err
		}
	}

	demo, err := s.businesses.FindByID(ctx, DemoBusinessID)
	if err != nil {
		s.logg.Error(ctx, "seed: look up demo business failed", err)
		return err
	}
	if demo == nil {
		s.logg.Debug(ctx, "demo business absent, skipping demo promo")
		return nil
	}

	promoCount, err := s.promos.Count(ctx)
	if err != nil {
		s.logg.Error(ctx, "seed: count promos failed", err)
		return err
	}
	if promoCount == 0 {
		s.logg.Info(ctx, "seeding demo promo")
		if _, err := s.promos.Create(ctx, DemoPromo(s.clock.Now())); err != nil {
			return err
		}
	}
	return nil
}
