package businesses

import (
	"context"
	"sort"

	"github.com/doug-martin/goqu/v9"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// NearbyBusiness is a business with its distance from the search origin.
type NearbyBusiness struct {
	Business
	DistanceMeters float64 `json:"distance_meters"`
}

// Nearby returns businesses within radiusMeters of (lat, lng), nearest
// first. Rows without coordinates are skipped. limit <= 0 means no limit.
func (r *Repository) Nearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) []NearbyBusiness {
	ctx = r.logg.WithFields(ctx, map[string]any{"lat": lat, "lng": lng, "radius_m": radiusMeters})
	out, err := r.FindNearby(ctx, lat, lng, radiusMeters, limit)
	if err != nil {
		r.degrade(ctx, "nearby", err)
		return []NearbyBusiness{}
	}
	return out
}

// FindNearby is Nearby with the store error surfaced.
func (r *Repository) FindNearby(ctx context.Context, lat, lng, radiusMeters float64, limit int) ([]NearbyBusiness, error) {
	if radiusMeters <= 0 {
		return []NearbyBusiness{}, nil
	}
	origin := orb.Point{lng, lat}
	bound := geo.NewBoundAroundPoint(origin, radiusMeters)

	// the bounding box only narrows the scan; distance is checked below
	ds := goqu.From(table).Select(columns...).Where(
		goqu.C("lat").IsNotNull(),
		goqu.C("lng").IsNotNull(),
		goqu.C("lat").Between(goqu.Range(bound.Min.Lat(), bound.Max.Lat())),
		lngRange(bound),
	)

	candidates, err := r.list(ctx, ds)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyBusiness, 0, len(candidates))
	for _, b := range candidates {
		if !b.HasLocation() {
			continue
		}
		d := geo.DistanceHaversine(origin, orb.Point{*b.Lng, *b.Lat})
		if d <= radiusMeters {
			out = append(out, NearbyBusiness{Business: b, DistanceMeters: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// lngRange matches the bound's longitudes, split in two when the box
// crosses the antimeridian.
func lngRange(bound orb.Bound) goqu.Expression {
	minLon, maxLon := bound.Min.Lon(), bound.Max.Lon()
	switch {
	case minLon < -180:
		minLon += 360
	case maxLon > 180:
		maxLon -= 360
	}
	if minLon > maxLon {
		return goqu.Or(goqu.C("lng").Gte(minLon), goqu.C("lng").Lte(maxLon))
	}
	return goqu.C("lng").Between(goqu.Range(minLon, maxLon))
}
