package geo

import (
	"math"
	"math/rand/v2"

	"github.com/Alias1177/FraudStream/models"
)

// OpenWater names a destination that no catalog band contains
const OpenWater = "open_water"

// Bounds is a latitude/longitude box in degrees
type Bounds struct {
	MinLat float64 `mapstructure:"min_lat" json:"min_lat" yaml:"min_lat"`
	MaxLat float64 `mapstructure:"max_lat" json:"max_lat" yaml:"max_lat"`
	MinLon float64 `mapstructure:"min_lon" json:"min_lon" yaml:"min_lon"`
	MaxLon float64 `mapstructure:"max_lon" json:"max_lon" yaml:"max_lon"`
}

// Contains reports whether c lies inside the box, edges included
func (b Bounds) Contains(c models.Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lon >= b.MinLon && c.Lon <= b.MaxLon
}

func (b Bounds) sample(rng *rand.Rand) models.Coordinate {
	return models.Coordinate{
		Lat: b.MinLat + rng.Float64()*(b.MaxLat-b.MinLat),
		Lon: b.MinLon + rng.Float64()*(b.MaxLon-b.MinLon),
	}
}

// Band is a terrestrial sub-range of a region, picked proportionally to Weight
type Band struct {
	Bounds `mapstructure:",squash" yaml:",inline"`
	Weight float64 `mapstructure:"weight" json:"weight" yaml:"weight"`
}

// Region is a named continent made of disjoint land bands
type Region struct {
	Name  string `mapstructure:"name" json:"name" yaml:"name"`
	Bands []Band `mapstructure:"bands" json:"bands" yaml:"bands"`
}

// Catalog is the read-only set of regions coordinates are drawn from.
// It is never mutated after NewCatalog and may be shared between goroutines.
type Catalog struct {
	regions []Region
	// cumulative band weights per region
	cumulative [][]float64
}

// NewCatalog validates regions and builds a Catalog. Fewer than two regions
// make cross-border pairs impossible and are rejected.
func NewCatalog(regions []Region) (*Catalog, error) {
	if len(regions) < 2 {
		return nil, models.NewConfigError("regions", "need at least 2 regions, got %d", len(regions))
	}

	c := &Catalog{
		regions:    make([]Region, len(regions)),
		cumulative: make([][]float64, len(regions)),
	}
	seen := make(map[string]bool, len(regions))

	for i, r := range regions {
		if r.Name == "" {
			return nil, models.NewConfigError("regions", "region %d has no name", i)
		}
		if seen[r.Name] {
			return nil, models.NewConfigError("regions", "duplicate region %q", r.Name)
		}
		seen[r.Name] = true

		if len(r.Bands) == 0 {
			return nil, models.NewConfigError("regions."+r.Name, "no bands")
		}

		bands := append([]Band(nil), r.Bands...)
		cum := make([]float64, len(bands))
		total := 0.0
		for j, b := range bands {
			if err := validateBand(r.Name, j, b); err != nil {
				return nil, err
			}
			total += b.Weight
			cum[j] = total
		}

		c.regions[i] = Region{Name: r.Name, Bands: bands}
		c.cumulative[i] = cum
	}

	return c, nil
}

func validateBand(region string, idx int, b Band) error {
	field := "regions." + region
	for _, v := range []float64{b.MinLat, b.MaxLat, b.MinLon, b.MaxLon, b.Weight} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.NewConfigError(field, "band %d has non-finite values", idx)
		}
	}
	switch {
	case b.MinLat > b.MaxLat || b.MinLon > b.MaxLon:
		return models.NewConfigError(field, "band %d has min greater than max", idx)
	case b.MinLat < -90 || b.MaxLat > 90:
		return models.NewConfigError(field, "band %d latitude outside [-90,90]", idx)
	case b.MinLon < -180 || b.MaxLon > 180:
		return models.NewConfigError(field, "band %d longitude outside [-180,180]", idx)
	case b.Weight <= 0:
		return models.NewConfigError(field, "band %d weight must be positive", idx)
	}
	return nil
}

// Len returns the number of regions
func (c *Catalog) Len() int {
	return len(c.regions)
}

// Regions returns a copy of the catalog contents
func (c *Catalog) Regions() []Region {
	out := make([]Region, len(c.regions))
	for i, r := range c.regions {
		out[i] = Region{Name: r.Name, Bands: append([]Band(nil), r.Bands...)}
	}
	return out
}

// Locate returns the name of the first region with a band containing coord,
// or OpenWater when none does.
func (c *Catalog) Locate(coord models.Coordinate) string {
	for _, r := range c.regions {
		for _, b := range r.Bands {
			if b.Contains(coord) {
				return r.Name
			}
		}
	}
	return OpenWater
}

// sample draws a point from region i, choosing a band by weight
func (c *Catalog) sample(rng *rand.Rand, i int) models.Coordinate {
	cum := c.cumulative[i]
	target := rng.Float64() * cum[len(cum)-1]
	for j, w := range cum {
		if target < w {
			return c.regions[i].Bands[j].sample(rng)
		}
	}
	return c.regions[i].Bands[len(cum)-1].sample(rng)
}

// DefaultRegions is the continent catalog used by the dashboard. Bands stay
// over populated land so arcs on the map start and end on a continent.
func DefaultRegions() []Region {
	band := func(minLat, maxLat, minLon, maxLon, weight float64) Band {
		return Band{Bounds: Bounds{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}, Weight: weight}
	}

	return []Region{
		{Name: "north_america", Bands: []Band{
			band(30, 45, -122, -77, 3),
			band(45.5, 53, -120, -72, 2),
			band(17, 29, -106, -97, 1),
		}},
		{Name: "south_america", Bands: []Band{
			band(-23, -5.5, -60, -40, 3),
			band(-38, -24, -70, -58, 2),
			band(-5, 8, -76, -60, 1),
		}},
		{Name: "europe", Bands: []Band{
			band(43, 52, -2, 14.5, 3),
			band(47, 56, 15, 35, 2),
			band(37, 42.5, -8, -1, 1),
		}},
		{Name: "africa", Bands: []Band{
			band(5, 14, -12, 8, 2),
			band(-10, 4.5, 28, 40, 2),
			band(-33, -22, 18, 31, 1),
			band(28, 34, -8, 10, 1),
		}},
		{Name: "asia", Bands: []Band{
			band(12, 28, 73, 86, 3),
			band(22, 40, 105, 121, 3),
			band(-7, 15, 98, 104.5, 1),
			band(24, 35, 44, 57, 1),
		}},
		{Name: "australia", Bands: []Band{
			band(-38, -20, 145, 153, 2),
			band(-35, -28, 115, 122, 1),
		}},
	}
}
