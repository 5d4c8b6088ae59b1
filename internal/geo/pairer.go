// Package geo pairs source and destination coordinates for synthetic
// transactions using a continent catalog.
package geo

import (
	"math"
	"math/rand/v2"

	"github.com/Alias1177/FraudStream/models"
)

// PerturbMode selects how a long-haul fraud destination is built
type PerturbMode string

const (
	// PerturbOffset moves the destination by a large offset on both axes
	PerturbOffset PerturbMode = "offset"
	// PerturbMirror sends the destination to the opposite hemisphere
	PerturbMirror PerturbMode = "mirror"
	// PerturbMixed picks offset or mirror with equal odds
	PerturbMixed PerturbMode = "mixed"
)

// separation comparisons tolerate float rounding of src±t
const separationEpsilon = 1e-9

// Config tunes the pairing policy
type Config struct {
	// CrossBorderProbability is the chance a fraud pair uses two distinct regions
	CrossBorderProbability float64
	// PerturbProbability is the chance a fraud destination gets a long-haul override
	PerturbProbability float64
	PerturbMode        PerturbMode
	OffsetMin          float64
	OffsetMax          float64
	MirrorFactor       float64
	// MinSeparation in degrees; 0 disables the policy
	MinSeparation float64
	MaxAttempts   int
}

// DefaultConfig returns the pairing policy used by the dashboard
func DefaultConfig() Config {
	return Config{
		CrossBorderProbability: 0.8,
		PerturbProbability:     0.4,
		PerturbMode:            PerturbMixed,
		OffsetMin:              5,
		OffsetMax:              15,
		MirrorFactor:           1.0,
		MinSeparation:          0.5,
		MaxAttempts:            10,
	}
}

// Validate checks the policy for values that would break the coordinate invariants
func (c Config) Validate() error {
	for _, v := range []float64{c.CrossBorderProbability, c.PerturbProbability, c.OffsetMin, c.OffsetMax, c.MirrorFactor, c.MinSeparation} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.NewConfigError("geo", "values must be finite")
		}
	}

	switch {
	case c.CrossBorderProbability < 0 || c.CrossBorderProbability > 1:
		return models.NewConfigError("cross_border_probability", "must be within [0,1]")
	case c.PerturbProbability < 0 || c.PerturbProbability > 1:
		return models.NewConfigError("perturb_probability", "must be within [0,1]")
	case c.PerturbMode != PerturbOffset && c.PerturbMode != PerturbMirror && c.PerturbMode != PerturbMixed:
		return models.NewConfigError("perturb_mode", "unknown mode %q", c.PerturbMode)
	case c.OffsetMin < 0 || c.OffsetMin > c.OffsetMax || c.OffsetMax > 180:
		return models.NewConfigError("offset", "need 0 <= min <= max <= 180, got %v..%v", c.OffsetMin, c.OffsetMax)
	case c.MirrorFactor < 0 || c.MirrorFactor > 1:
		return models.NewConfigError("mirror_factor", "must be within [0,1]")
	case c.MinSeparation < 0 || c.MinSeparation >= 90:
		return models.NewConfigError("min_separation", "must be within [0,90)")
	case c.MaxAttempts < 1:
		return models.NewConfigError("max_attempts", "must be at least 1")
	}
	return nil
}

// Pair is a source/destination coordinate pair with its provenance
type Pair struct {
	Source            models.Coordinate
	Destination       models.Coordinate
	SourceRegion      string
	DestinationRegion string
	Perturbed         bool
	// Fallback is set when the forced minimum offset replaced the destination
	Fallback bool
}

// Pairer draws coordinate pairs. It holds no mutable state.
type Pairer struct {
	catalog *Catalog
	cfg     Config
}

// NewPairer validates cfg and binds it to catalog
func NewPairer(catalog *Catalog, cfg Config) (*Pairer, error) {
	if catalog == nil {
		return nil, models.NewConfigError("regions", "catalog is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pairer{catalog: catalog, cfg: cfg}, nil
}

// Catalog returns the region catalog in use
func (p *Pairer) Catalog() *Catalog {
	return p.catalog
}

// Pair draws a source and destination for a transaction with the given label.
// Both coordinates are always within WGS84 ranges and, when MinSeparation is
// set, differ by at least MinSeparation degrees on one axis.
func (p *Pairer) Pair(rng *rand.Rand, isFraud bool) Pair {
	n := p.catalog.Len()
	src := rng.IntN(n)

	// fraud pairs cross regions at exactly CrossBorderProbability
	var dst int
	switch {
	case !isFraud:
		dst = rng.IntN(n)
	case rng.Float64() < p.cfg.CrossBorderProbability:
		dst = rng.IntN(n - 1)
		if dst >= src {
			dst++
		}
	default:
		dst = src
	}

	out := Pair{
		Source:            p.catalog.sample(rng, src).Clamp(),
		Destination:       p.catalog.sample(rng, dst).Clamp(),
		SourceRegion:      p.catalog.regions[src].Name,
		DestinationRegion: p.catalog.regions[dst].Name,
	}

	if isFraud && rng.Float64() < p.cfg.PerturbProbability {
		out.Destination = p.perturb(rng, out.Source)
		out.DestinationRegion = p.catalog.Locate(out.Destination)
		out.Perturbed = true
	}

	p.enforceSeparation(rng, &out, dst)
	return out
}

func (p *Pairer) perturb(rng *rand.Rand, src models.Coordinate) models.Coordinate {
	mode := p.cfg.PerturbMode
	if mode == PerturbMixed {
		mode = PerturbOffset
		if rng.IntN(2) == 0 {
			mode = PerturbMirror
		}
	}

	if mode == PerturbMirror {
		lon := src.Lon + 180
		if src.Lon >= 0 {
			lon = src.Lon - 180
		}
		return models.Coordinate{Lat: -src.Lat * p.cfg.MirrorFactor, Lon: lon}.Clamp()
	}

	return models.Coordinate{
		Lat: src.Lat + sign(rng)*p.offset(rng),
		Lon: src.Lon + sign(rng)*p.offset(rng),
	}.Clamp()
}

func (p *Pairer) offset(rng *rand.Rand) float64 {
	return p.cfg.OffsetMin + rng.Float64()*(p.cfg.OffsetMax-p.cfg.OffsetMin)
}

// enforceSeparation redraws the destination from its region at most
// MaxAttempts times, then forces an exact MinSeparation offset.
func (p *Pairer) enforceSeparation(rng *rand.Rand, out *Pair, region int) {
	t := p.cfg.MinSeparation
	if t <= 0 || Separated(out.Source, out.Destination, t) {
		return
	}

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		candidate := p.catalog.sample(rng, region).Clamp()
		if Separated(out.Source, candidate, t) {
			out.Destination = candidate
			out.DestinationRegion = p.catalog.regions[region].Name
			out.Perturbed = false
			return
		}
	}

	out.Destination = models.Coordinate{
		Lat: shift(out.Source.Lat, sign(rng)*t, 90),
		Lon: shift(out.Source.Lon, sign(rng)*t, 180),
	}
	out.DestinationRegion = p.catalog.Locate(out.Destination)
	out.Perturbed = false
	out.Fallback = true
}

// Separated reports whether a and b differ by at least t degrees on either axis
func Separated(a, b models.Coordinate, t float64) bool {
	return math.Abs(a.Lat-b.Lat) >= t-separationEpsilon || math.Abs(a.Lon-b.Lon) >= t-separationEpsilon
}

// shift moves v by delta, reversing direction when that would leave [-limit, limit].
// With |delta| < limit one of the two directions always fits.
func shift(v, delta, limit float64) float64 {
	if next := v + delta; next >= -limit && next <= limit {
		return next
	}
	return v - delta
}

func sign(rng *rand.Rand) float64 {
	if rng.IntN(2) == 0 {
		return -1
	}
	return 1
}
