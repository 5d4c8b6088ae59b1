package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/FraudStream/models"
)

func TestNewCatalog_Errors(t *testing.T) {
	valid := pointRegion("valid", 0, 0)

	tests := []struct {
		name    string
		regions []Region
	}{
		{name: "empty", regions: nil},
		{name: "single region", regions: []Region{valid}},
		{name: "unnamed region", regions: []Region{valid, pointRegion("", 1, 1)}},
		{name: "duplicate name", regions: []Region{valid, pointRegion("valid", 1, 1)}},
		{name: "no bands", regions: []Region{valid, {Name: "empty"}}},
		{name: "inverted band", regions: []Region{valid, {Name: "bad", Bands: []Band{{Bounds: Bounds{MinLat: 10, MaxLat: 0}, Weight: 1}}}}},
		{name: "latitude beyond pole", regions: []Region{valid, {Name: "bad", Bands: []Band{{Bounds: Bounds{MinLat: 0, MaxLat: 95}, Weight: 1}}}}},
		{name: "longitude beyond antimeridian", regions: []Region{valid, {Name: "bad", Bands: []Band{{Bounds: Bounds{MinLon: -190, MaxLon: 0}, Weight: 1}}}}},
		{name: "zero weight", regions: []Region{valid, {Name: "bad", Bands: []Band{{Bounds: Bounds{}, Weight: 0}}}}},
		{name: "NaN bound", regions: []Region{valid, {Name: "bad", Bands: []Band{{Bounds: Bounds{MinLat: math.NaN()}, Weight: 1}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.regions)
			require.Error(t, err)
			assert.True(t, models.IsConfigurationError(err), "got %T", err)
		})
	}
}

func TestCatalog_SamplesLocateBack(t *testing.T) {
	catalog, err := NewCatalog(DefaultRegions())
	require.NoError(t, err)
	rng := newTestRand(17)

	for i := 0; i < catalog.Len(); i++ {
		name := catalog.regions[i].Name
		for j := 0; j < 500; j++ {
			c := catalog.sample(rng, i)
			require.True(t, c.Valid())
			require.Equal(t, name, catalog.Locate(c), "point %+v drawn from %s", c, name)
		}
	}
}

func TestCatalog_BandWeights(t *testing.T) {
	catalog, err := NewCatalog([]Region{
		{Name: "weighted", Bands: []Band{
			{Bounds: Bounds{MinLat: 0, MaxLat: 1, MinLon: 0, MaxLon: 1}, Weight: 3},
			{Bounds: Bounds{MinLat: 10, MaxLat: 11, MinLon: 10, MaxLon: 11}, Weight: 1},
		}},
		pointRegion("other", -50, -50),
	})
	require.NoError(t, err)
	rng := newTestRand(23)

	const n = 20000
	heavy := 0
	for i := 0; i < n; i++ {
		if catalog.sample(rng, 0).Lat <= 1 {
			heavy++
		}
	}
	assert.InDelta(t, 0.75, float64(heavy)/n, 0.02)
}

func TestCatalog_LocateOpenWater(t *testing.T) {
	catalog, err := NewCatalog(DefaultRegions())
	require.NoError(t, err)

	// Middle of the South Pacific
	assert.Equal(t, OpenWater, catalog.Locate(models.Coordinate{Lat: -40, Lon: -130}))
	assert.Equal(t, "europe", catalog.Locate(models.Coordinate{Lat: 48.85, Lon: 2.35}))
}

func TestCatalog_RegionsIsCopy(t *testing.T) {
	catalog, err := NewCatalog(DefaultRegions())
	require.NoError(t, err)

	regions := catalog.Regions()
	regions[0].Name = "mutated"
	regions[0].Bands[0].Weight = 1000

	assert.NotEqual(t, "mutated", catalog.Regions()[0].Name)
	assert.NotEqual(t, 1000.0, catalog.Regions()[0].Bands[0].Weight)
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Coordinate
		want float64
	}{
		{name: "same point", a: models.Coordinate{Lat: 12, Lon: 34}, b: models.Coordinate{Lat: 12, Lon: 34}, want: 0},
		{name: "half equator", a: models.Coordinate{}, b: models.Coordinate{Lon: 180}, want: math.Pi * earthRadiusKm},
		{name: "pole to pole", a: models.Coordinate{Lat: 90}, b: models.Coordinate{Lat: -90}, want: math.Pi * earthRadiusKm},
		{name: "paris to london", a: models.Coordinate{Lat: 48.8566, Lon: 2.3522}, b: models.Coordinate{Lat: 51.5074, Lon: -0.1278}, want: 343.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceKm(tt.a, tt.b), 1.0)
		})
	}
}
