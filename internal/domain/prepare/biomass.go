package prepare

import "math"

// Biomass conversion constants.
const (
	// DefaultBiomassConstant combines the 1e7 cell-volume-to-biomass scale with
	// the 1000 volume unit conversion.
	DefaultBiomassConstant = 1e10
	// DefaultUnitScale converts micrometers to meters.
	DefaultUnitScale = 1e6
)

// Biomass estimates biomass from live cells per ml and cell diameter (um)
// assuming spherical cells: k * live * 4/3 * pi * (diameter/2/unitScale)^3.
func Biomass(k, unitScale, liveCellsPerML, diameter float64) float64 {
	r := diameter / 2 / unitScale
	return k * liveCellsPerML * 4 / 3 * math.Pi * r * r * r
}
