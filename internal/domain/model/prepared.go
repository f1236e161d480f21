// Package model contains the prepared-data types passed between the
// preparation and model-input stages.
package model

// Table names used in errors and file layouts.
const (
	TableConc    = "conc"
	TableBiomass = "biomass"
	TableTimes   = "times"
	TableCoords  = "coords"
	TableName    = "name"
)

// Coordinate set names.
const (
	CoordReactor   = "reactor"
	CoordStrain    = "strain"
	CoordSpecies   = "species"
	CoordSubstrate = "substrate"
	CoordProduct   = "product"
	CoordTime      = "time"
)

// BiomassSpecies is the pseudo-species label used in the biomass table.
const BiomassSpecies = "biomass"

// Measurement is one long-format observation.
type Measurement struct {
	Reactor int     // >= 1
	Strain  int     // >= 1
	Species string  // species label, "biomass" in the biomass table
	TimeIx  int     // 1-based index into Times
	Y       float64 // NaN when the reading is missing
}

// Time maps a raw time value to its dense 1-based rank.
type Time struct {
	Time   float64
	TimeIx int
}

// PreparedData is what a recipe produces. Treat it as immutable once returned.
type PreparedData struct {
	Name                string
	Coords              CoordDict
	ConcMeasurements    []Measurement
	BiomassMeasurements []Measurement
	Times               []Time
}
