// Package prepared persists model.PreparedData as a directory of flat files.
package prepared

// File names of the on-disk layout, one directory per prepared dataset.
const (
	NameFile    = "name.txt"
	CoordsFile  = "coords.json"
	ConcFile    = "timecourse_conc.csv"
	BiomassFile = "timecourse_biomass.csv"
	TimesFile   = "times.csv"
)

// Files lists every file of the layout in write order.
var Files = []string{ConcFile, BiomassFile, TimesFile, CoordsFile, NameFile}

var (
	measurementColumns = []string{"reactor", "strain", "species", "time_ix", "y"}
	timeColumns        = []string{"time", "time_ix"}
)
