// Package modelinput flattens a PreparedData into the named arrays consumed
// by the external inference engine.
package modelinput

import (
	"encoding/json"
	"io"
	"math"

	"github.com/okian/growtho/internal/domain/model"
)

// Input is the model input dataset. JSON keys are the names the engine expects.
type Input struct {
	NSpecies            int       `json:"N_species"`
	NReactor            int       `json:"N_reactor"`
	NTimepoint          int       `json:"N_timepoint"`
	NConcMeasurement    int       `json:"N_conc_measurement"`
	NBiomassMeasurement int       `json:"N_biomass_measurement"`
	IsSubstrate         []int     `json:"is_substrate"`
	ReactorYConc        []int     `json:"reactor_yconc"`
	SpeciesYConc        []int     `json:"species_yconc"`
	TimepointYConc      []int     `json:"timepoint_yconc"`
	ReactorYBiomass     []int     `json:"reactor_ybiomass"`
	TimepointYBiomass   []int     `json:"timepoint_ybiomass"`
	TimepointTime       []float64 `json:"timepoint_time"`
	YBiomass            []float64 `json:"ybiomass"`
	YConc               []float64 `json:"yconc"`
}

// Build derives the model input from d. A concentration species missing from
// the species coordinate set is reported as a schema violation.
func Build(d model.PreparedData) (Input, error) {
	species := d.Coords[model.CoordSpecies]
	in := Input{
		NSpecies:            len(species),
		NReactor:            len(d.Coords[model.CoordReactor]),
		NTimepoint:          len(d.Coords[model.CoordTime]),
		NConcMeasurement:    len(d.ConcMeasurements),
		NBiomassMeasurement: len(d.BiomassMeasurements),
		IsSubstrate:         make([]int, len(species)),
		ReactorYConc:        make([]int, len(d.ConcMeasurements)),
		SpeciesYConc:        make([]int, len(d.ConcMeasurements)),
		TimepointYConc:      make([]int, len(d.ConcMeasurements)),
		YConc:               make([]float64, len(d.ConcMeasurements)),
		ReactorYBiomass:     make([]int, len(d.BiomassMeasurements)),
		TimepointYBiomass:   make([]int, len(d.BiomassMeasurements)),
		YBiomass:            make([]float64, len(d.BiomassMeasurements)),
		TimepointTime:       make([]float64, len(d.Times)),
	}
	for i, s := range species {
		if d.Coords.Contains(model.CoordSubstrate, s) {
			in.IsSubstrate[i] = 1
		}
	}
	speciesIx := make(map[string]int, len(species))
	for i, s := range species {
		speciesIx[s] = i + 1
	}
	for i, m := range d.ConcMeasurements {
		ix, ok := speciesIx[m.Species]
		if !ok {
			return Input{}, model.Violation(model.TableConc, "species_in_coords", "row %d species %q", i, m.Species)
		}
		in.SpeciesYConc[i] = ix
		in.ReactorYConc[i] = m.Reactor
		in.TimepointYConc[i] = m.TimeIx
		in.YConc[i] = m.Y
	}
	for i, m := range d.BiomassMeasurements {
		in.ReactorYBiomass[i] = m.Reactor
		in.TimepointYBiomass[i] = m.TimeIx
		in.YBiomass[i] = m.Y
	}
	for i, t := range d.Times {
		in.TimepointTime[i] = t.Time
	}
	return in, nil
}

// Map returns the input keyed by model-input name. Values are int, []int or []float64.
func (in Input) Map() map[string]any {
	return map[string]any{
		"N_species":             in.NSpecies,
		"N_reactor":             in.NReactor,
		"N_timepoint":           in.NTimepoint,
		"N_conc_measurement":    in.NConcMeasurement,
		"N_biomass_measurement": in.NBiomassMeasurement,
		"is_substrate":          in.IsSubstrate,
		"reactor_yconc":         in.ReactorYConc,
		"species_yconc":         in.SpeciesYConc,
		"timepoint_yconc":       in.TimepointYConc,
		"reactor_ybiomass":      in.ReactorYBiomass,
		"timepoint_ybiomass":    in.TimepointYBiomass,
		"timepoint_time":        in.TimepointTime,
		"ybiomass":              in.YBiomass,
		"yconc":                 in.YConc,
	}
}

// WriteJSON encodes in to w. encoding/json rejects NaN, so missing readings
// are written as null.
func WriteJSON(w io.Writer, in Input) error {
	out := in.Map()
	out["timepoint_time"] = nullable(in.TimepointTime)
	out["ybiomass"] = nullable(in.YBiomass)
	out["yconc"] = nullable(in.YConc)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func nullable(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		if math.IsNaN(vs[i]) || math.IsInf(vs[i], 0) {
			continue
		}
		out[i] = &vs[i]
	}
	return out
}
