// Package prepare turns a raw wide-format timecourse table into a validated
// model.PreparedData.
package prepare

import (
	"context"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/okian/growtho/internal/domain/model"
	"github.com/okian/growtho/internal/domain/rawdata"
)

// Recipe is a named preparation function.
type Recipe interface {
	Name() string
	// Prepare is all-or-nothing: it returns either a validated PreparedData
	// or the first error met.
	Prepare(ctx context.Context, raw *rawdata.Table) (model.PreparedData, error)
}

// TimecourseRecipe reshapes one row per (reactor, time) with one column per
// species into long concentration and biomass tables.
type TimecourseRecipe struct {
	cfg RecipeConfig
}

// NewTimecourseRecipe validates cfg and returns a recipe bound to it.
func NewTimecourseRecipe(cfg RecipeConfig) (*TimecourseRecipe, error) {
	c, err := NewRecipeConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &TimecourseRecipe{cfg: c}, nil
}

// Name returns the recipe name, which is also the prepared dataset name.
func (r *TimecourseRecipe) Name() string { return r.cfg.Name }

// Config returns a copy of the recipe configuration.
func (r *TimecourseRecipe) Config() RecipeConfig {
	c := r.cfg
	c.Substrates = slices.Clone(c.Substrates)
	c.Products = slices.Clone(c.Products)
	c.ReactorToStrain = maps.Clone(c.ReactorToStrain)
	return c
}

// observation is one raw row after metadata derivation.
type observation struct {
	reactor int
	strain  int
	timeIx  int
	biomass float64
	species []float64 // aligned with cfg.Species()
}

// Prepare implements Recipe.
func (r *TimecourseRecipe) Prepare(ctx context.Context, raw *rawdata.Table) (model.PreparedData, error) {
	if err := ctx.Err(); err != nil {
		return model.PreparedData{}, err
	}
	species := r.cfg.Species()
	speciesCols := make([]string, len(species))
	for i, s := range species {
		speciesCols[i] = SpeciesColumn(s)
	}
	required := append([]string{r.cfg.SampleIDColumn, r.cfg.TimeColumn, r.cfg.LiveCellColumn, r.cfg.DiameterColumn}, speciesCols...)
	if err := raw.RequireColumns(required...); err != nil {
		return model.PreparedData{}, err
	}
	if raw.Len() == 0 {
		return model.PreparedData{}, model.Violation(rawdata.TableRaw, "non_empty", "no observation rows")
	}

	obs := make([]observation, raw.Len())
	rawTimes := make([]float64, raw.Len())
	for i := range obs {
		o, t, err := r.readRow(raw, i, speciesCols)
		if err != nil {
			return model.PreparedData{}, err
		}
		obs[i] = o
		rawTimes[i] = t
	}

	times := IndexTimes(rawTimes)
	ixByTime := make(map[float64]int, len(times))
	for _, t := range times {
		ixByTime[t.Time] = t.TimeIx
	}
	for i := range obs {
		obs[i].timeIx = ixByTime[rawTimes[i]]
	}

	d := model.PreparedData{
		Name:                r.cfg.Name,
		ConcMeasurements:    melt(obs, species),
		BiomassMeasurements: meltBiomass(obs),
		Times:               times,
	}
	d.Coords = r.coords(obs, d.ConcMeasurements, times)
	if err := d.Validate(); err != nil {
		return model.PreparedData{}, err
	}
	return d, nil
}

func (r *TimecourseRecipe) readRow(raw *rawdata.Table, i int, speciesCols []string) (observation, float64, error) {
	id, err := raw.String(i, r.cfg.SampleIDColumn)
	if err != nil {
		return observation{}, 0, err
	}
	reactor, err := ParseReactor(id)
	if err != nil {
		return observation{}, 0, err
	}
	strain, err := StrainFor(r.cfg.ReactorToStrain, reactor)
	if err != nil {
		return observation{}, 0, err
	}
	t, err := raw.Float(i, r.cfg.TimeColumn)
	if err != nil {
		return observation{}, 0, err
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return observation{}, 0, model.Violation(rawdata.TableRaw, "finite_time", "row %d has no usable time", i)
	}
	live, err := raw.Float(i, r.cfg.LiveCellColumn)
	if err != nil {
		return observation{}, 0, err
	}
	diameter, err := raw.Float(i, r.cfg.DiameterColumn)
	if err != nil {
		return observation{}, 0, err
	}
	o := observation{
		reactor: reactor,
		strain:  strain,
		biomass: Biomass(r.cfg.BiomassConstant, r.cfg.UnitScale, live, diameter),
		species: make([]float64, len(speciesCols)),
	}
	for j, col := range speciesCols {
		if o.species[j], err = raw.Float(i, col); err != nil {
			return observation{}, 0, err
		}
	}
	return o, RoundTime(t, r.cfg.TimeDecimals), nil
}

// melt emits one record per (species, row), species-major.
func melt(obs []observation, species []string) []model.Measurement {
	out := make([]model.Measurement, 0, len(obs)*len(species))
	for j, s := range species {
		for _, o := range obs {
			out = append(out, model.Measurement{Reactor: o.reactor, Strain: o.strain, Species: s, TimeIx: o.timeIx, Y: o.species[j]})
		}
	}
	return out
}

func meltBiomass(obs []observation) []model.Measurement {
	out := make([]model.Measurement, len(obs))
	for i, o := range obs {
		out[i] = model.Measurement{Reactor: o.reactor, Strain: o.strain, Species: model.BiomassSpecies, TimeIx: o.timeIx, Y: o.biomass}
	}
	return out
}

func (r *TimecourseRecipe) coords(obs []observation, conc []model.Measurement, times []model.Time) model.CoordDict {
	var reactors, strains, species []string
	seenReactor := make(map[int]struct{})
	seenStrain := make(map[int]struct{})
	for _, o := range obs {
		if _, ok := seenReactor[o.reactor]; !ok {
			seenReactor[o.reactor] = struct{}{}
			reactors = append(reactors, strconv.Itoa(o.reactor))
		}
		if _, ok := seenStrain[o.strain]; !ok {
			seenStrain[o.strain] = struct{}{}
			strains = append(strains, strconv.Itoa(o.strain))
		}
	}
	seenSpecies := make(map[string]struct{})
	for _, m := range conc {
		if _, ok := seenSpecies[m.Species]; !ok {
			seenSpecies[m.Species] = struct{}{}
			species = append(species, m.Species)
		}
	}
	timeLabels := make([]string, len(times))
	for i, t := range times {
		timeLabels[i] = FormatTimeLabel(t.Time)
	}
	return model.CoordDict{
		model.CoordReactor:   reactors,
		model.CoordStrain:    strains,
		model.CoordSubstrate: append([]string{}, r.cfg.Substrates...),
		model.CoordProduct:   append([]string{}, r.cfg.Products...),
		model.CoordSpecies:   species,
		model.CoordTime:      timeLabels,
	}
}
