package model

import (
	"strconv"
	"strings"
)

// Validate checks every invariant a PreparedData must hold and returns the
// first violation as a *SchemaViolationError.
func (d PreparedData) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return Violation(TableName, "non_empty", "prepared data name is empty")
	}
	if err := validateCoords(d.Coords); err != nil {
		return err
	}
	timeIx, err := validateTimes(d.Times)
	if err != nil {
		return err
	}
	reactorStrain := make(map[int]int)
	if err := validateMeasurements(TableConc, d.ConcMeasurements, d.Coords, timeIx, reactorStrain, true); err != nil {
		return err
	}
	return validateMeasurements(TableBiomass, d.BiomassMeasurements, d.Coords, timeIx, reactorStrain, false)
}

func validateCoords(c CoordDict) error {
	for _, set := range []string{CoordReactor, CoordStrain, CoordSpecies, CoordSubstrate, CoordProduct, CoordTime} {
		if _, ok := c[set]; !ok {
			return Violation(TableCoords, "required_set", "missing coordinate set %q", set)
		}
	}
	for set, labels := range c {
		seen := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			if _, dup := seen[l]; dup {
				return Violation(TableCoords, "unique_labels", "label %q repeated in %q", l, set)
			}
			seen[l] = struct{}{}
		}
	}
	// substrate and product must partition species
	for _, s := range c[CoordSpecies] {
		sub, prod := c.Contains(CoordSubstrate, s), c.Contains(CoordProduct, s)
		if sub == prod {
			return Violation(TableCoords, "substrate_product_partition", "species %q must be exactly one of substrate or product", s)
		}
	}
	for _, set := range []string{CoordSubstrate, CoordProduct} {
		for _, s := range c[set] {
			if !c.Contains(CoordSpecies, s) {
				return Violation(TableCoords, "substrate_product_partition", "%s %q is not a species", set, s)
			}
		}
	}
	return nil
}

// validateTimes returns the set of known time indices.
func validateTimes(times []Time) (map[int]struct{}, error) {
	ix := make(map[int]struct{}, len(times))
	for i, t := range times {
		if t.TimeIx != i+1 {
			return nil, Violation(TableTimes, "dense_time_ix", "row %d has time_ix %d, want %d", i, t.TimeIx, i+1)
		}
		if i > 0 && !(t.Time > times[i-1].Time) {
			return nil, Violation(TableTimes, "sorted_unique_time", "row %d time %v does not follow %v", i, t.Time, times[i-1].Time)
		}
		ix[t.TimeIx] = struct{}{}
	}
	return ix, nil
}

func validateMeasurements(table string, rows []Measurement, c CoordDict, timeIx map[int]struct{}, reactorStrain map[int]int, checkSpecies bool) error {
	for i, m := range rows {
		switch {
		case m.Reactor < 1:
			return Violation(table, "reactor_ge_1", "row %d reactor %d", i, m.Reactor)
		case m.Strain < 1:
			return Violation(table, "strain_ge_1", "row %d strain %d", i, m.Strain)
		case m.TimeIx < 1:
			return Violation(table, "time_ix_ge_1", "row %d time_ix %d", i, m.TimeIx)
		}
		if _, ok := timeIx[m.TimeIx]; !ok {
			return Violation(table, "time_ix_in_times", "row %d time_ix %d not in times", i, m.TimeIx)
		}
		if !c.Contains(CoordReactor, strconv.Itoa(m.Reactor)) {
			return Violation(table, "reactor_in_coords", "row %d reactor %d", i, m.Reactor)
		}
		if !c.Contains(CoordStrain, strconv.Itoa(m.Strain)) {
			return Violation(table, "strain_in_coords", "row %d strain %d", i, m.Strain)
		}
		if s, ok := reactorStrain[m.Reactor]; ok && s != m.Strain {
			return Violation(table, "reactor_strain_consistent", "reactor %d maps to strains %d and %d", m.Reactor, s, m.Strain)
		}
		reactorStrain[m.Reactor] = m.Strain
		if checkSpecies && !c.Contains(CoordSpecies, m.Species) {
			return Violation(table, "species_in_coords", "row %d species %q", i, m.Species)
		}
	}
	return nil
}
