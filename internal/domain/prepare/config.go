package prepare

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Raw column names written by the instrument export.
const (
	DefaultSampleIDColumn = "Sample ID"
	DefaultTimeColumn     = "time"
	DefaultLiveCellColumn = "Live (cells/ml)_adj"
	DefaultDiameterColumn = "Estimated cell diameter (um)"
	speciesColumnSuffix   = "_adj"
)

// RecipeConfig is the explicit configuration of a timecourse recipe. It is
// passed to NewTimecourseRecipe and never shared as package state.
type RecipeConfig struct {
	Name            string
	Substrates      []string
	Products        []string
	ReactorToStrain map[int]int

	SampleIDColumn string
	TimeColumn     string
	LiveCellColumn string
	DiameterColumn string

	BiomassConstant float64
	UnitScale       float64

	// TimeDecimals > 0 rounds raw times to that many decimals before
	// indexing and joining. 0 joins on the exact float value.
	TimeDecimals int
}

// HoomanConfig returns the configuration of the "hooman" recipe.
func HoomanConfig() RecipeConfig {
	return RecipeConfig{
		Name:            "hooman",
		Substrates:      []string{"gluc"},
		Products:        []string{"lac"},
		ReactorToStrain: map[int]int{1: 1, 2: 1, 3: 1, 4: 1, 5: 2, 6: 2, 7: 2, 8: 2},
		SampleIDColumn:  DefaultSampleIDColumn,
		TimeColumn:      DefaultTimeColumn,
		LiveCellColumn:  DefaultLiveCellColumn,
		DiameterColumn:  DefaultDiameterColumn,
		BiomassConstant: DefaultBiomassConstant,
		UnitScale:       DefaultUnitScale,
	}
}

// NewRecipeConfig fills unset column names and constants with defaults,
// lowercases species names and validates the result.
func NewRecipeConfig(c RecipeConfig) (RecipeConfig, error) {
	c.Substrates = lowerAll(c.Substrates)
	c.Products = lowerAll(c.Products)
	c.ReactorToStrain = maps.Clone(c.ReactorToStrain)
	if c.SampleIDColumn == "" {
		c.SampleIDColumn = DefaultSampleIDColumn
	}
	if c.TimeColumn == "" {
		c.TimeColumn = DefaultTimeColumn
	}
	if c.LiveCellColumn == "" {
		c.LiveCellColumn = DefaultLiveCellColumn
	}
	if c.DiameterColumn == "" {
		c.DiameterColumn = DefaultDiameterColumn
	}
	if c.BiomassConstant == 0 {
		c.BiomassConstant = DefaultBiomassConstant
	}
	if c.UnitScale == 0 {
		c.UnitScale = DefaultUnitScale
	}
	if err := c.Validate(); err != nil {
		return RecipeConfig{}, err
	}
	return c, nil
}

// Validate rejects configurations that cannot produce a valid PreparedData.
func (c RecipeConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecipe)
	}
	if len(c.Substrates) == 0 && len(c.Products) == 0 {
		return fmt.Errorf("%w: %s: no species configured", ErrInvalidRecipe, c.Name)
	}
	seen := make(map[string]struct{})
	for _, s := range c.Species() {
		if s == "" {
			return fmt.Errorf("%w: %s: empty species name", ErrInvalidRecipe, c.Name)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("%w: %s: species %q listed twice", ErrInvalidRecipe, c.Name, s)
		}
		seen[s] = struct{}{}
	}
	if len(c.ReactorToStrain) == 0 {
		return fmt.Errorf("%w: %s: empty reactor to strain lookup", ErrInvalidRecipe, c.Name)
	}
	for r, s := range c.ReactorToStrain {
		if r < 1 || s < 1 {
			return fmt.Errorf("%w: %s: reactor %d strain %d must be positive", ErrInvalidRecipe, c.Name, r, s)
		}
	}
	if c.BiomassConstant <= 0 || c.UnitScale <= 0 {
		return fmt.Errorf("%w: %s: biomass constants must be positive", ErrInvalidRecipe, c.Name)
	}
	if c.TimeDecimals < 0 {
		return fmt.Errorf("%w: %s: negative time decimals %d", ErrInvalidRecipe, c.Name, c.TimeDecimals)
	}
	return nil
}

// Species returns substrates followed by products.
func (c RecipeConfig) Species() []string {
	return slices.Concat(c.Substrates, c.Products)
}

// SpeciesColumn returns the raw column holding species s, e.g. "gluc" -> "Gluc_adj".
func SpeciesColumn(s string) string {
	if s == "" {
		return speciesColumnSuffix
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:]) + speciesColumnSuffix
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
