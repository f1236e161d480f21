package prepare_test

import (
	"errors"
	"testing"

	"github.com/okian/growtho/internal/domain/model"
	"github.com/okian/growtho/internal/domain/prepare"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseReactor(t *testing.T) {
	Convey("Given sample identifiers", t, func() {
		Convey("When the identifier is well formed", func() {
			n, err := prepare.ParseReactor("S-3 rep1")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("When the first token has extra hyphenated parts", func() {
			n, err := prepare.ParseReactor("BR-12-b day2")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 12)
		})

		Convey("When the hyphenated second token is missing", func() {
			_, err := prepare.ParseReactor("S3 rep1")
			So(errors.Is(err, prepare.ErrParse), ShouldBeTrue)
			var pe *prepare.ParseError
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.ID, ShouldEqual, "S3 rep1")
		})

		Convey("When the reactor is not an integer", func() {
			_, err := prepare.ParseReactor("S-x rep1")
			So(errors.Is(err, prepare.ErrParse), ShouldBeTrue)
		})

		Convey("When the identifier is empty", func() {
			_, err := prepare.ParseReactor("")
			So(errors.Is(err, prepare.ErrParse), ShouldBeTrue)
		})
	})
}

func TestStrainFor(t *testing.T) {
	Convey("Given the hooman reactor lookup", t, func() {
		lookup := prepare.HoomanConfig().ReactorToStrain

		Convey("Then reactor 5 maps to strain 2", func() {
			s, err := prepare.StrainFor(lookup, 5)
			So(err, ShouldBeNil)
			So(s, ShouldEqual, 2)
		})

		Convey("Then reactor 9 is rejected", func() {
			_, err := prepare.StrainFor(lookup, 9)
			So(errors.Is(err, prepare.ErrUnknownReactor), ShouldBeTrue)
		})
	})
}

func TestIndexTimes(t *testing.T) {
	Convey("Given unsorted raw times with duplicates", t, func() {
		times := prepare.IndexTimes([]float64{3.0, 1.0, 2.0, 1.0})

		Convey("Then times are sorted, deduplicated and densely ranked from 1", func() {
			So(times, ShouldResemble, []model.Time{
				{Time: 1, TimeIx: 1},
				{Time: 2, TimeIx: 2},
				{Time: 3, TimeIx: 3},
			})
		})
	})

	Convey("Given no times", t, func() {
		So(prepare.IndexTimes(nil), ShouldBeEmpty)
	})
}

func TestRoundTimeAndLabels(t *testing.T) {
	Convey("Given time values", t, func() {
		So(prepare.RoundTime(0.30000000000000004, 0), ShouldEqual, 0.30000000000000004)
		So(prepare.RoundTime(0.30000000000000004, 3), ShouldEqual, 0.3)
		So(prepare.RoundTime(1.23456, 2), ShouldEqual, 1.23)

		So(prepare.FormatTimeLabel(0), ShouldEqual, "0.0")
		So(prepare.FormatTimeLabel(1), ShouldEqual, "1.0")
		So(prepare.FormatTimeLabel(1.5), ShouldEqual, "1.5")
		So(prepare.FormatTimeLabel(1e6), ShouldEqual, "1000000.0")
		So(prepare.FormatTimeLabel(1e20), ShouldEqual, "1e+20")
	})
}

func TestBiomass(t *testing.T) {
	Convey("Given one million live cells per ml of 10 um diameter", t, func() {
		b := prepare.Biomass(prepare.DefaultBiomassConstant, prepare.DefaultUnitScale, 1e6, 10)

		Convey("Then the spherical volume formula applies", func() {
			So(b, ShouldAlmostEqual, 5.235987755982989, 1e-9)
		})

		Convey("Then biomass scales with the cube of the diameter", func() {
			b2 := prepare.Biomass(prepare.DefaultBiomassConstant, prepare.DefaultUnitScale, 1e6, 20)
			So(b2/b, ShouldAlmostEqual, 8, 1e-9)
		})
	})
}

func TestRecipeConfig(t *testing.T) {
	Convey("Given recipe configurations", t, func() {
		Convey("When defaults are filled in", func() {
			cfg, err := prepare.NewRecipeConfig(prepare.RecipeConfig{
				Name:            "custom",
				Substrates:      []string{"Gluc"},
				Products:        []string{" LAC "},
				ReactorToStrain: map[int]int{1: 1},
			})
			So(err, ShouldBeNil)
			So(cfg.Substrates, ShouldResemble, []string{"gluc"})
			So(cfg.Products, ShouldResemble, []string{"lac"})
			So(cfg.SampleIDColumn, ShouldEqual, prepare.DefaultSampleIDColumn)
			So(cfg.BiomassConstant, ShouldEqual, prepare.DefaultBiomassConstant)
			So(cfg.Species(), ShouldResemble, []string{"gluc", "lac"})
		})

		Convey("When a species is both substrate and product", func() {
			_, err := prepare.NewRecipeConfig(prepare.RecipeConfig{
				Name:            "bad",
				Substrates:      []string{"gluc"},
				Products:        []string{"gluc"},
				ReactorToStrain: map[int]int{1: 1},
			})
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("When the name is missing", func() {
			_, err := prepare.NewRecipeConfig(prepare.RecipeConfig{Substrates: []string{"gluc"}, ReactorToStrain: map[int]int{1: 1}})
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("When the lookup is empty or non-positive", func() {
			_, err := prepare.NewRecipeConfig(prepare.RecipeConfig{Name: "x", Substrates: []string{"gluc"}})
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
			_, err = prepare.NewRecipeConfig(prepare.RecipeConfig{Name: "x", Substrates: []string{"gluc"}, ReactorToStrain: map[int]int{0: 1}})
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("When time decimals are negative", func() {
			cfg := prepare.HoomanConfig()
			cfg.TimeDecimals = -1
			_, err := prepare.NewRecipeConfig(cfg)
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("Then species columns are capitalized with the _adj suffix", func() {
			So(prepare.SpeciesColumn("gluc"), ShouldEqual, "Gluc_adj")
			So(prepare.SpeciesColumn("LAC"), ShouldEqual, "Lac_adj")
		})

		Convey("Then the recipe config copy is independent", func() {
			r, err := prepare.NewTimecourseRecipe(prepare.HoomanConfig())
			So(err, ShouldBeNil)
			c := r.Config()
			c.ReactorToStrain[9] = 3
			c.Substrates[0] = "ace"
			So(r.Config().ReactorToStrain, ShouldNotContainKey, 9)
			So(r.Config().Substrates, ShouldResemble, []string{"gluc"})
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		reg := prepare.DefaultRegistry()

		Convey("Then hooman is registered", func() {
			So(reg.Names(), ShouldResemble, []string{"hooman"})
			r, err := reg.Get("hooman")
			So(err, ShouldBeNil)
			So(r.Name(), ShouldEqual, "hooman")
		})

		Convey("Then unknown names are rejected", func() {
			_, err := reg.Get("nope")
			So(errors.Is(err, prepare.ErrUnknownRecipe), ShouldBeTrue)
		})

		Convey("Then duplicate registrations are rejected", func() {
			r, _ := reg.Get("hooman")
			So(errors.Is(reg.Register(r), prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("Then a second recipe can coexist", func() {
			cfg := prepare.HoomanConfig()
			cfg.Name = "lactate_only"
			cfg.Substrates = nil
			r, err := prepare.NewTimecourseRecipe(cfg)
			So(err, ShouldBeNil)
			So(reg.Register(r), ShouldBeNil)
			So(reg.Names(), ShouldResemble, []string{"hooman", "lactate_only"})
		})
	})

	Convey("Given recipe configs with overrides", t, func() {
		cfgs := prepare.DefaultConfigs()
		cfgs[0].TimeDecimals = 2

		Convey("Then the registry binds each recipe to its config", func() {
			reg, err := prepare.RegistryFromConfigs(cfgs...)
			So(err, ShouldBeNil)
			r, err := reg.Get("hooman")
			So(err, ShouldBeNil)
			So(r.(*prepare.TimecourseRecipe).Config().TimeDecimals, ShouldEqual, 2)
		})

		Convey("Then an invalid config is rejected", func() {
			cfgs[0].TimeDecimals = -1
			_, err := prepare.RegistryFromConfigs(cfgs...)
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})

		Convey("Then duplicate names are rejected", func() {
			_, err := prepare.RegistryFromConfigs(prepare.HoomanConfig(), prepare.HoomanConfig())
			So(errors.Is(err, prepare.ErrInvalidRecipe), ShouldBeTrue)
		})
	})
}
