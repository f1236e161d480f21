package prepared_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/growtho/internal/adapters/prepared"
	"github.com/okian/growtho/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func dataset() model.PreparedData {
	return model.PreparedData{
		Name: "hooman",
		Coords: model.CoordDict{
			model.CoordReactor:   {"1", "5"},
			model.CoordStrain:    {"1", "2"},
			model.CoordSubstrate: {"gluc"},
			model.CoordProduct:   {"lac"},
			model.CoordSpecies:   {"gluc", "lac"},
			model.CoordTime:      {"0.1", "2.0"},
		},
		ConcMeasurements: []model.Measurement{
			{Reactor: 1, Strain: 1, Species: "gluc", TimeIx: 1, Y: 10.25},
			{Reactor: 5, Strain: 2, Species: "gluc", TimeIx: 2, Y: 1.0 / 3},
			{Reactor: 1, Strain: 1, Species: "lac", TimeIx: 1, Y: 0},
			{Reactor: 5, Strain: 2, Species: "lac", TimeIx: 2, Y: 1e-12},
		},
		BiomassMeasurements: []model.Measurement{
			{Reactor: 1, Strain: 1, Species: model.BiomassSpecies, TimeIx: 1, Y: 5.235987755982989},
			{Reactor: 5, Strain: 2, Species: model.BiomassSpecies, TimeIx: 2, Y: 20.943951023931955},
		},
		Times: []model.Time{{Time: 0.1, TimeIx: 1}, {Time: 2, TimeIx: 2}},
	}
}

func TestWriteRead(t *testing.T) {
	Convey("Given a prepared dataset", t, func() {
		ctx := context.Background()
		dir := filepath.Join(t.TempDir(), "nested", "hooman")
		d := dataset()

		So(prepared.Write(ctx, dir, d), ShouldBeNil)

		Convey("Then every layout file exists", func() {
			for _, f := range prepared.Files {
				_, err := os.Stat(filepath.Join(dir, f))
				So(err, ShouldBeNil)
			}
			name, err := os.ReadFile(filepath.Join(dir, prepared.NameFile))
			So(err, ShouldBeNil)
			So(string(name), ShouldEqual, "hooman")
		})

		Convey("Then the measurement CSV has a leading index column", func() {
			b, err := os.ReadFile(filepath.Join(dir, prepared.ConcFile))
			So(err, ShouldBeNil)
			lines := strings.Split(strings.TrimSpace(string(b)), "\n")
			So(lines[0], ShouldEqual, ",reactor,strain,species,time_ix,y")
			So(lines[1], ShouldEqual, "0,1,1,gluc,1,10.25")
			So(len(lines), ShouldEqual, 5)
		})

		Convey("Then reading it back yields an equal dataset", func() {
			got, err := prepared.Read(ctx, dir)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, d)
		})

		Convey("Then writing again overwrites the files", func() {
			d.ConcMeasurements[0].Y = 99
			So(prepared.Write(ctx, dir, d), ShouldBeNil)
			got, err := prepared.Read(ctx, dir)
			So(err, ShouldBeNil)
			So(got.ConcMeasurements[0].Y, ShouldEqual, 99)
		})
	})

	Convey("Given a dataset with a missing reading", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		d := dataset()
		d.ConcMeasurements[2].Y = math.NaN()

		So(prepared.Write(ctx, dir, d), ShouldBeNil)
		got, err := prepared.Read(ctx, dir)
		So(err, ShouldBeNil)

		Convey("Then it survives as NaN", func() {
			So(math.IsNaN(got.ConcMeasurements[2].Y), ShouldBeTrue)
			So(got.ConcMeasurements[1].Y, ShouldEqual, 1.0/3)
		})
	})
}

func TestReadTolerance(t *testing.T) {
	Convey("Given files written by another tool", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		So(prepared.Write(ctx, dir, dataset()), ShouldBeNil)

		Convey("When columns are reordered, extra and float-typed", func() {
			conc := "y,species,time_ix,strain,reactor,note\n" +
				"10.25,gluc,1,1,1,first\n" +
				"0.5,gluc,2.0,2,5,\n" +
				"0,lac,1,1,1,\n" +
				"2,lac,2,2,5,\n"
			So(os.WriteFile(filepath.Join(dir, prepared.ConcFile), []byte(conc), 0o600), ShouldBeNil)

			got, err := prepared.Read(ctx, dir)

			Convey("Then the table is read by column name", func() {
				So(err, ShouldBeNil)
				So(got.ConcMeasurements[1], ShouldResemble, model.Measurement{Reactor: 5, Strain: 2, Species: "gluc", TimeIx: 2, Y: 0.5})
			})
		})

		Convey("When a required column is missing", func() {
			So(os.WriteFile(filepath.Join(dir, prepared.TimesFile), []byte(",time\n0,0.1\n"), 0o600), ShouldBeNil)
			_, err := prepared.Read(ctx, dir)

			Convey("Then a schema violation names the table", func() {
				So(errors.Is(err, model.ErrSchemaViolation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "time_ix")
			})
		})

		Convey("When an integer column holds text", func() {
			conc := ",reactor,strain,species,time_ix,y\n0,one,1,gluc,1,1\n"
			So(os.WriteFile(filepath.Join(dir, prepared.ConcFile), []byte(conc), 0o600), ShouldBeNil)
			_, err := prepared.Read(ctx, dir)
			So(errors.Is(err, model.ErrSchemaViolation), ShouldBeTrue)
		})

		Convey("When the stored data breaks an invariant", func() {
			conc := ",reactor,strain,species,time_ix,y\n0,1,1,gluc,7,1\n"
			So(os.WriteFile(filepath.Join(dir, prepared.ConcFile), []byte(conc), 0o600), ShouldBeNil)
			_, err := prepared.Read(ctx, dir)
			So(errors.Is(err, model.ErrSchemaViolation), ShouldBeTrue)
		})

		Convey("When a file is missing", func() {
			So(os.Remove(filepath.Join(dir, prepared.CoordsFile)), ShouldBeNil)
			_, err := prepared.Read(ctx, dir)

			Convey("Then the os error is returned unwrapped", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})
	})
}

func TestDirStore(t *testing.T) {
	Convey("Given a directory store", t, func() {
		ctx := context.Background()
		root := t.TempDir()
		store := prepared.NewDirStore(prepared.WithRoot(root))

		Convey("When saving a dataset", func() {
			dir, err := store.Save(ctx, dataset())
			So(err, ShouldBeNil)

			Convey("Then it lives under root/name and loads back", func() {
				So(dir, ShouldEqual, filepath.Join(root, "hooman"))
				So(store.Dir("hooman"), ShouldEqual, dir)
				got, err := store.Load(ctx, "hooman")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, dataset())
			})
		})

		Convey("When the name would escape the root", func() {
			d := dataset()
			d.Name = "../evil"
			_, err := store.Save(ctx, d)
			So(errors.Is(err, model.ErrSchemaViolation), ShouldBeTrue)
			_, err = store.Load(ctx, "..")
			So(errors.Is(err, model.ErrSchemaViolation), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := store.Save(cctx, dataset())
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
