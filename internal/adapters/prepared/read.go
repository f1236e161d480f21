package prepared

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/growtho/internal/domain/model"
)

// Read loads the prepared dataset stored under dir and validates it.
// Unknown columns, including the row index, are ignored.
func Read(ctx context.Context, dir string) (model.PreparedData, error) {
	if err := ctx.Err(); err != nil {
		return model.PreparedData{}, err
	}
	name, err := os.ReadFile(filepath.Join(dir, NameFile))
	if err != nil {
		return model.PreparedData{}, err
	}
	rawCoords, err := os.ReadFile(filepath.Join(dir, CoordsFile))
	if err != nil {
		return model.PreparedData{}, err
	}
	var coords model.CoordDict
	if err := json.Unmarshal(rawCoords, &coords); err != nil {
		return model.PreparedData{}, model.Violation(model.TableCoords, "json_object", "%v", err)
	}
	conc, err := readMeasurements(filepath.Join(dir, ConcFile), model.TableConc)
	if err != nil {
		return model.PreparedData{}, err
	}
	biomass, err := readMeasurements(filepath.Join(dir, BiomassFile), model.TableBiomass)
	if err != nil {
		return model.PreparedData{}, err
	}
	times, err := readTimes(filepath.Join(dir, TimesFile))
	if err != nil {
		return model.PreparedData{}, err
	}
	d := model.PreparedData{
		Name:                string(name),
		Coords:              coords,
		ConcMeasurements:    conc,
		BiomassMeasurements: biomass,
		Times:               times,
	}
	if err := d.Validate(); err != nil {
		return model.PreparedData{}, err
	}
	return d, nil
}

// csvTable is a parsed CSV with column positions resolved by name.
type csvTable struct {
	name    string
	columns map[string]int
	records [][]string
}

func openCSV(path, table string, required []string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, model.Violation(table, "header", "empty file %s", filepath.Base(path))
	}
	t := &csvTable{name: table, columns: make(map[string]int), records: records[1:]}
	for i, c := range records[0] {
		t.columns[c] = i
	}
	for _, c := range required {
		if _, ok := t.columns[c]; !ok {
			return nil, model.Violation(table, "required_column", "missing column %q", c)
		}
	}
	return t, nil
}

func (t *csvTable) strAt(row int, col string) string {
	return t.records[row][t.columns[col]]
}

func (t *csvTable) intAt(row int, col string) (int, error) {
	s := strings.TrimSpace(t.strAt(row, col))
	v, err := strconv.Atoi(s)
	if err != nil {
		// integral columns written through a float dtype, e.g. "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, model.Violation(t.name, "int_column", "row %d column %q value %q", row, col, s)
		}
		v = int(f)
	}
	return v, nil
}

func (t *csvTable) floatAt(row int, col string) (float64, error) {
	s := strings.TrimSpace(t.strAt(row, col))
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, model.Violation(t.name, "float_column", "row %d column %q value %q", row, col, s)
	}
	return v, nil
}

func readMeasurements(path, table string) ([]model.Measurement, error) {
	t, err := openCSV(path, table, measurementColumns)
	if err != nil {
		return nil, err
	}
	out := make([]model.Measurement, len(t.records))
	for i := range t.records {
		var m model.Measurement
		if m.Reactor, err = t.intAt(i, "reactor"); err != nil {
			return nil, err
		}
		if m.Strain, err = t.intAt(i, "strain"); err != nil {
			return nil, err
		}
		if m.TimeIx, err = t.intAt(i, "time_ix"); err != nil {
			return nil, err
		}
		if m.Y, err = t.floatAt(i, "y"); err != nil {
			return nil, err
		}
		m.Species = t.strAt(i, "species")
		out[i] = m
	}
	return out, nil
}

func readTimes(path string) ([]model.Time, error) {
	t, err := openCSV(path, model.TableTimes, timeColumns)
	if err != nil {
		return nil, err
	}
	out := make([]model.Time, len(t.records))
	for i := range t.records {
		if out[i].Time, err = t.floatAt(i, "time"); err != nil {
			return nil, err
		}
		if out[i].TimeIx, err = t.intAt(i, "time_ix"); err != nil {
			return nil, err
		}
	}
	return out, nil
}
