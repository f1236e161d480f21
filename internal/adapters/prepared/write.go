package prepared

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/growtho/internal/domain/model"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644
)

// Write stores d under dir, creating it if needed. All five files are
// rewritten on every call. File errors are returned as-is.
func Write(ctx context.Context, dir string, d model.PreparedData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, dirPermission); err != nil {
		return err
	}
	conc, err := encodeMeasurements(d.ConcMeasurements)
	if err != nil {
		return err
	}
	biomass, err := encodeMeasurements(d.BiomassMeasurements)
	if err != nil {
		return err
	}
	times, err := encodeTimes(d.Times)
	if err != nil {
		return err
	}
	coords, err := json.Marshal(d.Coords)
	if err != nil {
		return err
	}
	payloads := map[string][]byte{
		ConcFile:    conc,
		BiomassFile: biomass,
		TimesFile:   times,
		CoordsFile:  coords,
		NameFile:    []byte(d.Name),
	}
	for _, name := range Files {
		if err := os.WriteFile(filepath.Join(dir, name), payloads[name], filePermission); err != nil {
			return err
		}
	}
	return nil
}

// encodeMeasurements writes the table with a leading unnamed row-index column.
func encodeMeasurements(rows []model.Measurement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{""}, measurementColumns...)); err != nil {
		return nil, err
	}
	for i, m := range rows {
		rec := []string{
			strconv.Itoa(i),
			strconv.Itoa(m.Reactor),
			strconv.Itoa(m.Strain),
			m.Species,
			strconv.Itoa(m.TimeIx),
			formatFloat(m.Y),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func encodeTimes(rows []model.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(append([]string{""}, timeColumns...)); err != nil {
		return nil, err
	}
	for i, t := range rows {
		if err := w.Write([]string{strconv.Itoa(i), formatFloat(t.Time), strconv.Itoa(t.TimeIx)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatFloat writes the shortest exact representation; NaN is an empty cell.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
