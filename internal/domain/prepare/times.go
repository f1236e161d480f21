package prepare

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/growtho/internal/domain/model"
)

// IndexTimes returns the sorted unique times with dense 1-based ranks.
func IndexTimes(times []float64) []model.Time {
	uniq := slices.Clone(times)
	slices.Sort(uniq)
	uniq = slices.Compact(uniq)
	out := make([]model.Time, len(uniq))
	for i, t := range uniq {
		out[i] = model.Time{Time: t, TimeIx: i + 1}
	}
	return out
}

// RoundTime rounds t to decimals places; decimals <= 0 returns t unchanged.
func RoundTime(t float64, decimals int) float64 {
	if decimals <= 0 {
		return t
	}
	p := math.Pow10(decimals)
	return math.Round(t*p) / p
}

// FormatTimeLabel renders a time the way coordinate labels are written:
// shortest round-trip form, plain notation between 1e-4 and 1e16, with a
// trailing ".0" for integral values.
func FormatTimeLabel(t float64) string {
	format := byte('g')
	if a := math.Abs(t); a == 0 || (a >= 1e-4 && a < 1e16) {
		format = 'f'
	}
	s := strconv.FormatFloat(t, format, -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}
