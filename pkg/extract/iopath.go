package extract

import (
	"strconv"

	"github.com/OpenTraceLab/OpenTraceSDF/pkg/catalog"
)

// IOPath is one IOPATH record matched by the min/typ/max-aware pattern.
type IOPath struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Min  float64 `json:"min"`
	Typ  float64 `json:"typ"`
	Max  float64 `json:"max"`
}

// ExtractIOPaths returns every "(IOPATH in out (min:typ:max)" record in
// content, in order of appearance. Records whose values do not parse are
// skipped.
func ExtractIOPaths(content string) []IOPath {
	matches := catalog.TriplePattern().Regexp().FindAllStringSubmatch(content, -1)
	paths := make([]IOPath, 0, len(matches))
	for _, m := range matches {
		var vals [3]float64
		ok := true
		for i := range vals {
			v, err := strconv.ParseFloat(m[3+i], 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		paths = append(paths, IOPath{
			From: m[1],
			To:   m[2],
			Min:  vals[0],
			Typ:  vals[1],
			Max:  vals[2],
		})
	}
	return paths
}

// IOPathsFromFile reads path and extracts its IOPATH records.
func IOPathsFromFile(path string) ([]IOPath, error) {
	content, err := ReadFile(path)
	if err != nil {
		return []IOPath{}, err
	}
	return ExtractIOPaths(content), nil
}

// Mins returns the minimum value of every record, which is what the
// first-value pattern yields for well-formed triples.
func Mins(paths []IOPath) []float64 {
	out := make([]float64, len(paths))
	for i, p := range paths {
		out[i] = p.Min
	}
	return out
}
